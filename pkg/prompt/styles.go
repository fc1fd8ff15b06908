package prompt

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary  = lipgloss.Color("62")
	colorMuted    = lipgloss.Color("241")
	colorAccent   = lipgloss.Color("204")
	colorSelected = lipgloss.Color("229")
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(colorSelected)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	warnStyle     = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)

// keyMap holds the bindings shared by the prompts.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	All     key.Binding
	Confirm key.Binding
	Yes     key.Binding
	No      key.Binding
	Cancel  key.Binding
}

var keys = keyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:  key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle")),
	All:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle all")),
	Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Yes:     key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "remove")),
	No:      key.NewBinding(key.WithKeys("n", "N", "enter"), key.WithHelp("n", "keep")),
	Cancel:  key.NewBinding(key.WithKeys("esc", "q", "ctrl+c"), key.WithHelp("esc/q", "cancel")),
}

// helpLine renders the short help of bindings on one line.
func helpLine(bindings ...key.Binding) string {
	line := ""

	for i, binding := range bindings {
		if i > 0 {
			line += " • "
		}

		help := binding.Help()
		line += help.Key + " " + help.Desc
	}

	return helpStyle.Render(line)
}
