package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// checklistModel lets the user toggle cleanup targets.
type checklistModel struct {
	targets  []types.CleanupTarget
	checked  []bool
	cursor   int
	done     bool
	canceled bool
}

func newChecklistModel(targets []types.CleanupTarget, preselected []bool) checklistModel {
	checked := make([]bool, len(targets))
	copy(checked, preselected)

	return checklistModel{targets: targets, checked: checked}
}

func (m checklistModel) Init() tea.Cmd {
	return nil
}

func (m checklistModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Cancel):
		m.canceled = true

		return m, tea.Quit
	case key.Matches(keyMsg, keys.Confirm):
		m.done = true

		return m, tea.Quit
	case key.Matches(keyMsg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keys.Down):
		if m.cursor < len(m.targets)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keys.Toggle):
		if len(m.checked) > 0 {
			m.checked[m.cursor] = !m.checked[m.cursor]
		}
	case key.Matches(keyMsg, keys.All):
		// Check everything unless everything already is.
		all := true
		for _, checked := range m.checked {
			all = all && checked
		}

		for i := range m.checked {
			m.checked[i] = !all
		}
	}

	return m, nil
}

func (m checklistModel) View() string {
	if m.done || m.canceled {
		return ""
	}

	var view strings.Builder

	view.WriteString(titleStyle.Render("Select images to remove"))
	view.WriteString("\n\n")

	for i, target := range m.targets {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}

		box := "[ ]"
		line := targetLine(target)

		if m.checked[i] {
			box = "[x]"
			line = selectedStyle.Render(line)
		}

		fmt.Fprintf(&view, "%s%s %s\n", cursor, box, line)
	}

	view.WriteString("\n")
	view.WriteString(helpLine(keys.Up, keys.Down, keys.Toggle, keys.All, keys.Confirm, keys.Cancel))
	view.WriteString("\n")

	return view.String()
}

// selected returns the checked targets in their original order.
func (m checklistModel) selected() []types.CleanupTarget {
	selected := []types.CleanupTarget{}

	for i, target := range m.targets {
		if m.checked[i] {
			selected = append(selected, target)
		}
	}

	return selected
}

// targetLine describes a target on a single line.
func targetLine(target types.CleanupTarget) string {
	details := []string{}

	if target.Size != "" {
		details = append(details, target.Size)
	}

	if created := target.CreatedTime(); !created.IsZero() {
		details = append(details, created.Local().Format("2006-01-02 15:04"))
	}

	if target.Tracked {
		details = append(details, "tracked")
	}

	if target.HasContainers() {
		details = append(details, fmt.Sprintf("%d container(s)", len(target.ContainerIDs)))
	}

	if len(details) == 0 {
		return target.Reference
	}

	return target.Reference + " " + mutedStyle.Render("("+strings.Join(details, ", ")+")")
}
