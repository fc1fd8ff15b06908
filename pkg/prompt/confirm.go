package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nicholas-fedor/stevedore/internal/util"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// Column widths of the confirmation table.
const (
	referenceWidth = 48
	sizeWidth      = 10
	trackedWidth   = 8
	containerWidth = 40
)

// confirmModel shows the removal plan and waits for a yes or no.
type confirmModel struct {
	targets  []types.CleanupTarget
	table    table.Model
	answered bool
	approved bool
	canceled bool
}

func newConfirmModel(targets []types.CleanupTarget) confirmModel {
	rows := make([]table.Row, 0, len(targets))
	for _, target := range targets {
		tracked := ""
		if target.Tracked {
			tracked = "yes"
		}

		rows = append(rows, table.Row{
			target.Reference,
			target.Size,
			tracked,
			containerList(target.ContainerIDs),
		})
	}

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "Image", Width: referenceWidth},
			{Title: "Size", Width: sizeWidth},
			{Title: "Tracked", Width: trackedWidth},
			{Title: "Containers", Width: containerWidth},
		}),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
	)

	return confirmModel{targets: targets, table: tbl}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.Yes):
		m.answered, m.approved = true, true

		return m, tea.Quit
	case key.Matches(keyMsg, keys.No):
		m.answered = true

		return m, tea.Quit
	case key.Matches(keyMsg, keys.Cancel):
		m.canceled = true

		return m, tea.Quit
	}

	return m, nil
}

func (m confirmModel) View() string {
	if m.answered || m.canceled {
		return ""
	}

	containers := 0
	for _, target := range m.targets {
		containers += len(target.ContainerIDs)
	}

	var view strings.Builder

	view.WriteString(titleStyle.Render("The following images will be removed"))
	view.WriteString("\n\n")
	view.WriteString(m.table.View())
	view.WriteString("\n\n")

	if containers > 0 {
		view.WriteString(warnStyle.Render(
			fmt.Sprintf("%d container(s) using these images will be force-removed.", containers)))
		view.WriteString("\n")
	}

	fmt.Fprintf(&view, "Remove %d image(s)? [y/N]\n", len(m.targets))
	view.WriteString(helpLine(keys.Yes, keys.No, keys.Cancel))
	view.WriteString("\n")

	return view.String()
}

// containerList renders container IDs in their short form.
func containerList(ids []string) string {
	short := make([]string, 0, len(ids))
	for _, id := range ids {
		short = append(short, util.ShortID(id))
	}

	return strings.Join(short, ", ")
}
