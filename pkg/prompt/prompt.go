package prompt

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// Selector asks the user which cleanup targets to remove using a terminal checklist.
type Selector struct {
	options []tea.ProgramOption
}

// NewSelector creates a Selector. Program options (such as tea.WithInput) are passed through.
func NewSelector(options ...tea.ProgramOption) *Selector {
	return &Selector{options: options}
}

// Select shows the checklist with preselected targets checked and returns the checked targets.
// Leaving the checklist without confirming returns ErrCanceled.
func (s *Selector) Select(
	targets []types.CleanupTarget,
	preselected []bool,
) ([]types.CleanupTarget, error) {
	result, err := tea.NewProgram(newChecklistModel(targets, preselected), s.options...).Run()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errPromptFailed, err)
	}

	model, ok := result.(checklistModel)
	if !ok {
		return nil, errUnexpectedModel
	}

	if !model.done {
		return nil, ErrCanceled
	}

	return model.selected(), nil
}

// Confirmer asks the user to approve a removal plan.
type Confirmer struct {
	options []tea.ProgramOption
}

// NewConfirmer creates a Confirmer. Program options are passed through.
func NewConfirmer(options ...tea.ProgramOption) *Confirmer {
	return &Confirmer{options: options}
}

// Confirm lists the targets with their containers and returns whether the user approved.
// Declining returns false; leaving the prompt returns ErrCanceled.
func (c *Confirmer) Confirm(targets []types.CleanupTarget) (bool, error) {
	result, err := tea.NewProgram(newConfirmModel(targets), c.options...).Run()
	if err != nil {
		return false, fmt.Errorf("%w: %w", errPromptFailed, err)
	}

	model, ok := result.(confirmModel)
	if !ok {
		return false, errUnexpectedModel
	}

	if model.canceled {
		return false, ErrCanceled
	}

	return model.approved, nil
}
