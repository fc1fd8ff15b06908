package mocks

import (
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// Selector is a scripted types.Selector.
//
// It selects the targets whose references are listed in Choose, or returns Err when set.
// The preselection it was shown is kept for assertions.
type Selector struct {
	Choose      []string
	Err         error
	Called      bool
	Preselected []bool
}

func (s *Selector) Select(
	targets []types.CleanupTarget,
	preselected []bool,
) ([]types.CleanupTarget, error) {
	s.Called = true
	s.Preselected = preselected

	if s.Err != nil {
		return nil, s.Err
	}

	chosen := make(map[string]bool, len(s.Choose))
	for _, ref := range s.Choose {
		chosen[ref] = true
	}

	selected := []types.CleanupTarget{}

	for _, target := range targets {
		if chosen[target.Reference] {
			selected = append(selected, target)
		}
	}

	return selected, nil
}

// Confirmer is a scripted types.Confirmer answering Answer, or failing with Err.
type Confirmer struct {
	Answer bool
	Err    error
	Shown  []types.CleanupTarget
}

func (c *Confirmer) Confirm(targets []types.CleanupTarget) (bool, error) {
	c.Shown = targets

	return c.Answer, c.Err
}
