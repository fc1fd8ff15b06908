package actions

import (
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// Preselect returns the initial checklist state for targets: every target is checked unless its
// tag is excluded.
func Preselect(targets []types.CleanupTarget, excluded []string) []bool {
	skip := make(map[string]bool, len(excluded))
	for _, tag := range excluded {
		skip[tag] = true
	}

	preselected := make([]bool, len(targets))
	for i, target := range targets {
		preselected[i] = !skip[target.Tag]
	}

	return preselected
}

// Unselected returns the tags of the targets missing from selected, in target order and
// without duplicates.
func Unselected(targets, selected []types.CleanupTarget) []string {
	chosen := make(map[string]bool, len(selected))
	for _, target := range selected {
		chosen[target.Reference] = true
	}

	seen := make(map[string]bool)
	tags := []string{}

	for _, target := range targets {
		if chosen[target.Reference] || seen[target.Tag] {
			continue
		}

		seen[target.Tag] = true
		tags = append(tags, target.Tag)
	}

	return tags
}
