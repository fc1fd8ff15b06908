package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/stevedore/internal/util"
	"github.com/nicholas-fedor/stevedore/pkg/imageref"
	"github.com/nicholas-fedor/stevedore/pkg/prompt"
	"github.com/nicholas-fedor/stevedore/pkg/session"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// CleanParams configures a cleanup run.
type CleanParams struct {
	// Project is the project whose images are cleaned.
	Project types.Project
	// Tag selects explicit-tag mode when set; otherwise the whole project is reconciled.
	Tag string
	// AssumeYes skips interactive selection and confirmation, selecting every target.
	AssumeYes bool
	// Selector lets the user narrow the targets in full-project mode.
	Selector types.Selector
	// Confirmer asks for approval before anything is removed.
	Confirmer types.Confirmer
}

// Clean removes project images together with their containers and tracking entries.
//
// With a tag, only the local and registry references of that tag are considered. Without one,
// the reconciled target list is narrowed through the selector, and once the selection is
// confirmed the tags left unselected replace the project's exclusion preferences. Nothing is
// removed or persisted when the user cancels the selection or declines the confirmation.
//
// Parameters:
//   - ctx: Context for engine calls.
//   - client: Engine performing the removals.
//   - tracking: Store of tracked builds, updated for removed tracked targets.
//   - preferences: Store of excluded tags, read and replaced in full-project mode.
//   - params: Mode, project, and interaction settings.
//
// Returns:
//   - *session.CleanupReport: Outcomes and terminal state of the run.
//   - error: Non-nil if the tag is invalid or the user interaction fails.
func Clean(
	ctx context.Context,
	client types.Engine,
	tracking types.TrackingStore,
	preferences types.PreferenceStore,
	params CleanParams,
) (*session.CleanupReport, error) {
	var (
		targets  []types.CleanupTarget
		excluded []string
		err      error
	)

	if params.Tag != "" {
		targets, err = resolveTag(ctx, client, tracking, params.Project, params.Tag)
		if err != nil {
			return nil, err
		}

		if len(targets) == 0 {
			logrus.WithField("tag", imageref.NormalizeTag(params.Tag)).Info("No images found")

			return finished(nil), nil
		}
	} else {
		targets = Reconcile(ctx, client, tracking, params.Project)
		if len(targets) == 0 {
			logrus.WithField("image", params.Project.ImageName).Info("Nothing to clean")

			return finished(nil), nil
		}

		var selected []types.CleanupTarget

		selected, excluded, err = selectTargets(targets, preferences, params)
		if err != nil {
			if errors.Is(err, prompt.ErrCanceled) {
				logrus.Info("Selection canceled")

				return aborted(targets), nil
			}

			return nil, err
		}

		targets = selected
		if len(targets) == 0 {
			logrus.Info("Nothing selected")
			saveExclusions(preferences, params, excluded)

			return finished(nil), nil
		}
	}

	if !params.AssumeYes {
		proceed, err := confirm(targets, params.Confirmer)
		if err != nil {
			return nil, err
		}

		if !proceed {
			logrus.Info("Cleanup declined")

			return aborted(targets), nil
		}

		saveExclusions(preferences, params, excluded)
	}

	return remove(ctx, client, tracking, params.Project, targets), nil
}

// resolveTag builds the explicit-tag targets: the local and registry references of the
// normalized tag that exist in the engine.
func resolveTag(
	ctx context.Context,
	client types.Engine,
	tracking types.TrackingStore,
	project types.Project,
	rawTag string,
) ([]types.CleanupTarget, error) {
	tag := imageref.NormalizeTag(rawTag)

	tracked := false

	for _, entry := range tracking.List(project.Path, project.ImageName) {
		if entry.Tag == tag {
			tracked = true

			break
		}
	}

	targets := []types.CleanupTarget{}

	for _, repository := range project.Repositories() {
		ref, err := imageref.Join(repository, tag)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", errInvalidTag, rawTag, err)
		}

		exists, err := client.ImageExists(ctx, ref)
		if err != nil {
			logrus.WithError(err).WithField("image", ref).Warn("Failed to inspect image, skipping")

			continue
		}

		if !exists {
			logrus.WithField("image", ref).Debug("Image does not exist")

			continue
		}

		size, err := client.ImageSize(ctx, ref)
		if err != nil {
			logrus.WithError(err).WithField("image", ref).Debug("Failed to read image size")
		}

		targets = append(targets, types.CleanupTarget{
			Reference:    ref,
			Tag:          tag,
			Size:         size,
			Tracked:      tracked,
			ContainerIDs: containersOf(ctx, client, ref),
		})
	}

	return targets, nil
}

// selectTargets narrows targets through the selector and returns the selection together with
// the tags left unselected. AssumeYes selects everything without asking.
func selectTargets(
	targets []types.CleanupTarget,
	preferences types.PreferenceStore,
	params CleanParams,
) ([]types.CleanupTarget, []string, error) {
	if params.AssumeYes {
		return targets, nil, nil
	}

	if params.Selector == nil {
		return nil, nil, errMissingSelector
	}

	project := params.Project
	preselected := Preselect(targets, preferences.Excluded(project.Path, project.ImageName))

	selected, err := params.Selector.Select(targets, preselected)
	if err != nil {
		if errors.Is(err, prompt.ErrCanceled) {
			return nil, nil, err
		}

		return nil, nil, fmt.Errorf("%w: %w", errSelectionFailed, err)
	}

	excluded := Unselected(targets, selected)

	logrus.WithFields(logrus.Fields{
		"selected": len(selected),
		"excluded": excluded,
	}).Debug("Cleanup selection complete")

	return selected, excluded, nil
}

// saveExclusions replaces the project's exclusion set after an interactive selection.
// Explicit-tag runs and AssumeYes runs never change preferences.
func saveExclusions(preferences types.PreferenceStore, params CleanParams, excluded []string) {
	if params.Tag != "" || params.AssumeYes {
		return
	}

	preferences.SetExcluded(params.Project.Path, params.Project.ImageName, excluded)
}

// confirm asks the confirmer for approval; a canceled prompt counts as declined.
func confirm(targets []types.CleanupTarget, confirmer types.Confirmer) (bool, error) {
	if confirmer == nil {
		return false, errMissingConfirmer
	}

	proceed, err := confirmer.Confirm(targets)
	if err != nil {
		if errors.Is(err, prompt.ErrCanceled) {
			return false, nil
		}

		return false, fmt.Errorf("%w: %w", errConfirmationFailed, err)
	}

	return proceed, nil
}

// remove runs the destructive steps: every container, then every image, then the tracking
// entries of tracked targets. Individual failures are recorded and never stop the run.
func remove(
	ctx context.Context,
	client types.Engine,
	tracking types.TrackingStore,
	project types.Project,
	targets []types.CleanupTarget,
) *session.CleanupReport {
	report := session.NewCleanupReport(targets)
	removed := make(map[string]bool)

	for _, target := range targets {
		for _, id := range target.ContainerIDs {
			// An image tagged under both repositories lists the same container twice.
			if removed[id] {
				continue
			}

			err := client.RemoveContainer(ctx, id)
			if err != nil {
				logrus.WithError(err).WithFields(logrus.Fields{
					"container_id": util.ShortID(id),
					"image":        target.Reference,
				}).Warn("Failed to remove container, continuing")
			} else {
				removed[id] = true
			}

			report.Add(session.RemoveContainer, target.Reference, id, err)
		}
	}

	for _, target := range targets {
		err := client.RemoveImage(ctx, target.Reference)
		if err != nil {
			logrus.WithError(err).
				WithField("image", target.Reference).
				Warn("Failed to remove image, continuing")
		} else {
			logrus.WithField("image", target.Reference).Info("Removed image")
		}

		report.Add(session.RemoveImage, target.Reference, target.Reference, err)
	}

	untracked := make(map[string]bool)

	for _, target := range targets {
		if !target.Tracked || untracked[target.Tag] {
			continue
		}

		tracking.Remove(project.Path, project.ImageName, target.Tag)
		untracked[target.Tag] = true

		report.Add(session.Untrack, target.Reference, target.Tag, nil)
	}

	report.Finish()

	return report
}

func finished(targets []types.CleanupTarget) *session.CleanupReport {
	report := session.NewCleanupReport(targets)
	report.Finish()

	return report
}

func aborted(targets []types.CleanupTarget) *session.CleanupReport {
	report := session.NewCleanupReport(targets)
	report.Abort()

	return report
}
