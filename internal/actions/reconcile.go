package actions

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/stevedore/pkg/imageref"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// Reconcile produces the de-duplicated list of cleanup targets for a project.
//
// Tracked builds become targets keyed by their local reference. Live images of the local and
// registry repositories are merged into them: missing size and creation fields are filled from
// the engine and the container list is replaced by the freshly queried one. Live images without
// a tracked counterpart are added as untracked targets. A tracked build whose image was removed
// by other means remains a target.
//
// Parameters:
//   - ctx: Context for engine queries.
//   - client: Engine to query live images and containers.
//   - tracking: Store holding the project's tracked builds.
//   - project: Project whose lineage is reconciled.
//
// Returns:
//   - []types.CleanupTarget: Targets sorted newest first, empty when neither source has images.
func Reconcile(
	ctx context.Context,
	client types.Engine,
	tracking types.TrackingStore,
	project types.Project,
) []types.CleanupTarget {
	merged := make(map[string]*types.CleanupTarget)

	tracked := tracking.List(project.Path, project.ImageName)
	for _, entry := range tracked {
		ref, err := imageref.Join(project.LocalRepository(), entry.Tag)
		if err != nil {
			logrus.WithError(err).WithField("tag", entry.Tag).Warn("Skipping unusable tracked tag")

			continue
		}

		merged[ref] = &types.CleanupTarget{
			Reference:    ref,
			Tag:          entry.Tag,
			Size:         entry.Size,
			Created:      entry.BuiltAt,
			Tracked:      true,
			ContainerIDs: containersOf(ctx, client, ref),
		}
	}

	live := 0

	for _, repository := range project.Repositories() {
		images, err := client.ListImagesByRepository(ctx, repository)
		if err != nil {
			logrus.WithError(err).
				WithField("repository", repository).
				Warn("Failed to list images, continuing without them")

			continue
		}

		live += len(images)

		for _, img := range images {
			containers := containersOf(ctx, client, img.Reference)

			if target, ok := merged[img.Reference]; ok {
				if target.Size == "" {
					target.Size = img.Size
				}

				if target.Created == "" {
					target.Created = img.Created
				}

				target.ContainerIDs = containers

				continue
			}

			merged[img.Reference] = &types.CleanupTarget{
				Reference:    img.Reference,
				Tag:          img.Tag,
				Size:         img.Size,
				Created:      img.Created,
				Tracked:      false,
				ContainerIDs: containers,
			}
		}
	}

	targets := make([]types.CleanupTarget, 0, len(merged))
	for _, target := range merged {
		targets = append(targets, *target)
	}

	sortTargets(targets)

	logrus.WithFields(logrus.Fields{
		"project": project.Path,
		"image":   project.ImageName,
		"tracked": len(tracked),
		"live":    live,
		"targets": len(targets),
	}).Debug("Reconciled cleanup targets")

	return targets
}

// containersOf lists the containers created from ref, treating failures as none.
func containersOf(ctx context.Context, client types.Engine, ref string) []string {
	ids, err := client.ListContainersByImage(ctx, ref)
	if err != nil {
		logrus.WithError(err).WithField("image", ref).Debug("Failed to list containers for image")

		return []string{}
	}

	if ids == nil {
		return []string{}
	}

	return ids
}

// sortTargets orders targets newest first. Missing or malformed timestamps sort as the zero
// time; equal times fall back to the reference so the order never depends on map iteration.
func sortTargets(targets []types.CleanupTarget) {
	sort.Slice(targets, func(i, j int) bool {
		left, right := targets[i].CreatedTime(), targets[j].CreatedTime()
		if !left.Equal(right) {
			return left.After(right)
		}

		return targets[i].Reference < targets[j].Reference
	})
}
