// Package actions provides the core logic of stevedore's image lifecycle commands.
// It reconciles tracked builds with the engine's live state and drives cleanup, builds,
// pushes, and runs against a single project image lineage.
//
// Key components:
//   - Reconcile: Merges tracked builds and live engine images into de-duplicated cleanup targets.
//   - Clean: Removes containers, images, and tracking entries in dependency-safe order.
//   - Preselect: Computes the initial checklist state from persisted exclusions.
//   - Build: Builds, tags, and records a project image.
//   - Push: Pushes a project image to its registry.
//   - Run: Starts a container from a project image.
//
// Usage example:
//
//	report, err := actions.Clean(ctx, client, tracking, preferences, actions.CleanParams{
//	    Project:   project,
//	    Selector:  prompt.NewSelector(),
//	    Confirmer: prompt.NewConfirmer(),
//	})
//	if err != nil {
//	    logrus.WithError(err).Error("Cleanup failed")
//	}
//	logrus.Info(report.Summary())
//
// Engine access goes through types.Engine and persisted state through the store interfaces in
// pkg/types, so every action runs against in-memory fakes in tests.
package actions
