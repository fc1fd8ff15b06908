// Package types defines core interfaces and structs for stevedore.
// It provides abstractions for the container engine, the persisted stores, and the records
// exchanged between the reconciliation and cleanup stages.
//
// Key components:
//   - Engine: Interface for the container engine primitives used by every command.
//   - TrackingStore: Interface for the persisted record of builds performed by stevedore.
//   - PreferenceStore: Interface for the persisted cleanup exclusion preferences.
//   - TrackedImage: Struct recording a single build.
//   - CleanupTarget: Struct describing one image (and its containers) eligible for cleanup.
//   - Selector, Confirmer: Interfaces isolating terminal interaction from the cleanup flow.
//
// Usage example:
//
//	var engine types.Engine
//	images, _ := engine.ListImagesByRepository(ctx, "app")
//	for _, img := range images {
//	    ids, _ := engine.ListContainersByImage(ctx, img.Reference)
//	    fmt.Println(img.Reference, ids)
//	}
//
// The package integrates with the engine, store, prompt, and actions packages.
package types
