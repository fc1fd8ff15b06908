// Package store provides the persisted state of stevedore.
// It implements the tracking store, recording every image stevedore built, and the preference
// store, recording which tags a user keeps out of cleanup.
//
// Key components:
//   - TrackingStore: Records builds keyed by project path, image name, and tag.
//   - PreferenceStore: Records excluded tags keyed by project path and image name.
//   - DefaultStateDir: Resolves the per-platform directory holding both files.
//
// Usage example:
//
//	fs := afero.NewOsFs()
//	tracking := store.NewTrackingStore(fs, filepath.Join(store.DefaultStateDir(), store.TrackingFileName))
//	tracking.Record(types.TrackedImage{ProjectPath: "/src/app", ImageName: "app", Tag: "v1"})
//	entries := tracking.List("/src/app", "app")
//
// Each store is a single flat JSON document rewritten in full on every mutation. There is no
// locking between processes: two concurrent invocations against the same state directory can
// lose each other's writes.
package store
