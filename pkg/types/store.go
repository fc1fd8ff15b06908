package types

import "time"

// StorageInfo describes where a store persists its records.
type StorageInfo struct {
	Location   string
	EntryCount int
}

// TrackingStore persists the builds performed by stevedore.
//
// Implementations never fail for absent data: a missing or unreadable store behaves as empty.
type TrackingStore interface {
	Record(entry TrackedImage)
	List(projectPath, imageName string) []TrackedImage
	Remove(projectPath, imageName, tag string)
	SweepStale(retention time.Duration) int
	StorageInfo() StorageInfo
}

// PreferenceStore persists the tags a user excluded from cleanup.
type PreferenceStore interface {
	Excluded(projectPath, imageName string) []string
	SetExcluded(projectPath, imageName string, tags []string)
	SweepStale() int
	StorageInfo() StorageInfo
}
