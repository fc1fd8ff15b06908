package mocks

import (
	"sort"
	"time"

	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// TrackingStore is an in-memory types.TrackingStore that counts mutations.
type TrackingStore struct {
	Entries   map[string]types.TrackedImage
	Mutations int
}

// NewTrackingStore creates a tracking store holding entries.
func NewTrackingStore(entries ...types.TrackedImage) *TrackingStore {
	store := &TrackingStore{Entries: make(map[string]types.TrackedImage)}
	for _, entry := range entries {
		store.Entries[entry.Key()] = entry
	}

	return store
}

func (s *TrackingStore) Record(entry types.TrackedImage) {
	s.Mutations++
	s.Entries[entry.Key()] = entry
}

func (s *TrackingStore) List(projectPath, imageName string) []types.TrackedImage {
	entries := []types.TrackedImage{}

	for _, entry := range s.Entries {
		if entry.ProjectPath == projectPath && entry.ImageName == imageName {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].BuildTime().After(entries[j].BuildTime())
	})

	return entries
}

func (s *TrackingStore) Remove(projectPath, imageName, tag string) {
	key := types.TrackingKey(projectPath, imageName, tag)
	if _, ok := s.Entries[key]; !ok {
		return
	}

	s.Mutations++
	delete(s.Entries, key)
}

func (s *TrackingStore) SweepStale(retention time.Duration) int {
	cutoff := time.Now().Add(-retention)
	removed := 0

	for key, entry := range s.Entries {
		if built := entry.BuildTime(); !built.IsZero() && built.Before(cutoff) {
			delete(s.Entries, key)
			removed++
		}
	}

	if removed > 0 {
		s.Mutations++
	}

	return removed
}

func (s *TrackingStore) StorageInfo() types.StorageInfo {
	return types.StorageInfo{Location: "memory", EntryCount: len(s.Entries)}
}

// PreferenceStore is an in-memory types.PreferenceStore that counts mutations.
type PreferenceStore struct {
	Entries   map[string][]string
	Mutations int
}

// NewPreferenceStore creates an empty preference store.
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{Entries: make(map[string][]string)}
}

func (s *PreferenceStore) Excluded(projectPath, imageName string) []string {
	return append([]string{}, s.Entries[types.ProjectKey(projectPath, imageName)]...)
}

func (s *PreferenceStore) SetExcluded(projectPath, imageName string, tags []string) {
	s.Mutations++

	key := types.ProjectKey(projectPath, imageName)
	if len(tags) == 0 {
		delete(s.Entries, key)

		return
	}

	s.Entries[key] = append([]string{}, tags...)
}

func (s *PreferenceStore) SweepStale() int {
	return 0
}

func (s *PreferenceStore) StorageInfo() types.StorageInfo {
	return types.StorageInfo{Location: "memory", EntryCount: len(s.Entries)}
}
