package store

import (
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// DefaultRetention is how long a tracked build is kept before the staleness sweep drops it.
const DefaultRetention = 7 * 24 * time.Hour

// TrackingStore persists tracked builds in a flat JSON document keyed by
// "<projectPath>:<imageName>:<tag>".
type TrackingStore struct {
	file jsonFile
	now  func() time.Time
}

// NewTrackingStore creates a tracking store backed by the file at path.
func NewTrackingStore(fs afero.Fs, path string) *TrackingStore {
	return &TrackingStore{
		file: jsonFile{fs: fs, path: path},
		now:  time.Now,
	}
}

// WithClock replaces the time source used by SweepStale.
func (s *TrackingStore) WithClock(now func() time.Time) *TrackingStore {
	s.now = now

	return s
}

// Record inserts or replaces the entry with the same identity key.
//
// Persistence failures are logged and swallowed so that tracking never fails a build.
func (s *TrackingStore) Record(entry types.TrackedImage) {
	entries := s.read()
	entries[entry.Key()] = entry

	if err := s.file.save(entries); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"image": entry.ImageName,
			"tag":   entry.Tag,
		}).Warn("Failed to record build in tracking store")

		return
	}

	logrus.WithFields(logrus.Fields{
		"image":   entry.ImageName,
		"tag":     entry.Tag,
		"project": entry.ProjectPath,
	}).Debug("Recorded build in tracking store")
}

// List returns the entries of a project image, newest build first.
func (s *TrackingStore) List(projectPath, imageName string) []types.TrackedImage {
	prefix := types.ProjectKey(projectPath, imageName) + ":"

	result := []types.TrackedImage{}

	for key, entry := range s.read() {
		if strings.HasPrefix(key, prefix) &&
			entry.ProjectPath == projectPath &&
			entry.ImageName == imageName {
			result = append(result, entry)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		ti, tj := result[i].BuildTime(), result[j].BuildTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}

		return result[i].Tag < result[j].Tag
	})

	return result
}

// Remove deletes the entry for the given tag. Absent entries are ignored.
func (s *TrackingStore) Remove(projectPath, imageName, tag string) {
	entries := s.read()
	key := types.TrackingKey(projectPath, imageName, tag)

	if _, ok := entries[key]; !ok {
		return
	}

	delete(entries, key)

	if err := s.file.save(entries); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to remove entry from tracking store")

		return
	}

	logrus.WithField("key", key).Debug("Removed entry from tracking store")
}

// SweepStale deletes every entry built before now minus retention and returns how many were
// removed. Entries without a parseable build time are kept.
func (s *TrackingStore) SweepStale(retention time.Duration) int {
	entries := s.read()
	cutoff := s.now().Add(-retention)
	removed := 0

	for key, entry := range entries {
		built := entry.BuildTime()
		if built.IsZero() || !built.Before(cutoff) {
			continue
		}

		delete(entries, key)

		removed++
	}

	if removed == 0 {
		return 0
	}

	if err := s.file.save(entries); err != nil {
		logrus.WithError(err).Warn("Failed to persist tracking store sweep")

		return 0
	}

	logrus.WithFields(logrus.Fields{
		"removed":   removed,
		"retention": retention,
	}).Debug("Swept stale tracking entries")

	return removed
}

// StorageInfo reports the store location and its number of entries.
func (s *TrackingStore) StorageInfo() types.StorageInfo {
	return types.StorageInfo{
		Location:   s.file.path,
		EntryCount: len(s.read()),
	}
}

// read loads every entry, treating unreadable state as empty.
func (s *TrackingStore) read() map[string]types.TrackedImage {
	entries := map[string]types.TrackedImage{}

	if err := s.file.load(&entries); err != nil {
		logrus.WithError(err).Debug("Tracking store unreadable, treating as empty")

		return map[string]types.TrackedImage{}
	}

	return entries
}
