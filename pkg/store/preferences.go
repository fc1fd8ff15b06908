package store

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// PreferenceStore persists excluded cleanup tags in a flat JSON document keyed by
// "<projectPath>:<imageName>".
type PreferenceStore struct {
	file jsonFile
	fs   afero.Fs
}

// NewPreferenceStore creates a preference store backed by the file at path.
//
// The same filesystem is used to check whether project paths still exist.
func NewPreferenceStore(fs afero.Fs, path string) *PreferenceStore {
	return &PreferenceStore{
		file: jsonFile{fs: fs, path: path},
		fs:   fs,
	}
}

// Excluded returns the excluded tags of a project image.
func (s *PreferenceStore) Excluded(projectPath, imageName string) []string {
	tags, ok := s.read()[types.ProjectKey(projectPath, imageName)]
	if !ok {
		return []string{}
	}

	return append([]string{}, tags...)
}

// SetExcluded replaces the excluded tags of a project image. An empty set removes the entry.
func (s *PreferenceStore) SetExcluded(projectPath, imageName string, tags []string) {
	entries := s.read()
	key := types.ProjectKey(projectPath, imageName)

	unique := dedupe(tags)
	if len(unique) == 0 {
		if _, ok := entries[key]; !ok {
			return
		}

		delete(entries, key)
	} else {
		entries[key] = unique
	}

	if err := s.file.save(entries); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to save cleanup preferences")

		return
	}

	logrus.WithFields(logrus.Fields{
		"key":      key,
		"excluded": unique,
	}).Debug("Saved cleanup preferences")
}

// SweepStale removes entries whose project path no longer exists and returns how many were
// removed.
func (s *PreferenceStore) SweepStale() int {
	entries := s.read()
	removed := 0

	for key := range entries {
		projectPath := projectPathOf(key)

		exists, err := afero.DirExists(s.fs, projectPath)
		if err != nil || exists {
			continue
		}

		delete(entries, key)

		removed++
	}

	if removed == 0 {
		return 0
	}

	if err := s.file.save(entries); err != nil {
		logrus.WithError(err).Warn("Failed to persist preference store sweep")

		return 0
	}

	logrus.WithField("removed", removed).Debug("Swept preferences of missing projects")

	return removed
}

// StorageInfo reports the store location and its number of entries.
func (s *PreferenceStore) StorageInfo() types.StorageInfo {
	return types.StorageInfo{
		Location:   s.file.path,
		EntryCount: len(s.read()),
	}
}

// read loads every entry, treating unreadable state as empty.
func (s *PreferenceStore) read() map[string][]string {
	entries := map[string][]string{}

	if err := s.file.load(&entries); err != nil {
		logrus.WithError(err).Debug("Preference store unreadable, treating as empty")

		return map[string][]string{}
	}

	return entries
}

// projectPathOf strips the image name from a preference key.
// Image names never contain a colon, so the last one separates the two parts.
func projectPathOf(key string) string {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return key
	}

	return key[:idx]
}

// dedupe returns the non-empty unique tags, sorted.
func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	unique := make([]string, 0, len(tags))

	for _, tag := range tags {
		if tag == "" {
			continue
		}

		if _, ok := seen[tag]; ok {
			continue
		}

		seen[tag] = struct{}{}
		unique = append(unique, tag)
	}

	sort.Strings(unique)

	return unique
}
