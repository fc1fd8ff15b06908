// Package tagger generates image tags for stevedore builds.
// Tags combine the build time with the short commit hash of the project's Git HEAD, so builds
// sort chronologically and can be traced back to their source.
package tagger

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/stevedore/pkg/imageref"
)

// timestampLayout formats the build time part of a generated tag.
const timestampLayout = "20060102-150405"

// shortHashLength is the number of commit hash characters kept in a tag.
const shortHashLength = 7

// dirtySuffix marks tags built from a worktree with uncommitted changes.
const dirtySuffix = "dirty"

// ErrNoRepository indicates the project directory is not inside a Git repository.
var ErrNoRepository = errors.New("not a git repository")

// Error describes a failed Git operation.
type Error struct {
	Op     string // Operation that failed
	Path   string // Repository path
	Reason string // Human-readable reason
	Cause  error  // Underlying error
}

func (e Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("git %s failed for %s: %s: %v", e.Op, e.Path, e.Reason, e.Cause)
	}

	return fmt.Sprintf("git %s failed for %s: %s", e.Op, e.Path, e.Reason)
}

func (e Error) Unwrap() error {
	return e.Cause
}

// Revision describes the Git state a build comes from.
type Revision struct {
	Hash  string
	Dirty bool
}

// Short returns the abbreviated commit hash.
func (r Revision) Short() string {
	if len(r.Hash) > shortHashLength {
		return r.Hash[:shortHashLength]
	}

	return r.Hash
}

// Tagger derives tags from the clock and the project's Git state.
type Tagger struct {
	now func() time.Time
}

// New creates a Tagger using the system clock.
func New() *Tagger {
	return &Tagger{now: time.Now}
}

// WithClock replaces the time source.
func (t *Tagger) WithClock(now func() time.Time) *Tagger {
	t.now = now

	return t
}

// Generate returns a tag for a build of the project at dir.
//
// The tag has the form v<YYYYMMDD-HHMMSS>-<hash>, with a "-dirty" suffix when the worktree has
// uncommitted changes. Outside a Git repository, or when HEAD cannot be read, the hash is
// omitted.
func (t *Tagger) Generate(dir string) string {
	tag := imageref.VersionPrefix + t.now().UTC().Format(timestampLayout)

	revision, err := Head(dir)
	if err != nil {
		logrus.WithError(err).WithField("path", dir).Debug("Generating tag without commit hash")

		return tag
	}

	tag += "-" + revision.Short()
	if revision.Dirty {
		tag += "-" + dirtySuffix
	}

	return tag
}

// Head reads the commit HEAD points at for the repository containing dir.
func Head(dir string) (Revision, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return Revision{}, ErrNoRepository
		}

		return Revision{}, Error{Op: "open", Path: dir, Reason: "failed to open repository", Cause: err}
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return Revision{}, Error{Op: "head", Path: dir, Reason: "repository has no commits"}
		}

		return Revision{}, Error{Op: "head", Path: dir, Reason: "failed to resolve HEAD", Cause: err}
	}

	revision := Revision{Hash: head.Hash().String()}

	worktree, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no worktree to be dirty.
		return revision, nil //nolint:nilerr
	}

	status, err := worktree.Status()
	if err != nil {
		logrus.WithError(err).WithField("path", dir).Debug("Failed to read worktree status")

		return revision, nil
	}

	revision.Dirty = !status.IsClean()

	return revision, nil
}
