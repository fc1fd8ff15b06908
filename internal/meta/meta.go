// Package meta holds build metadata injected at link time.
package meta

// Build metadata, overridden with -ldflags "-X github.com/nicholas-fedor/stevedore/internal/meta.Version=...".
var (
	Version = "v0.0.0-unknown"
	Commit  = "unknown"
	Date    = "unknown"
)
