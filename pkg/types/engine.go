package types

import (
	"context"
	"io"
)

// Engine defines the container engine operations stevedore relies on.
//
// The cleanup core only uses the listing and removal methods; the remaining primitives back the
// build, push, and run commands.
type Engine interface {
	// Ping verifies the engine is installed and its daemon reachable.
	Ping(ctx context.Context) error

	// ListImagesByRepository returns one summary per repository:tag matching the repository.
	ListImagesByRepository(ctx context.Context, repository string) ([]ImageSummary, error)

	// ListContainersByImage returns the IDs of all containers (in any state) created from ref.
	ListContainersByImage(ctx context.Context, ref string) ([]string, error)

	// RemoveContainer force-removes a container.
	RemoveContainer(ctx context.Context, id string) error

	// RemoveImage removes an image reference.
	RemoveImage(ctx context.Context, ref string) error

	// ImageExists reports whether the engine holds an image for ref.
	ImageExists(ctx context.Context, ref string) (bool, error)

	// ImageSize returns the human readable size of ref.
	ImageSize(ctx context.Context, ref string) (string, error)

	// BuildImage builds an image from a build context.
	BuildImage(ctx context.Context, opts BuildOptions, out io.Writer) error

	// TagImage adds target as a reference to source.
	TagImage(ctx context.Context, source, target string) error

	// PushImage pushes ref to its registry.
	PushImage(ctx context.Context, ref string, out io.Writer) error

	// Login authenticates against a registry.
	Login(ctx context.Context, creds RegistryCredentials) error

	// RunContainer creates and starts a container, returning its ID.
	RunContainer(ctx context.Context, opts RunOptions) (string, error)
}

// BuildOptions configures an image build.
type BuildOptions struct {
	ContextDir string
	Dockerfile string
	Tags       []string
	BuildArgs  map[string]string
	Labels     map[string]string
	Platform   string
	NoCache    bool
}

// RunOptions configures a container run.
type RunOptions struct {
	Image    string
	Name     string
	Ports    []string
	Env      []string
	Platform string
	Remove   bool
}

// RegistryCredentials holds registry login information.
type RegistryCredentials struct {
	ServerAddress string
	Username      string
	Password      string
}
