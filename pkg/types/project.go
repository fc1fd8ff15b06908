package types

import "github.com/nicholas-fedor/stevedore/pkg/imageref"

// Project identifies the image lineage a command operates on.
type Project struct {
	// Path is the absolute project directory.
	Path string
	// ImageName is the local repository name of the project image.
	ImageName string
	// Registry is the private registry address, empty when images stay local.
	Registry string
}

// LocalRepository returns the repository images are built under.
func (p Project) LocalRepository() string {
	return p.ImageName
}

// RegistryRepository returns the registry-qualified repository, or an empty string when no
// registry is configured.
func (p Project) RegistryRepository() string {
	return imageref.RegistryRepository(p.Registry, p.ImageName)
}

// Repositories returns the local repository followed by the registry repository, if any.
func (p Project) Repositories() []string {
	repositories := []string{p.LocalRepository()}
	if registry := p.RegistryRepository(); registry != "" {
		repositories = append(repositories, registry)
	}

	return repositories
}
