// Package imageref provides image reference naming rules for stevedore.
// It derives the local and registry repositories of a project image, joins and splits
// repository:tag references, and normalizes user-supplied tags.
package imageref

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/distribution/reference"
)

// Domains for Docker Hub, the default registry.
const (
	DefaultRegistryDomain = "docker.io"
	DefaultRegistryHost   = "index.docker.io"
)

// VersionPrefix is the marker carried by generated and normalized tags.
const VersionPrefix = "v"

// LatestTag is the floating tag optionally pushed alongside a versioned tag.
const LatestTag = "latest"

var (
	// errEmptyTag indicates a tag was required but not provided.
	errEmptyTag = errors.New("tag must not be empty")
	// errInvalidReference indicates a reference could not be parsed.
	errInvalidReference = errors.New("invalid image reference")
	// errMissingTag indicates a reference carries no tag.
	errMissingTag = errors.New("image reference has no tag")
)

// NormalizeTag trims the tag and prefixes it with the version marker when it starts with a digit,
// so "42" becomes "v42" while "v42" and "latest" are returned unchanged.
func NormalizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return tag
	}

	if unicode.IsDigit(rune(tag[0])) {
		return VersionPrefix + tag
	}

	return tag
}

// RegistryRepository returns the registry-qualified repository for an image name.
// It returns an empty string when no registry is configured.
func RegistryRepository(registry, imageName string) string {
	registry = strings.TrimSuffix(strings.TrimSpace(registry), "/")
	registry = strings.TrimPrefix(strings.TrimPrefix(registry, "https://"), "http://")

	if registry == "" {
		return ""
	}

	return registry + "/" + imageName
}

// Join combines a repository and a tag into a validated reference in its familiar form.
func Join(repository, tag string) (string, error) {
	if tag == "" {
		return "", errEmptyTag
	}

	named, err := reference.ParseNormalizedNamed(repository)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", errInvalidReference, repository, err)
	}

	tagged, err := reference.WithTag(reference.TrimNamed(named), tag)
	if err != nil {
		return "", fmt.Errorf("%w: %s:%s: %w", errInvalidReference, repository, tag, err)
	}

	return reference.FamiliarString(tagged), nil
}

// MustJoin is Join for parts that come from already validated configuration.
// Parts that do not parse are concatenated as given.
func MustJoin(repository, tag string) string {
	if ref, err := Join(repository, tag); err == nil {
		return ref
	}

	return repository + ":" + tag
}

// FamiliarName returns the short form of a repository name, the way the engine prints it
// in image tags. "docker.io/library/app" becomes "app".
func FamiliarName(name string) (string, error) {
	named, err := reference.ParseNormalizedNamed(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", errInvalidReference, name, err)
	}

	return reference.FamiliarName(named), nil
}

// Split separates a reference into its familiar repository name and its tag.
func Split(ref string) (string, string, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", errInvalidReference, ref, err)
	}

	tagged, ok := named.(reference.Tagged)
	if !ok {
		return reference.FamiliarName(named), "", fmt.Errorf("%w: %s", errMissingTag, ref)
	}

	return reference.FamiliarName(named), tagged.Tag(), nil
}

// RegistryHost extracts the registry address from an image reference, mapping Docker Hub's
// default domain to its canonical host address.
func RegistryHost(ref string) (string, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", errInvalidReference, ref, err)
	}

	address := reference.Domain(named)
	if address == DefaultRegistryDomain {
		address = DefaultRegistryHost
	}

	return address, nil
}

// ValidateImageName reports whether name is usable as a local repository name.
//
// Names must be in short form so that built, tracked and listed references all agree.
func ValidateImageName(name string) error {
	familiar, err := FamiliarName(name)
	if err != nil {
		return err
	}

	if strings.Contains(name, ":") || strings.Contains(name, "@") {
		return fmt.Errorf("%w: %s: image name must not carry a tag or digest", errInvalidReference, name)
	}

	if familiar != name {
		return fmt.Errorf("%w: %s: image name must be in short form, use %q", errInvalidReference, name, familiar)
	}

	return nil
}
