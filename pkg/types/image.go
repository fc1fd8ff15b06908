package types

import (
	"strings"
	"time"
)

// TrackedImage records a build performed by stevedore.
//
// Entries are keyed by (ProjectPath, ImageName, Tag); recording the same key again replaces the
// previous entry.
type TrackedImage struct {
	// ImageName is the logical project image name (the local repository).
	ImageName string `json:"imageName"`
	// Tag is the tag the image was built with.
	Tag string `json:"tag"`
	// Reference is the fully-qualified image reference (registry repository and tag).
	Reference string `json:"fullImageName"`
	// ProjectPath is the absolute path of the project the image was built from.
	ProjectPath string `json:"projectPath"`
	// BuiltAt is the RFC 3339 build timestamp.
	BuiltAt string `json:"buildTime"`
	// Size is the human readable image size, if known.
	Size string `json:"size,omitempty"`
	// Dockerfile is the Dockerfile used for the build, if not the default.
	Dockerfile string `json:"dockerfile,omitempty"`
	// BuildArgs holds the build arguments passed to the build.
	BuildArgs map[string]string `json:"buildArgs,omitempty"`
}

// Key returns the composite identity key of the entry.
func (t TrackedImage) Key() string {
	return TrackingKey(t.ProjectPath, t.ImageName, t.Tag)
}

// BuildTime parses BuiltAt, returning the zero time if it is missing or malformed.
func (t TrackedImage) BuildTime() time.Time {
	return ParseTimestamp(t.BuiltAt)
}

// TrackingKey builds the composite key for a tracked image.
func TrackingKey(projectPath, imageName, tag string) string {
	return ProjectKey(projectPath, imageName) + ":" + tag
}

// ProjectKey builds the composite key scoping records to a project image.
func ProjectKey(projectPath, imageName string) string {
	return projectPath + ":" + imageName
}

// ImageSummary is a single repository:tag row reported by the engine.
type ImageSummary struct {
	Reference  string
	Repository string
	Tag        string
	Size       string
	Created    string
}

// CleanupTarget is one image reference eligible for removal, together with the containers
// currently instantiated from it.
type CleanupTarget struct {
	// Reference is the repository:tag of the image.
	Reference string
	// Tag is the tag part of Reference.
	Tag string
	// Size is the human readable image size, if known.
	Size string
	// Created is the build or creation timestamp, if known.
	Created string
	// Tracked reports whether the image came from the tracking store.
	Tracked bool
	// ContainerIDs lists the containers created from the image, as last reported by the engine.
	ContainerIDs []string
}

// HasContainers reports whether any container uses the target's image.
func (t CleanupTarget) HasContainers() bool {
	return len(t.ContainerIDs) > 0
}

// CreatedTime parses Created, returning the zero time if it is missing or malformed.
func (t CleanupTarget) CreatedTime() time.Time {
	return ParseTimestamp(t.Created)
}

// timestampLayouts lists the accepted timestamp formats, most specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 -0700",
}

// ParseTimestamp parses an ISO-8601 or engine creation timestamp.
// Unparseable input yields the zero time.
func ParseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}

	return time.Time{}
}
