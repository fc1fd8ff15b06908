package actions

import "errors"

// Errors for cleanup operations.
var (
	// errInvalidTag indicates an explicit cleanup tag cannot form a valid image reference.
	errInvalidTag = errors.New("invalid tag")
	// errMissingSelector indicates interactive selection was required but no selector was provided.
	errMissingSelector = errors.New("no selector configured for interactive cleanup")
	// errMissingConfirmer indicates confirmation was required but no confirmer was provided.
	errMissingConfirmer = errors.New("no confirmer configured for interactive cleanup")
	// errSelectionFailed indicates the interactive selection could not be completed.
	errSelectionFailed = errors.New("failed to select cleanup targets")
	// errConfirmationFailed indicates the confirmation prompt could not be completed.
	errConfirmationFailed = errors.New("failed to confirm cleanup")
)

// Errors for build, push, and run operations.
var (
	// errMissingTag indicates an operation needed a tag and none was given or tracked.
	errMissingTag = errors.New("no tag given and no tracked build found")
	// errNoRegistry indicates a push was requested for a project without a registry.
	errNoRegistry = errors.New("no registry configured for project")
	// errImageNotFound indicates no local image exists for the requested tag.
	errImageNotFound = errors.New("image not found")
	// errBuildFailed indicates the engine build failed.
	errBuildFailed = errors.New("build failed")
	// errTagFailed indicates the registry tag could not be applied.
	errTagFailed = errors.New("failed to tag image for registry")
	// errPushFailed indicates the push to the registry failed.
	errPushFailed = errors.New("push failed")
	// errRunFailed indicates the container could not be started.
	errRunFailed = errors.New("failed to run container")
)
