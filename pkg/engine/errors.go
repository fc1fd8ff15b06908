package engine

import "errors"

// ErrEngineUnavailable indicates the container engine is not installed or its daemon is not running.
var ErrEngineUnavailable = errors.New(
	"cannot connect to the container engine; is Docker installed and running?",
)

// Errors for image operations in image.go.
var (
	// errListImagesFailed indicates a failure to list images from the engine.
	errListImagesFailed = errors.New("failed to list images")
	// errInspectImageFailed indicates a failure to inspect an image.
	errInspectImageFailed = errors.New("failed to inspect image")
	// errRemoveImageFailed indicates a failure to remove an image.
	errRemoveImageFailed = errors.New("failed to remove image")
	// errTagImageFailed indicates a failure to tag an image.
	errTagImageFailed = errors.New("failed to tag image")
	// errPushImageFailed indicates a failure to push an image.
	errPushImageFailed = errors.New("failed to push image")
	// errBuildImageFailed indicates a failure to build an image.
	errBuildImageFailed = errors.New("failed to build image")
	// errBuildContextFailed indicates a failure to assemble the build context.
	errBuildContextFailed = errors.New("failed to create build context")
)

// Errors for container operations in container.go.
var (
	// errListContainersFailed indicates a failure to list containers.
	errListContainersFailed = errors.New("failed to list containers")
	// errRemoveContainerFailed indicates a failure to remove a container.
	errRemoveContainerFailed = errors.New("failed to remove container")
	// errCreateContainerFailed indicates a failure to create a container.
	errCreateContainerFailed = errors.New("failed to create container")
	// errStartContainerFailed indicates a failure to start a container.
	errStartContainerFailed = errors.New("failed to start container")
	// errInvalidPortSpec indicates a malformed port publishing specification.
	errInvalidPortSpec = errors.New("invalid port specification")
	// errInvalidPlatform indicates a malformed platform specification.
	errInvalidPlatform = errors.New("invalid platform")
)

// Errors for registry authentication operations in auth.go.
var (
	// errRegistryHost indicates the registry of a pushed reference could not be determined.
	errRegistryHost = errors.New("cannot determine registry of image")
	// errEncodeCredentials indicates credentials could not be encoded for the engine.
	errEncodeCredentials = errors.New("failed to encode registry credentials")
	// errLoginFailed indicates the registry rejected the login.
	errLoginFailed = errors.New("registry login failed")
	// errStoreCredentialsFailed indicates credentials could not be saved to the Docker config.
	errStoreCredentialsFailed = errors.New("failed to store registry credentials")
)
