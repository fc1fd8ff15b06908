package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/moby/term"
	"github.com/sirupsen/logrus"

	dockerClient "github.com/docker/docker/client"

	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// client is the concrete implementation of the types.Engine interface.
//
// It wraps the Docker API client and applies custom behavior via ClientOptions.
type client struct {
	api dockerClient.APIClient
	ClientOptions
}

// ClientOptions configures the behavior of the Docker API wrapper.
type ClientOptions struct {
	// Labels are applied to every image built and container run.
	Labels map[string]string
}

// NewClient initializes a new engine client for Docker API interactions.
//
// It configures the client using environment variables (e.g., DOCKER_HOST, DOCKER_API_VERSION),
// negotiates the API version, and pings the daemon so an absent or stopped engine fails fast.
//
// Parameters:
//   - ctx: Context for the availability check.
//   - opts: Options to customize engine behavior.
//
// Returns:
//   - types.Engine: Initialized client.
//   - error: ErrEngineUnavailable if the daemon cannot be reached.
func NewClient(ctx context.Context, opts ClientOptions) (types.Engine, error) {
	clientOpts := []dockerClient.Opt{dockerClient.FromEnv}

	// A forced API version from the environment disables negotiation.
	if version := strings.Trim(os.Getenv("DOCKER_API_VERSION"), "\""); version == "" {
		clientOpts = append(clientOpts, dockerClient.WithAPIVersionNegotiation())
	}

	cli, err := dockerClient.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}

	engine := &client{api: cli, ClientOptions: opts}
	if err := engine.Ping(ctx); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"host":           cli.DaemonHost(),
		"client_version": cli.ClientVersion(),
	}).Debug("Initialized Docker client")

	return engine, nil
}

// NewClientWithAPI wraps an existing Docker API client without checking availability.
func NewClientWithAPI(api dockerClient.APIClient, opts ClientOptions) types.Engine {
	return &client{api: api, ClientOptions: opts}
}

// Ping verifies the Docker daemon answers.
//
// Parameters:
//   - ctx: Context for the request.
//
// Returns:
//   - error: ErrEngineUnavailable wrapping the cause, nil when reachable.
func (c *client) Ping(ctx context.Context) error {
	ping, err := c.api.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Docker daemon did not answer ping")

		return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}

	logrus.WithFields(logrus.Fields{
		"api_version": ping.APIVersion,
		"os_type":     ping.OSType,
	}).Trace("Docker daemon answered ping")

	return nil
}

// displayStream renders a Docker JSON message stream (build or push progress) to out.
// Errors reported inside the stream are returned.
func displayStream(stream io.Reader, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	fd, isTerminal := term.GetFdInfo(out)

	return jsonmessage.DisplayJSONMessagesStream(stream, out, fd, isTerminal, nil) //nolint:wrapcheck
}

// mergeLabels combines the client-wide labels with per-call labels, the latter taking precedence.
func (c *client) mergeLabels(labels map[string]string) map[string]string {
	merged := make(map[string]string, len(c.Labels)+len(labels))
	for key, value := range c.Labels {
		merged[key] = value
	}

	for key, value := range labels {
		merged[key] = value
	}

	return merged
}
