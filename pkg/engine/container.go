package engine

import (
	"context"
	"fmt"

	"github.com/containerd/platforms"
	"github.com/docker/go-connections/nat"
	"github.com/sirupsen/logrus"

	dockerContainer "github.com/docker/docker/api/types/container"
	dockerFilters "github.com/docker/docker/api/types/filters"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/nicholas-fedor/stevedore/internal/util"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// ListContainersByImage returns the IDs of all containers, running or not, created from ref.
//
// Parameters:
//   - ctx: Context for the request.
//   - ref: Image reference used as the ancestor filter.
//
// Returns:
//   - []string: Container IDs, empty if none.
//   - error: Non-nil if listing fails.
func (c *client) ListContainersByImage(ctx context.Context, ref string) ([]string, error) {
	containers, err := c.api.ContainerList(ctx, dockerContainer.ListOptions{
		All:     true,
		Filters: dockerFilters.NewArgs(dockerFilters.Arg("ancestor", ref)),
	})
	if err != nil {
		logrus.WithError(err).WithField("image", ref).Debug("Failed to list containers")

		return nil, fmt.Errorf("%w: %s: %w", errListContainersFailed, ref, err)
	}

	ids := make([]string, 0, len(containers))
	for _, ctr := range containers {
		ids = append(ids, ctr.ID)
	}

	logrus.WithFields(logrus.Fields{
		"image": ref,
		"count": len(ids),
	}).Debug("Listed containers for image")

	return ids, nil
}

// RemoveContainer force-removes a container together with its anonymous volumes.
func (c *client) RemoveContainer(ctx context.Context, id string) error {
	clog := logrus.WithField("container_id", util.ShortID(id))
	clog.Debug("Removing container")

	if err := c.api.ContainerRemove(ctx, id, dockerContainer.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	}); err != nil {
		clog.WithError(err).Debug("Failed to remove container")

		return fmt.Errorf("%w: %s: %w", errRemoveContainerFailed, util.ShortID(id), err)
	}

	return nil
}

// RunContainer creates and starts a container from opts.Image.
//
// Parameters:
//   - ctx: Context for the request.
//   - opts: Image, name, published ports, environment, and platform of the container.
//
// Returns:
//   - string: ID of the started container.
//   - error: Non-nil if the options are invalid or creation/start fails.
func (c *client) RunContainer(ctx context.Context, opts types.RunOptions) (string, error) {
	exposed, bindings, err := nat.ParsePortSpecs(opts.Ports)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidPortSpec, err)
	}

	var platform *ocispec.Platform

	if opts.Platform != "" {
		parsed, err := platforms.Parse(opts.Platform)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", errInvalidPlatform, opts.Platform, err)
		}

		platform = &parsed
	}

	config := &dockerContainer.Config{
		Image:        opts.Image,
		Env:          opts.Env,
		ExposedPorts: exposed,
		Labels:       c.mergeLabels(nil),
	}
	hostConfig := &dockerContainer.HostConfig{
		PortBindings: bindings,
		AutoRemove:   opts.Remove,
	}

	created, err := c.api.ContainerCreate(ctx, config, hostConfig, nil, platform, opts.Name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", errCreateContainerFailed, opts.Image, err)
	}

	for _, warning := range created.Warnings {
		logrus.WithField("container_id", util.ShortID(created.ID)).Warn(warning)
	}

	if err := c.api.ContainerStart(ctx, created.ID, dockerContainer.StartOptions{}); err != nil {
		return "", fmt.Errorf("%w: %s: %w", errStartContainerFailed, util.ShortID(created.ID), err)
	}

	logrus.WithFields(logrus.Fields{
		"container_id": util.ShortID(created.ID),
		"name":         opts.Name,
		"image":        opts.Image,
	}).Debug("Started container")

	return created.ID, nil
}
