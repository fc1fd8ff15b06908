package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/stevedore/pkg/imageref"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// RunParams configures a container run.
type RunParams struct {
	Project types.Project
	// Tag to run; the newest tracked build when empty.
	Tag string
	// Name of the container; "<image>-<ulid>" when empty.
	Name     string
	Ports    []string
	Env      []string
	Platform string
	// Remove deletes the container once it exits.
	Remove bool
}

// Run starts a detached container from the project image.
//
// The local reference is preferred; the registry reference is used when only it exists.
//
// Parameters:
//   - ctx: Context for engine calls.
//   - client: Engine running the container.
//   - tracking: Store used to find the newest build when no tag is given.
//   - params: Run settings.
//
// Returns:
//   - string: ID of the started container.
//   - error: Non-nil if no image exists for the tag or the container fails to start.
func Run(
	ctx context.Context,
	client types.Engine,
	tracking types.TrackingStore,
	params RunParams,
) (string, error) {
	project := params.Project

	tag, err := resolveTagOrLatest(tracking, project, params.Tag)
	if err != nil {
		return "", err
	}

	image, err := runnableReference(ctx, client, project, tag)
	if err != nil {
		return "", err
	}

	name := params.Name
	if name == "" {
		name = ContainerName(project.ImageName)
	}

	id, err := client.RunContainer(ctx, types.RunOptions{
		Image:    image,
		Name:     name,
		Ports:    params.Ports,
		Env:      params.Env,
		Platform: params.Platform,
		Remove:   params.Remove,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", errRunFailed, err)
	}

	logrus.WithFields(logrus.Fields{
		"image":     image,
		"container": name,
		"ports":     params.Ports,
	}).Info("Started container")

	return id, nil
}

// ContainerName derives a unique container name from an image name.
func ContainerName(imageName string) string {
	base := imageName
	if slash := strings.LastIndex(base, "/"); slash >= 0 {
		base = base[slash+1:]
	}

	return base + "-" + strings.ToLower(ulid.Make().String())
}

func runnableReference(
	ctx context.Context,
	client types.Engine,
	project types.Project,
	tag string,
) (string, error) {
	for _, repository := range project.Repositories() {
		ref, err := imageref.Join(repository, tag)
		if err != nil {
			return "", fmt.Errorf("%w: %w", errRunFailed, err)
		}

		exists, err := client.ImageExists(ctx, ref)
		if err != nil {
			return "", fmt.Errorf("%w: %w", errRunFailed, err)
		}

		if exists {
			return ref, nil
		}
	}

	return "", fmt.Errorf("%w: %s", errImageNotFound, imageref.MustJoin(project.LocalRepository(), tag))
}
