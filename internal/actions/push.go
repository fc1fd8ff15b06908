package actions

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/stevedore/pkg/imageref"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// PushParams configures a push to the project registry.
type PushParams struct {
	Project types.Project
	// Tag to push; the newest tracked build when empty.
	Tag string
	// Latest also pushes the floating latest tag.
	Latest bool
	Output io.Writer
}

// lookupHost resolves registry hosts before pushing.
var lookupHost = net.DefaultResolver.LookupHost

// Push pushes the project image to its registry.
//
// The registry host is resolved first; a failed lookup is only a warning because proxies and
// engine-side resolution may still reach it. When the registry reference does not exist yet
// it is tagged from the local image.
//
// Parameters:
//   - ctx: Context for engine calls.
//   - client: Engine performing the push.
//   - tracking: Store used to find the newest build when no tag is given.
//   - params: Push settings.
//
// Returns:
//   - []string: References pushed, in order.
//   - error: Non-nil if no registry is configured, no image exists, or a push fails.
func Push(
	ctx context.Context,
	client types.Engine,
	tracking types.TrackingStore,
	params PushParams,
) ([]string, error) {
	project := params.Project

	registryRepo := project.RegistryRepository()
	if registryRepo == "" {
		return nil, errNoRegistry
	}

	tag, err := resolveTagOrLatest(tracking, project, params.Tag)
	if err != nil {
		return nil, err
	}

	ref, err := imageref.Join(registryRepo, tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errPushFailed, err)
	}

	checkRegistryHost(ctx, ref)

	if err := ensureTagged(ctx, client, imageref.MustJoin(project.LocalRepository(), tag), ref); err != nil {
		return nil, err
	}

	refs := []string{ref}

	if params.Latest && tag != imageref.LatestTag {
		latestRef := imageref.MustJoin(registryRepo, imageref.LatestTag)
		if err := client.TagImage(ctx, ref, latestRef); err != nil {
			return nil, fmt.Errorf("%w: %w", errTagFailed, err)
		}

		refs = append(refs, latestRef)
	}

	for _, pushRef := range refs {
		logrus.WithField("image", pushRef).Info("Pushing image")

		if err := client.PushImage(ctx, pushRef, params.Output); err != nil {
			return nil, fmt.Errorf("%w: %w", errPushFailed, err)
		}
	}

	return refs, nil
}

// ensureTagged makes sure registryRef exists, tagging it from localRef if needed.
func ensureTagged(ctx context.Context, client types.Engine, localRef, registryRef string) error {
	exists, err := client.ImageExists(ctx, registryRef)
	if err != nil {
		return fmt.Errorf("%w: %w", errPushFailed, err)
	}

	if exists {
		return nil
	}

	exists, err = client.ImageExists(ctx, localRef)
	if err != nil {
		return fmt.Errorf("%w: %w", errPushFailed, err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", errImageNotFound, localRef)
	}

	if err := client.TagImage(ctx, localRef, registryRef); err != nil {
		return fmt.Errorf("%w: %w", errTagFailed, err)
	}

	return nil
}

// checkRegistryHost warns when the registry host of ref does not resolve.
func checkRegistryHost(ctx context.Context, ref string) {
	host, err := imageref.RegistryHost(ref)
	if err != nil {
		return
	}

	if hostname, _, err := net.SplitHostPort(host); err == nil {
		host = hostname
	}

	if _, err := lookupHost(ctx, host); err != nil {
		logrus.WithError(err).
			WithField("registry", host).
			Warn("Registry host does not resolve, the push may fail")
	}
}
