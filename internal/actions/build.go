package actions

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/stevedore/pkg/imageref"
	"github.com/nicholas-fedor/stevedore/pkg/store"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// Labels applied to images built and containers run by stevedore.
const (
	ProjectLabel = "dev.stevedore.project"
	ImageLabel   = "dev.stevedore.image"
	TagLabel     = "dev.stevedore.tag"
)

// BuildParams configures a project build.
type BuildParams struct {
	Project    types.Project
	Tag        string
	ContextDir string
	Dockerfile string
	BuildArgs  map[string]string
	Platform   string
	NoCache    bool
	Output     io.Writer
}

// Build builds the project image, tags it for the registry, and records it in the tracking store.
//
// The image is built as localRepo:tag and, when a registry is configured, also tagged
// registryRepo:tag. Tracked builds older than the retention period are swept afterwards.
//
// Parameters:
//   - ctx: Context for engine calls.
//   - client: Engine performing the build.
//   - tracking: Store recording the build.
//   - params: Build settings.
//
// Returns:
//   - types.TrackedImage: The recorded build.
//   - error: Non-nil if the tag is invalid, the build fails, or the registry tag cannot be applied.
func Build(
	ctx context.Context,
	client types.Engine,
	tracking types.TrackingStore,
	params BuildParams,
) (types.TrackedImage, error) {
	project := params.Project

	tag := imageref.NormalizeTag(params.Tag)
	if tag == "" {
		return types.TrackedImage{}, errMissingTag
	}

	localRef, err := imageref.Join(project.LocalRepository(), tag)
	if err != nil {
		return types.TrackedImage{}, fmt.Errorf("%w: %w", errBuildFailed, err)
	}

	clog := logrus.WithFields(logrus.Fields{
		"image":   localRef,
		"project": project.Path,
	})
	clog.Info("Building image")

	start := time.Now()

	err = client.BuildImage(ctx, types.BuildOptions{
		ContextDir: params.ContextDir,
		Dockerfile: params.Dockerfile,
		Tags:       []string{localRef},
		BuildArgs:  params.BuildArgs,
		Labels: map[string]string{
			ProjectLabel: project.Path,
			ImageLabel:   project.ImageName,
			TagLabel:     tag,
		},
		Platform: params.Platform,
		NoCache:  params.NoCache,
	}, params.Output)
	if err != nil {
		return types.TrackedImage{}, fmt.Errorf("%w: %w", errBuildFailed, err)
	}

	reference := localRef

	if registryRepo := project.RegistryRepository(); registryRepo != "" {
		registryRef, err := imageref.Join(registryRepo, tag)
		if err != nil {
			return types.TrackedImage{}, fmt.Errorf("%w: %w", errTagFailed, err)
		}

		if err := client.TagImage(ctx, localRef, registryRef); err != nil {
			return types.TrackedImage{}, fmt.Errorf("%w: %w", errTagFailed, err)
		}

		reference = registryRef
	}

	size, err := client.ImageSize(ctx, localRef)
	if err != nil {
		clog.WithError(err).Debug("Failed to read size of built image")
	}

	entry := types.TrackedImage{
		ImageName:   project.ImageName,
		Tag:         tag,
		Reference:   reference,
		ProjectPath: project.Path,
		BuiltAt:     time.Now().UTC().Format(time.RFC3339),
		Size:        size,
		Dockerfile:  params.Dockerfile,
		BuildArgs:   params.BuildArgs,
	}
	tracking.Record(entry)

	if swept := tracking.SweepStale(store.DefaultRetention); swept > 0 {
		clog.WithField("count", swept).Debug("Dropped stale tracked builds")
	}

	clog.WithFields(logrus.Fields{
		"reference": reference,
		"size":      size,
		"duration":  time.Since(start).Round(time.Millisecond),
	}).Info("Built image")

	return entry, nil
}

// latestTrackedTag returns the tag of the newest tracked build, or an empty string.
func latestTrackedTag(tracking types.TrackingStore, project types.Project) string {
	entries := tracking.List(project.Path, project.ImageName)
	if len(entries) == 0 {
		return ""
	}

	return entries[0].Tag
}

// resolveTagOrLatest normalizes tag, falling back to the newest tracked build.
func resolveTagOrLatest(
	tracking types.TrackingStore,
	project types.Project,
	tag string,
) (string, error) {
	if tag = imageref.NormalizeTag(tag); tag != "" {
		return tag, nil
	}

	if tag = latestTrackedTag(tracking, project); tag != "" {
		logrus.WithField("tag", tag).Debug("Using newest tracked build")

		return tag, nil
	}

	return "", errMissingTag
}
