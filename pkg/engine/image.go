package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/moby/go-archive"
	"github.com/moby/patternmatcher/ignorefile"
	"github.com/sirupsen/logrus"

	cerrdefs "github.com/containerd/errdefs"
	dockerTypes "github.com/docker/docker/api/types"
	dockerFilters "github.com/docker/docker/api/types/filters"
	dockerImage "github.com/docker/docker/api/types/image"

	"github.com/nicholas-fedor/stevedore/internal/util"
	"github.com/nicholas-fedor/stevedore/pkg/imageref"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// danglingTag is the placeholder the engine reports for untagged images.
const danglingTag = "<none>:<none>"

// dockerignoreFile is the build context exclusion file honored by builds.
const dockerignoreFile = ".dockerignore"

// ListImagesByRepository returns one summary per repository:tag matching repository.
//
// Parameters:
//   - ctx: Context for the request.
//   - repository: Repository name, local ("app") or registry-qualified ("registry.example.com/app").
//
// Returns:
//   - []types.ImageSummary: Matching image tags, empty if none.
//   - error: Non-nil if listing fails.
func (c *client) ListImagesByRepository(
	ctx context.Context,
	repository string,
) ([]types.ImageSummary, error) {
	images, err := c.api.ImageList(ctx, dockerImage.ListOptions{
		Filters: dockerFilters.NewArgs(dockerFilters.Arg("reference", repository)),
	})
	if err != nil {
		logrus.WithError(err).WithField("repository", repository).Debug("Failed to list images")

		return nil, fmt.Errorf("%w: %s: %w", errListImagesFailed, repository, err)
	}

	// The engine prints tags in short form.
	want, err := imageref.FamiliarName(repository)
	if err != nil {
		want = repository
	}

	summaries := []types.ImageSummary{}

	for _, img := range images {
		for _, repoTag := range img.RepoTags {
			if repoTag == danglingTag {
				continue
			}

			repo, tag, err := imageref.Split(repoTag)
			if err != nil || repo != want {
				continue
			}

			summaries = append(summaries, types.ImageSummary{
				Reference:  repoTag,
				Repository: repo,
				Tag:        tag,
				Size:       units.HumanSize(float64(img.Size)),
				Created:    time.Unix(img.Created, 0).UTC().Format(time.RFC3339),
			})
		}
	}

	logrus.WithFields(logrus.Fields{
		"repository": repository,
		"count":      len(summaries),
	}).Debug("Listed images")

	return summaries, nil
}

// ImageExists reports whether the engine holds an image for ref.
//
// Parameters:
//   - ctx: Context for the request.
//   - ref: Image reference to inspect.
//
// Returns:
//   - bool: True if the image exists.
//   - error: Non-nil if inspection fails for a reason other than absence.
func (c *client) ImageExists(ctx context.Context, ref string) (bool, error) {
	if _, err := c.api.ImageInspect(ctx, ref); err != nil {
		if cerrdefs.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("%w: %s: %w", errInspectImageFailed, ref, err)
	}

	return true, nil
}

// ImageSize returns the human readable size of ref.
func (c *client) ImageSize(ctx context.Context, ref string) (string, error) {
	info, err := c.api.ImageInspect(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", errInspectImageFailed, ref, err)
	}

	return units.HumanSize(float64(info.Size)), nil
}

// RemoveImage deletes an image reference from the Docker host.
//
// It removes the reference with force and pruning, logging details if debug is enabled.
//
// Parameters:
//   - ctx: Context for the request.
//   - ref: Image reference to remove.
//
// Returns:
//   - error: Non-nil if removal fails; absence is detectable with cerrdefs.IsNotFound.
func (c *client) RemoveImage(ctx context.Context, ref string) error {
	clog := logrus.WithField("image", ref)
	clog.Debug("Removing image")

	items, err := c.api.ImageRemove(ctx, ref, dockerImage.RemoveOptions{
		Force:         true,
		PruneChildren: true,
	})
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			clog.WithError(err).Debug("Image not found, no removal needed")

			return fmt.Errorf("%w: %s", err, ref)
		}

		clog.WithError(err).Debug("Failed to remove image")

		return fmt.Errorf("%w: %s: %w", errRemoveImageFailed, ref, err)
	}

	// Log removal details if debug is enabled.
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		deleted := []string{}
		untagged := []string{}

		for _, item := range items {
			if item.Deleted != "" {
				deleted = append(deleted, util.ShortID(item.Deleted))
			}

			if item.Untagged != "" {
				untagged = append(untagged, item.Untagged)
			}
		}

		clog.WithFields(logrus.Fields{
			"deleted":  strings.Join(deleted, ", "),
			"untagged": strings.Join(untagged, ", "),
		}).Debug("Image removal details")
	}

	return nil
}

// TagImage adds target as a reference to the image source points at.
func (c *client) TagImage(ctx context.Context, source, target string) error {
	if err := c.api.ImageTag(ctx, source, target); err != nil {
		return fmt.Errorf("%w: %s -> %s: %w", errTagImageFailed, source, target, err)
	}

	logrus.WithFields(logrus.Fields{
		"source": source,
		"target": target,
	}).Debug("Tagged image")

	return nil
}

// PushImage pushes ref to its registry, rendering progress to out.
//
// Credentials are resolved with RegistryAuth.
func (c *client) PushImage(ctx context.Context, ref string, out io.Writer) error {
	auth, err := RegistryAuth(ref)
	if err != nil {
		logrus.WithError(err).WithField("image", ref).Debug("Pushing without registry credentials")

		auth = ""
	}

	stream, err := c.api.ImagePush(ctx, ref, dockerImage.PushOptions{RegistryAuth: auth})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errPushImageFailed, ref, err)
	}
	defer stream.Close()

	if err := displayStream(stream, out); err != nil {
		return fmt.Errorf("%w: %s: %w", errPushImageFailed, ref, err)
	}

	return nil
}

// BuildImage builds an image from opts.ContextDir, honoring its .dockerignore file.
//
// Parameters:
//   - ctx: Context for the request.
//   - opts: Build settings (context, Dockerfile, tags, arguments, platform).
//   - out: Destination for build progress.
//
// Returns:
//   - error: Non-nil if the context cannot be packed or the build fails.
func (c *client) BuildImage(ctx context.Context, opts types.BuildOptions, out io.Writer) error {
	excludes, err := readDockerignore(opts.ContextDir)
	if err != nil {
		return fmt.Errorf("%w: %w", errBuildContextFailed, err)
	}

	buildContext, err := archive.TarWithOptions(opts.ContextDir, &archive.TarOptions{
		ExcludePatterns: excludes,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errBuildContextFailed, err)
	}
	defer buildContext.Close()

	buildArgs := make(map[string]*string, len(opts.BuildArgs))
	for key, value := range opts.BuildArgs {
		buildArgs[key] = &value
	}

	logrus.WithFields(logrus.Fields{
		"context":    opts.ContextDir,
		"dockerfile": opts.Dockerfile,
		"tags":       opts.Tags,
		"platform":   opts.Platform,
	}).Debug("Starting image build")

	resp, err := c.api.ImageBuild(ctx, buildContext, dockerTypes.ImageBuildOptions{
		Tags:        opts.Tags,
		Dockerfile:  opts.Dockerfile,
		BuildArgs:   buildArgs,
		Labels:      c.mergeLabels(opts.Labels),
		Platform:    opts.Platform,
		NoCache:     opts.NoCache,
		Remove:      true,
		ForceRemove: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errBuildImageFailed, err)
	}
	defer resp.Body.Close()

	if err := displayStream(resp.Body, out); err != nil {
		return fmt.Errorf("%w: %w", errBuildImageFailed, err)
	}

	return nil
}

// readDockerignore returns the exclusion patterns of the build context, if any.
func readDockerignore(contextDir string) ([]string, error) {
	file, err := os.Open(filepath.Join(contextDir, dockerignoreFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to open %s: %w", dockerignoreFile, err)
	}
	defer file.Close()

	patterns, err := ignorefile.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", dockerignoreFile, err)
	}

	return patterns, nil
}
