package cmd

import (
	"fmt"
	"maps"

	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/stevedore/internal/actions"
	"github.com/nicholas-fedor/stevedore/internal/config"
	"github.com/nicholas-fedor/stevedore/pkg/notifications"
	"github.com/nicholas-fedor/stevedore/pkg/tagger"
)

func newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build and tag the project image",
		Long: "Builds the project image as <image>:<tag>, tags it for the registry and records the build.\n" +
			"Without --tag, the tag is derived from the current time and Git commit.",
		Args: cobra.NoArgs,
		RunE: runBuild,
	}

	cmd.Flags().StringP("tag", "t", "", "Tag to build; a leading digit gets a \"v\" prefix")
	cmd.Flags().StringP("dockerfile", "f", "", "Dockerfile path, relative to the build context")
	cmd.Flags().StringArray("build-arg", nil, "Build argument in KEY=value form")
	cmd.Flags().String("platform", "", "Target platform, for example linux/amd64")
	cmd.Flags().Bool("no-cache", false, "Do not use the build cache")

	return cmd
}

func runBuild(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment(cmd, true)
	if err != nil {
		return err
	}

	params, err := buildParams(cmd, env)
	if err != nil {
		return err
	}

	client, err := env.connect(cmd.Context())
	if err != nil {
		return env.finish("build", nil, err)
	}

	entry, err := actions.Build(cmd.Context(), client, env.tracking, params)
	if err != nil {
		return env.finish("build", nil, err)
	}

	event := notifications.BuildEvent(entry)

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n", event.Summary); err != nil {
		return err
	}

	return env.finish("build", &event, nil)
}

// buildParams merges the build flags over the project configuration.
func buildParams(cmd *cobra.Command, env *environment) (actions.BuildParams, error) {
	flagSet := cmd.Flags()

	buildArgs, err := config.ParseKeyValues(env.config.BuildArgs)
	if err != nil {
		return actions.BuildParams{}, err
	}

	extraArgs, _ := flagSet.GetStringArray("build-arg")

	overrides, err := config.ParseKeyValues(extraArgs)
	if err != nil {
		return actions.BuildParams{}, err
	}

	maps.Copy(buildArgs, overrides)

	tag, _ := flagSet.GetString("tag")
	if tag == "" {
		tag = tagger.New().Generate(env.projectDir)
	}

	dockerfile, _ := flagSet.GetString("dockerfile")
	if dockerfile == "" {
		dockerfile = env.config.Dockerfile
	}

	platform, _ := flagSet.GetString("platform")
	if platform == "" {
		platform = env.config.Platform
	}

	noCache, _ := flagSet.GetBool("no-cache")

	return actions.BuildParams{
		Project:    env.project,
		Tag:        tag,
		ContextDir: env.config.ContextDir(env.projectDir),
		Dockerfile: dockerfile,
		BuildArgs:  buildArgs,
		Platform:   platform,
		NoCache:    noCache,
		Output:     cmd.OutOrStdout(),
	}, nil
}
