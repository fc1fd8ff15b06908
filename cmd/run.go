package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/stevedore/internal/actions"
)

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a detached container from the project image",
		Long: "Starts a detached container from <image>:<tag>. Without --tag, the newest tracked " +
			"build is used. Ports and environment variables extend those of the project configuration.",
		Args: cobra.NoArgs,
		RunE: runRun,
	}

	cmd.Flags().StringP("tag", "t", "", "Tag to run (defaults to the newest tracked build)")
	cmd.Flags().StringArrayP("publish", "P", nil, "Publish a container port, for example 8080:80")
	cmd.Flags().StringArrayP("env", "e", nil, "Set an environment variable in KEY=value form")
	cmd.Flags().String("name", "", "Container name (defaults to <image>-<ulid>)")
	cmd.Flags().String("platform", "", "Platform of the image to run, for example linux/amd64")
	cmd.Flags().Bool("rm", false, "Remove the container when it exits")

	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment(cmd, true)
	if err != nil {
		return err
	}

	flagSet := cmd.Flags()

	tag, _ := flagSet.GetString("tag")
	ports, _ := flagSet.GetStringArray("publish")
	envVars, _ := flagSet.GetStringArray("env")
	name, _ := flagSet.GetString("name")
	remove, _ := flagSet.GetBool("rm")

	platform, _ := flagSet.GetString("platform")
	if platform == "" {
		platform = env.config.Platform
	}

	client, err := env.connect(cmd.Context())
	if err != nil {
		return env.finish("run", nil, err)
	}

	id, err := actions.Run(cmd.Context(), client, env.tracking, actions.RunParams{
		Project:  env.project,
		Tag:      tag,
		Name:     name,
		Ports:    append(append([]string{}, env.config.Ports...), ports...),
		Env:      append(append([]string{}, env.config.Env...), envVars...),
		Platform: platform,
		Remove:   remove,
	})
	if err != nil {
		return env.finish("run", nil, err)
	}

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
		return err
	}

	return env.finish("run", nil, nil)
}
