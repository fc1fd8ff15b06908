package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/stevedore/internal/actions"
	"github.com/nicholas-fedor/stevedore/pkg/notifications"
)

func newPushCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push the project image to its registry",
		Long: "Pushes <registry>/<image>:<tag> using the credentials stored by `stevedore login` " +
			"or the Docker CLI. Without --tag, the newest tracked build is pushed.",
		Args: cobra.NoArgs,
		RunE: runPush,
	}

	cmd.Flags().StringP("tag", "t", "", "Tag to push (defaults to the newest tracked build)")
	cmd.Flags().Bool("latest", false, "Also push the tag as latest")

	return cmd
}

func runPush(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment(cmd, true)
	if err != nil {
		return err
	}

	client, err := env.connect(cmd.Context())
	if err != nil {
		return env.finish("push", nil, err)
	}

	tag, _ := cmd.Flags().GetString("tag")
	latest, _ := cmd.Flags().GetBool("latest")

	refs, err := actions.Push(cmd.Context(), client, env.tracking, actions.PushParams{
		Project: env.project,
		Tag:     tag,
		Latest:  latest,
		Output:  cmd.OutOrStdout(),
	})
	if err != nil {
		return env.finish("push", nil, err)
	}

	for _, ref := range refs {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Pushed %s\n", ref); err != nil {
			return err
		}
	}

	event := notifications.PushEvent(env.project, refs)

	return env.finish("push", &event, nil)
}
