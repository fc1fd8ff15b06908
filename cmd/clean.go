package cmd

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/moby/term"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/stevedore/internal/actions"
	"github.com/nicholas-fedor/stevedore/pkg/metrics"
	"github.com/nicholas-fedor/stevedore/pkg/notifications"
	"github.com/nicholas-fedor/stevedore/pkg/prompt"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// isInteractive reports whether prompts can be shown on in.
var isInteractive = func(in io.Reader) bool {
	_, isTerminal := term.GetFdInfo(in)

	return isTerminal
}

// newPrompts creates the selection and confirmation prompts drawn on the command's streams.
var newPrompts = func(cmd *cobra.Command) (types.Selector, types.Confirmer) {
	options := []tea.ProgramOption{
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
	}

	return prompt.NewSelector(options...), prompt.NewConfirmer(options...)
}

func newCleanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove project images and the containers using them",
		Long: "Reconciles the builds tracked by stevedore with the images present in the engine, " +
			"lets you choose which ones to remove, and removes them together with their containers.\n" +
			"Tags you leave unselected are remembered and start unselected next time.\n" +
			"With --tag, only the local and registry images of that tag are removed.",
		Args: cobra.NoArgs,
		RunE: runClean,
	}

	cmd.Flags().StringP("tag", "t", "", "Only remove the images of this tag")
	cmd.Flags().BoolP("yes", "y", false, "Remove every candidate without prompting")

	return cmd
}

func runClean(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment(cmd, true)
	if err != nil {
		return err
	}

	tag, _ := cmd.Flags().GetString("tag")
	assumeYes, _ := cmd.Flags().GetBool("yes")

	if !assumeYes && !isInteractive(cmd.InOrStdin()) {
		return errNotInteractive
	}

	client, err := env.connect(cmd.Context())
	if err != nil {
		return env.finish("clean", nil, err)
	}

	if swept := env.preferences.SweepStale(); swept > 0 {
		logrus.WithField("count", swept).Debug("Dropped preferences of removed projects")
	}

	selector, confirmer := newPrompts(cmd)

	report, err := actions.Clean(cmd.Context(), client, env.tracking, env.preferences, actions.CleanParams{
		Project:   env.project,
		Tag:       tag,
		AssumeYes: assumeYes,
		Selector:  selector,
		Confirmer: confirmer,
	})
	if err != nil {
		return env.finish("clean", nil, err)
	}

	env.metrics.RegisterCleanup(metrics.NewMetric(report), report.State())

	if _, err := fmt.Fprintln(cmd.OutOrStdout(), report.Summary()); err != nil {
		return err
	}

	event := notifications.CleanupEvent(env.project, report)

	return env.finish("clean", &event, nil)
}
