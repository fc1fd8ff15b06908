package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/stevedore/internal/actions"
	"github.com/nicholas-fedor/stevedore/internal/config"
	"github.com/nicholas-fedor/stevedore/internal/flags"
	"github.com/nicholas-fedor/stevedore/internal/logging"
	"github.com/nicholas-fedor/stevedore/internal/meta"
	"github.com/nicholas-fedor/stevedore/pkg/engine"
	"github.com/nicholas-fedor/stevedore/pkg/metrics"
	"github.com/nicholas-fedor/stevedore/pkg/notifications"
	"github.com/nicholas-fedor/stevedore/pkg/store"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// errNotInteractive indicates a prompt was needed without a terminal to show it on.
var errNotInteractive = errors.New("stdin is not a terminal, pass --yes to clean without prompting")

// newEngine connects to the container engine. Tests replace it with a mock.
var newEngine = func(ctx context.Context, labels map[string]string) (types.Engine, error) {
	return engine.NewClient(ctx, engine.ClientOptions{Labels: labels})
}

// rootCmd is the command executed by main.
var rootCmd = NewRootCommand()

// NewRootCommand creates the stevedore command tree with every global flag registered.
//
// Returns:
//   - *cobra.Command: The root command, ready for execution.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "stevedore",
		Short: "Builds, tags, pushes, runs and cleans project images",
		Long: "\nStevedore builds a project's Docker image, pushes it to a private registry, runs it, " +
			"and cleans up the images and containers left behind by earlier builds.",
		SilenceUsage:      true,
		PersistentPreRunE: preRun,
	}

	flags.SetDefaults()
	flags.RegisterDockerFlags(root)
	flags.RegisterSystemFlags(root)

	root.AddCommand(
		newInitCommand(),
		newBuildCommand(),
		newPushCommand(),
		newLoginCommand(),
		newRunCommand(),
		newCleanCommand(),
		newStatusCommand(),
		newVersionCommand(),
	)

	return root
}

// Execute runs the root command, cancelling its context on SIGINT or SIGTERM.
//
// Any error is logged fatal, so the process exits non-zero.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		logrus.WithError(err).Fatal("Command failed")
	}
}

// preRun configures logging and the Docker environment before any command runs.
func preRun(cmd *cobra.Command, _ []string) error {
	flagSet := cmd.Flags()

	if err := flags.ProcessFlagAliases(flagSet); err != nil {
		return err
	}

	if err := flags.SetupLogging(flagSet); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if err := flags.GetSecretsFromFiles(cmd.Root()); err != nil {
		return err
	}

	if err := flags.EnvConfig(cmd.Root()); err != nil {
		return fmt.Errorf("failed to configure Docker environment: %w", err)
	}

	return nil
}

// environment holds what a project command needs: the project, its stores and the reporting
// sinks.
type environment struct {
	fs          afero.Fs
	projectDir  string
	configPath  string
	config      config.Config
	project     types.Project
	stateDir    string
	tracking    *store.TrackingStore
	preferences *store.PreferenceStore
	notifier    *notifications.Notifier
	metrics     *metrics.Metrics
	metricsFile string
}

// loadEnvironment resolves the project, loads its configuration and opens the stores.
//
// Parameters:
//   - cmd: Command being executed, carrying the global flags.
//   - requireConfig: Whether a missing project configuration is an error.
//
// Returns:
//   - *environment: Resolved environment.
//   - error: Non-nil if the project, its configuration or the reporting sinks are invalid.
func loadEnvironment(cmd *cobra.Command, requireConfig bool) (*environment, error) {
	flagSet := cmd.Flags()
	env := &environment{fs: afero.NewOsFs()}

	var err error

	if env.projectDir, err = flags.ProjectDir(flagSet); err != nil {
		return nil, err
	}

	configFile, _ := flagSet.GetString("config")
	env.configPath = config.Path(env.projectDir, configFile)

	env.config, err = config.Load(env.fs, env.configPath)
	if err != nil && (requireConfig || !errors.Is(err, config.ErrNotInitialized)) {
		return nil, err
	}

	env.project = env.config.Project(env.projectDir)
	env.stateDir = flags.StateDir(flagSet)
	env.tracking = store.NewTrackingStore(env.fs, env.statePath(store.TrackingFileName))
	env.preferences = store.NewPreferenceStore(env.fs, env.statePath(store.PreferenceFileName))

	urls, _ := flagSet.GetStringArray("notification-url")
	template, _ := flagSet.GetString("notification-template")

	if env.notifier, err = notifications.New(urls, template); err != nil {
		return nil, err
	}

	if env.metrics, err = metrics.New(); err != nil {
		return nil, err
	}

	env.metricsFile, _ = flagSet.GetString("metrics-file")

	logging.WriteStartupMessage(notifications.LocalLog, logging.StartupInfo{
		Version:     meta.Version,
		Command:     cmd.Name(),
		ProjectDir:  env.projectDir,
		StateDir:    env.stateDir,
		Notifiers:   env.notifier.Names(),
		MetricsFile: env.metricsFile,
	})

	return env, nil
}

func (e *environment) statePath(name string) string {
	return filepath.Join(e.stateDir, name)
}

// connect creates the engine client, labelling built images and run containers with the project.
func (e *environment) connect(ctx context.Context) (types.Engine, error) {
	return newEngine(ctx, map[string]string{actions.ProjectLabel: e.projectDir})
}

// finish records the command outcome, sends the event and writes the metrics textfile.
//
// Reporting failures are logged only; they never change the command's result.
func (e *environment) finish(command string, event *notifications.Event, err error) error {
	e.metrics.RegisterCommand(command, err)

	if event != nil {
		if sendErr := e.notifier.Send(*event); sendErr != nil {
			notifications.LocalLog.WithError(sendErr).Warn("Failed to send notification")
		}
	}

	if e.metricsFile != "" {
		if writeErr := e.metrics.WriteTextfile(e.metricsFile); writeErr != nil {
			logrus.WithError(writeErr).Warn("Failed to write metrics")
		}
	}

	return err
}
