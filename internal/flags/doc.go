// Package flags manages the global command-line flags and environment variables of stevedore.
// It configures the Docker connection, the project and state locations, logging, notifications
// and metrics export via Cobra and Viper.
//
// Key components:
//   - RegisterDockerFlags: Adds Docker API client flags.
//   - RegisterSystemFlags: Adds project, state, logging, notification and metrics flags.
//   - SetupLogging: Configures logrus based on flags.
//
// Usage example:
//
//	cmd := &cobra.Command{}
//	flags.SetDefaults()
//	flags.RegisterDockerFlags(cmd)
//	flags.RegisterSystemFlags(cmd)
//	if err := flags.SetupLogging(cmd.PersistentFlags()); err != nil {
//	    logrus.WithError(err).Fatal("Logging setup failed")
//	}
//
// Every flag defaults to an environment variable with the STEVEDORE_ prefix, except the Docker
// flags which read the variables understood by the Docker CLI.
package flags
