package flags

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nicholas-fedor/stevedore/pkg/store"
)

// DefaultDockerHost is the daemon socket used when DOCKER_HOST is unset.
const DefaultDockerHost = "unix:///var/run/docker.sock"

var (
	errInvalidLogFormat = errors.New("unknown log format")
	errInvalidLogLevel  = errors.New("unknown log level")
	errSetEnvFailed     = errors.New("failed to export Docker setting")
	errReadSecret       = errors.New("failed to read secret file")
	errReplaceSecret    = errors.New("failed to replace secret values")
	errSetFlagFailed    = errors.New("failed to access flag")
	errResolveProject   = errors.New("failed to resolve project directory")
)

// secretFs is the filesystem secret files are read from.
var secretFs = afero.NewOsFs()

// secretFlags hold values that may name a file containing the real value.
var secretFlags = []string{"notification-url"}

// dockerEnv maps each Docker connection flag to the variable the Docker client reads.
var dockerEnv = []struct {
	flag string
	env  string
}{
	{flag: "host", env: "DOCKER_HOST"},
	{flag: "tlsverify", env: "DOCKER_TLS_VERIFY"},
	{flag: "api-version", env: "DOCKER_API_VERSION"},
}

// logFormatters builds the logrus formatter for each --log-format value.
var logFormatters = map[string]func(noColor bool) logrus.Formatter{
	"auto": func(noColor bool) logrus.Formatter {
		return &logrus.TextFormatter{DisableColors: noColor, EnvironmentOverrideColors: true}
	},
	"json": func(bool) logrus.Formatter {
		return &logrus.JSONFormatter{}
	},
	"logfmt": func(bool) logrus.Formatter {
		return &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	},
	"pretty": func(noColor bool) logrus.Formatter {
		return &logrus.TextFormatter{ForceColors: !noColor}
	},
}

// RegisterDockerFlags adds the engine connection flags to the root command.
//
// Their defaults come from the variables the Docker client itself reads, so an exported
// DOCKER_HOST keeps working.
func RegisterDockerFlags(rootCmd *cobra.Command) {
	persistent := rootCmd.PersistentFlags()

	persistent.StringP("host", "H", envString("DOCKER_HOST"), "Docker daemon socket to connect to")
	persistent.Bool("tlsverify", envBool("DOCKER_TLS_VERIFY"), "Use TLS and verify the daemon certificate")
	persistent.String("api-version", envString("DOCKER_API_VERSION"), "Docker API version to request")
}

// RegisterSystemFlags adds the flags shared by every stevedore command to the root command.
//
// These flags locate the project and the state files, and control logging, notifications and
// metrics export.
func RegisterSystemFlags(rootCmd *cobra.Command) {
	persistent := rootCmd.PersistentFlags()

	persistent.StringP("project", "p", envString("STEVEDORE_PROJECT"),
		"Project directory (defaults to the current directory)")
	persistent.StringP("config", "c", envString("STEVEDORE_CONFIG"),
		"Project configuration file, relative to the project directory")
	persistent.String("state-dir", envString("STEVEDORE_STATE_DIR"),
		"Directory holding the tracking and preference stores")
	persistent.String("log-level", envString("STEVEDORE_LOG_LEVEL"),
		"Most verbose level written to stderr: panic, fatal, error, warn, info, debug or trace")
	persistent.StringP("log-format", "l", envString("STEVEDORE_LOG_FORMAT"),
		"Console log format: auto, logfmt, pretty or json")
	persistent.BoolP("debug", "d", envBool("STEVEDORE_DEBUG"),
		"Shortcut for --log-level debug")
	persistent.Bool("trace", envBool("STEVEDORE_TRACE"),
		"Shortcut for --log-level trace; registry credentials may appear in the output")
	persistent.Bool("no-color", envBool("NO_COLOR"),
		"Write logs without ANSI colors")
	persistent.StringArray("notification-url", envStringSlice("STEVEDORE_NOTIFICATION_URL"),
		"Shoutrrr URL to send command summaries to; may be a file holding one URL per line")
	persistent.String("notification-template", envString("STEVEDORE_NOTIFICATION_TEMPLATE"),
		"Built-in template name (default, porcelain.v1, json.v1) or template body for notifications")
	persistent.String("metrics-file", envString("STEVEDORE_METRICS_FILE"),
		"Write command metrics to this file in the Prometheus text format")
}

func envString(key string) string {
	viper.MustBindEnv(key)

	return viper.GetString(key)
}

func envStringSlice(key string) []string {
	viper.MustBindEnv(key)

	return viper.GetStringSlice(key)
}

func envBool(key string) bool {
	viper.MustBindEnv(key)

	return viper.GetBool(key)
}

// SetDefaults registers the fallback values of the environment-backed flags.
func SetDefaults() {
	viper.AutomaticEnv()

	for key, value := range map[string]any{
		"DOCKER_HOST":                     DefaultDockerHost,
		"STEVEDORE_NOTIFICATION_URL":      []string{},
		"STEVEDORE_NOTIFICATION_TEMPLATE": "",
		"STEVEDORE_LOG_LEVEL":             "info",
		"STEVEDORE_LOG_FORMAT":            "auto",
	} {
		viper.SetDefault(key, value)
	}
}

// EnvConfig exports the Docker connection flags to the environment read by the Docker client.
//
// Empty flags and a false --tlsverify leave the environment untouched.
//
// Parameters:
//   - cmd: Command holding the Docker flags.
//
// Returns:
//   - error: Non-nil if a flag cannot be read or the environment cannot be updated.
func EnvConfig(cmd *cobra.Command) error {
	persistent := cmd.PersistentFlags()

	for _, setting := range dockerEnv {
		flag := persistent.Lookup(setting.flag)
		if flag == nil {
			return fmt.Errorf("%w: %s is not registered", errSetFlagFailed, setting.flag)
		}

		value := flag.Value.String()

		switch {
		case flag.Value.Type() == "bool" && value != "true":
			continue
		case flag.Value.Type() == "bool":
			value = "1"
		case value == "":
			continue
		}

		if value == os.Getenv(setting.env) {
			continue
		}

		if err := os.Setenv(setting.env, value); err != nil {
			return fmt.Errorf("%w: %s: %w", errSetEnvFailed, setting.env, err)
		}
	}

	return nil
}

// ProjectDir resolves the absolute project directory from the --project flag.
// An empty flag selects the current working directory.
func ProjectDir(flags *pflag.FlagSet) (string, error) {
	dir, err := flags.GetString("project")
	if err != nil {
		return "", fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	if dir == "" {
		dir = "."
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errResolveProject, err)
	}

	return abs, nil
}

// StateDir returns the directory holding the persisted stores.
func StateDir(flags *pflag.FlagSet) string {
	if dir, err := flags.GetString("state-dir"); err == nil && dir != "" {
		return dir
	}

	return store.DefaultStateDir()
}

// GetSecretsFromFiles swaps secret flag values naming a file for the file's content.
//
// This keeps notification tokens out of the process list and shell history.
func GetSecretsFromFiles(rootCmd *cobra.Command) error {
	persistent := rootCmd.PersistentFlags()

	for _, name := range secretFlags {
		if err := getSecretFromFile(persistent, name); err != nil {
			return fmt.Errorf("secret flag --%s: %w", name, err)
		}
	}

	return nil
}

// getSecretFromFile resolves one secret flag.
//
// A scalar flag takes the trimmed file content. A slice flag expands every file entry into
// the file's non-empty lines and keeps the other entries as given.
func getSecretFromFile(flags *pflag.FlagSet, name string) error {
	flag := flags.Lookup(name)
	if flag == nil {
		return fmt.Errorf("%w: %s is not registered", errSetFlagFailed, name)
	}

	slice, isSlice := flag.Value.(pflag.SliceValue)
	if !isSlice {
		value := flag.Value.String()
		if !isFilePath(value) {
			return nil
		}

		content, err := afero.ReadFile(secretFs, value)
		if err != nil {
			return fmt.Errorf("%w: %w", errReadSecret, err)
		}

		if err := flags.Set(name, strings.TrimSpace(string(content))); err != nil {
			return fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}

		return nil
	}

	resolved := []string{}

	for _, value := range slice.GetSlice() {
		if !isFilePath(value) {
			resolved = append(resolved, value)

			continue
		}

		content, err := afero.ReadFile(secretFs, value)
		if err != nil {
			return fmt.Errorf("%w: %w", errReadSecret, err)
		}

		for line := range strings.Lines(string(content)) {
			if line = strings.TrimSpace(line); line != "" {
				resolved = append(resolved, line)
			}
		}
	}

	if err := slice.Replace(resolved); err != nil {
		return fmt.Errorf("%w: %w", errReplaceSecret, err)
	}

	return nil
}

// isFilePath reports whether value names an existing file.
//
// Values with a colon after the second character are URLs, never paths; a colon in second
// position is a Windows drive letter.
func isFilePath(value string) bool {
	if value == "" {
		return false
	}

	if colon := strings.IndexByte(value, ':'); colon > 1 {
		return false
	}

	exists, err := afero.Exists(secretFs, value)

	return err == nil && exists
}

// ProcessFlagAliases maps the --debug and --trace shortcuts onto --log-level.
// Trace wins when both are set.
func ProcessFlagAliases(flags *pflag.FlagSet) error {
	for _, alias := range []string{"debug", "trace"} {
		enabled, err := flags.GetBool(alias)
		if err != nil {
			return fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}

		if !enabled {
			continue
		}

		if err := flags.Set("log-level", alias); err != nil {
			return fmt.Errorf("%w: %w", errSetFlagFailed, err)
		}
	}

	return nil
}

// SetupLogging applies --log-format, --no-color and --log-level to the global logrus logger.
//
// Parameters:
//   - flags: Flag set holding the logging flags.
//
// Returns:
//   - error: Non-nil for an unknown format or level, or a missing flag.
func SetupLogging(flags *pflag.FlagSet) error {
	format, err := flags.GetString("log-format")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	level, err := flags.GetString("log-level")
	if err != nil {
		return fmt.Errorf("%w: %w", errSetFlagFailed, err)
	}

	newFormatter, known := logFormatters[strings.ToLower(format)]
	if !known {
		return fmt.Errorf("%w: %q", errInvalidLogFormat, format)
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidLogLevel, err)
	}

	logrus.SetFormatter(newFormatter(noColor))
	logrus.SetLevel(parsed)

	return nil
}
