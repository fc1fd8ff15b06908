package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/nicholas-fedor/stevedore/pkg/imageref"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// FileName is the default configuration file name at the project root.
const FileName = ".stevedore.yaml"

// EnvPrefix is the prefix of environment variables overriding configuration keys.
const EnvPrefix = "STEVEDORE"

// Defaults applied when the file leaves a key unset.
const (
	DefaultDockerfile = "Dockerfile"
	DefaultContext    = "."
)

// Configuration keys.
const (
	keyImage      = "image"
	keyRegistry   = "registry"
	keyDockerfile = "dockerfile"
	keyContext    = "context"
	keyPlatform   = "platform"
	keyBuildArgs  = "build_args"
	keyPorts      = "ports"
	keyEnv        = "env"
)

// Config is the content of a project configuration file.
type Config struct {
	// Image is the local repository name built from the project.
	Image string `mapstructure:"image"`
	// Registry is the registry address images are pushed to; empty disables pushing.
	Registry string `mapstructure:"registry"`
	// Dockerfile is the Dockerfile path, relative to the build context.
	Dockerfile string `mapstructure:"dockerfile"`
	// Context is the build context directory, relative to the project.
	Context string `mapstructure:"context"`
	// Platform is the default build and run platform, for example "linux/amd64".
	Platform string `mapstructure:"platform"`
	// BuildArgs holds default build arguments in KEY=value form.
	BuildArgs []string `mapstructure:"build_args"`
	// Ports holds default port publications for the run command.
	Ports []string `mapstructure:"ports"`
	// Env holds default environment variables for the run command, in KEY=value form.
	Env []string `mapstructure:"env"`
}

// Path resolves the configuration file location for a project.
//
// An absolute file is used as is; a relative one is resolved against the project directory.
func Path(projectDir, file string) string {
	if file == "" {
		file = FileName
	}

	if filepath.IsAbs(file) {
		return file
	}

	return filepath.Join(projectDir, file)
}

// Load reads the configuration file at path.
//
// Parameters:
//   - fs: Filesystem holding the file.
//   - path: Location of the configuration file.
//
// Returns:
//   - Config: Decoded configuration with defaults and environment overrides applied.
//   - error: ErrNotInitialized if the file does not exist, or a read, decode or validation error.
func Load(fs afero.Fs, path string) (Config, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", errReadConfig, err)
	}

	if !exists {
		return Config{}, fmt.Errorf("%w: %s", ErrNotInitialized, path)
	}

	v := newViper(fs, path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errReadConfig, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errDecodeConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logrus.WithFields(logrus.Fields{
		"file":     v.ConfigFileUsed(),
		"image":    cfg.Image,
		"registry": cfg.Registry,
	}).Debug("Loaded project configuration")

	return cfg, nil
}

// Save writes cfg to path, replacing any existing file.
//
// Parameters:
//   - fs: Filesystem to write to.
//   - path: Location of the configuration file.
//   - cfg: Configuration to persist.
//
// Returns:
//   - error: Non-nil if cfg is invalid or the file cannot be written.
func Save(fs afero.Fs, path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := fs.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("%w: %w", errWriteConfig, err)
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigType("yaml")

	v.Set(keyImage, cfg.Image)
	v.Set(keyRegistry, cfg.Registry)
	v.Set(keyDockerfile, valueOr(cfg.Dockerfile, DefaultDockerfile))
	v.Set(keyContext, valueOr(cfg.Context, DefaultContext))

	if cfg.Platform != "" {
		v.Set(keyPlatform, cfg.Platform)
	}

	if len(cfg.BuildArgs) > 0 {
		v.Set(keyBuildArgs, cfg.BuildArgs)
	}

	if len(cfg.Ports) > 0 {
		v.Set(keyPorts, cfg.Ports)
	}

	if len(cfg.Env) > 0 {
		v.Set(keyEnv, cfg.Env)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("%w: %w", errWriteConfig, err)
	}

	return nil
}

// Init writes a fresh configuration file, refusing to overwrite an existing one.
func Init(fs afero.Fs, path string, cfg Config) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("%w: %w", errReadConfig, err)
	}

	if exists {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, path)
	}

	return Save(fs, path, cfg)
}

// Validate checks the image name, the registry and the KEY=value lists.
func (c Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("%w: %s is required", errInvalidConfig, keyImage)
	}

	if err := imageref.ValidateImageName(c.Image); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}

	if repo := imageref.RegistryRepository(c.Registry, c.Image); repo != "" {
		if _, err := imageref.Join(repo, imageref.LatestTag); err != nil {
			return fmt.Errorf("%w: %s: %w", errInvalidConfig, keyRegistry, err)
		}
	}

	if _, err := ParseKeyValues(c.BuildArgs); err != nil {
		return fmt.Errorf("%w: %s: %w", errInvalidConfig, keyBuildArgs, err)
	}

	if _, err := ParseKeyValues(c.Env); err != nil {
		return fmt.Errorf("%w: %s: %w", errInvalidConfig, keyEnv, err)
	}

	return nil
}

// Project returns the project described by the configuration, rooted at dir.
func (c Config) Project(dir string) types.Project {
	return types.Project{
		Path:      dir,
		ImageName: c.Image,
		Registry:  c.Registry,
	}
}

// ContextDir resolves the build context against the project directory.
func (c Config) ContextDir(projectDir string) string {
	dir := valueOr(c.Context, DefaultContext)
	if filepath.IsAbs(dir) {
		return dir
	}

	return filepath.Join(projectDir, dir)
}

var errMalformedPair = errors.New("expected KEY=value")

// ParseKeyValues turns KEY=value items into a map. Later items win over earlier ones.
func ParseKeyValues(items []string) (map[string]string, error) {
	result := make(map[string]string, len(items))

	for _, item := range items {
		key, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q", errMalformedPair, item)
		}

		result[strings.TrimSpace(key)] = value
	}

	return result, nil
}

// newViper prepares a dedicated viper instance for one configuration file.
func newViper(fs afero.Fs, path string) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyImage, "")
	v.SetDefault(keyRegistry, "")
	v.SetDefault(keyDockerfile, DefaultDockerfile)
	v.SetDefault(keyContext, DefaultContext)
	v.SetDefault(keyPlatform, "")

	return v
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
