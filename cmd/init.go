package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/stevedore/internal/config"
	"github.com/nicholas-fedor/stevedore/internal/flags"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the project configuration file",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}

	cmd.Flags().String("image", "", "Image name built from the project (defaults to the directory name)")
	cmd.Flags().String("registry", "", "Registry the image is pushed to, for example registry.example.com:5000")

	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	projectDir, err := flags.ProjectDir(cmd.Flags())
	if err != nil {
		return err
	}

	image, _ := cmd.Flags().GetString("image")
	if image == "" {
		image = defaultImageName(projectDir)
	}

	registry, _ := cmd.Flags().GetString("registry")
	configFile, _ := cmd.Flags().GetString("config")
	path := config.Path(projectDir, configFile)

	cfg := config.Config{
		Image:      image,
		Registry:   registry,
		Dockerfile: config.DefaultDockerfile,
		Context:    config.DefaultContext,
	}

	if err := config.Init(afero.NewOsFs(), path, cfg); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"file":     path,
		"image":    image,
		"registry": registry,
	}).Debug("Initialized project")

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

	return err
}

// defaultImageName derives a repository name from the project directory name.
func defaultImageName(projectDir string) string {
	name := strings.ToLower(filepath.Base(projectDir))

	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
}
