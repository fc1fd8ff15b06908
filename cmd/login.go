package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicholas-fedor/stevedore/pkg/imageref"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

var (
	errNoLoginRegistry = errors.New("no registry configured, set one with `stevedore init --registry`")
	errMissingUsername = errors.New("a username is required (--username or REPO_USER)")
	errMissingPassword = errors.New("a password is required (--password-stdin or REPO_PASS)")
)

func newLoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the project registry",
		Long: "Authenticates against the project registry through the engine and stores the " +
			"credentials in the Docker CLI configuration.",
		Args: cobra.NoArgs,
		RunE: runLogin,
	}

	cmd.Flags().StringP("username", "u", "", "Registry username (defaults to REPO_USER)")
	cmd.Flags().Bool("password-stdin", false, "Read the password from stdin (defaults to REPO_PASS)")

	return cmd
}

func runLogin(cmd *cobra.Command, _ []string) error {
	env, err := loadEnvironment(cmd, true)
	if err != nil {
		return err
	}

	registryRepo := env.project.RegistryRepository()
	if registryRepo == "" {
		return errNoLoginRegistry
	}

	server, err := imageref.RegistryHost(registryRepo)
	if err != nil {
		return err
	}

	creds, err := readCredentials(cmd, server)
	if err != nil {
		return err
	}

	client, err := env.connect(cmd.Context())
	if err != nil {
		return env.finish("login", nil, err)
	}

	if err := client.Login(cmd.Context(), creds); err != nil {
		return env.finish("login", nil, err)
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Login succeeded for %s\n", server); err != nil {
		return err
	}

	return env.finish("login", nil, nil)
}

// readCredentials collects the username and password from flags, stdin or the environment.
func readCredentials(cmd *cobra.Command, server string) (types.RegistryCredentials, error) {
	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		username = os.Getenv("REPO_USER")
	}

	if username == "" {
		return types.RegistryCredentials{}, errMissingUsername
	}

	password := os.Getenv("REPO_PASS")

	if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return types.RegistryCredentials{}, fmt.Errorf("failed to read password: %w", err)
		}

		password = strings.TrimRight(string(content), "\r\n")
	}

	if password == "" {
		return types.RegistryCredentials{}, errMissingPassword
	}

	return types.RegistryCredentials{
		ServerAddress: server,
		Username:      username,
		Password:      password,
	}, nil
}
