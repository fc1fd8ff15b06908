package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	dockerCliConfig "github.com/docker/cli/cli/config"
	dockerConfigTypes "github.com/docker/cli/cli/config/types"
	dockerRegistry "github.com/docker/docker/api/types/registry"

	"github.com/nicholas-fedor/stevedore/pkg/imageref"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// RegistryAuth returns the encoded X-Registry-Auth value for pushing ref.
//
// REPO_USER and REPO_PASS take precedence; otherwise the credentials stored for the registry
// of ref in the Docker config (or its credential helper) are used. An empty string with a
// nil error means the push is anonymous.
//
// Parameters:
//   - ref: Image reference being pushed.
//
// Returns:
//   - string: Base64 encoded credentials, or empty.
//   - error: Non-nil if ref has no parsable registry or the credentials cannot be encoded.
func RegistryAuth(ref string) (string, error) {
	server, err := imageref.RegistryHost(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errRegistryHost, err)
	}

	clog := logrus.WithFields(logrus.Fields{"image": ref, "server": server})

	creds, source := environmentCredentials(server)
	if creds == nil {
		creds, source = storedCredentials(server)
	}

	if creds == nil {
		clog.Debug("No registry credentials found")

		return "", nil
	}

	encoded, err := dockerRegistry.EncodeAuthConfig(*creds)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errEncodeCredentials, err)
	}

	clog.WithFields(logrus.Fields{
		"username": creds.Username,
		"source":   source,
	}).Debug("Using registry credentials")

	return encoded, nil
}

// environmentCredentials reads REPO_USER and REPO_PASS, which must both be set.
func environmentCredentials(server string) (*dockerRegistry.AuthConfig, string) {
	username, password := os.Getenv("REPO_USER"), os.Getenv("REPO_PASS")
	if username == "" || password == "" {
		return nil, ""
	}

	return &dockerRegistry.AuthConfig{
		Username:      username,
		Password:      password,
		ServerAddress: server,
	}, "environment"
}

// storedCredentials looks server up in the Docker CLI configuration.
func storedCredentials(server string) (*dockerRegistry.AuthConfig, string) {
	configFile := dockerCliConfig.LoadDefaultConfigFile(io.Discard)

	stored, err := configFile.GetCredentialsStore(server).Get(server)
	if err != nil {
		logrus.WithError(err).WithField("server", server).Debug("Credential store lookup failed")

		return nil, ""
	}

	if stored.Username == "" && stored.Password == "" && stored.IdentityToken == "" {
		return nil, ""
	}

	return &dockerRegistry.AuthConfig{
		Username:      stored.Username,
		Password:      stored.Password,
		ServerAddress: server,
		IdentityToken: stored.IdentityToken,
	}, configFile.Filename
}

// Login authenticates against a registry through the engine and saves the credentials to the
// Docker config so later pushes can use them.
func (c *client) Login(ctx context.Context, creds types.RegistryCredentials) error {
	resp, err := c.api.RegistryLogin(ctx, dockerRegistry.AuthConfig{
		Username:      creds.Username,
		Password:      creds.Password,
		ServerAddress: creds.ServerAddress,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errLoginFailed, creds.ServerAddress, err)
	}

	logrus.WithFields(logrus.Fields{
		"server": creds.ServerAddress,
		"status": resp.Status,
	}).Debug("Registry accepted login")

	stored := dockerConfigTypes.AuthConfig{
		Username:      creds.Username,
		Password:      creds.Password,
		ServerAddress: creds.ServerAddress,
	}
	if resp.IdentityToken != "" {
		stored.Password = ""
		stored.IdentityToken = resp.IdentityToken
	}

	configFile := dockerCliConfig.LoadDefaultConfigFile(io.Discard)
	if err := configFile.GetCredentialsStore(creds.ServerAddress).Store(stored); err != nil {
		return fmt.Errorf("%w: %w", errStoreCredentialsFailed, err)
	}

	return nil
}
