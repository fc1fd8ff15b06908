// Package engine provides the Docker Engine API implementation of types.Engine.
// It wraps the Docker SDK client to list, inspect, build, tag, push, run, and remove images and
// containers for a single project.
//
// Key components:
//   - NewClient: Builds a client from the DOCKER_* environment and verifies the daemon is reachable.
//   - NewClientWithAPI: Wraps an existing Docker API client, used by tests against a fake daemon.
//   - RegistryAuth: Resolves push credentials from the environment or the Docker config file.
//   - ErrEngineUnavailable: Returned when the daemon cannot be reached.
//
// Usage example:
//
//	eng, err := engine.NewClient(ctx, engine.ClientOptions{})
//	if err != nil {
//	    logrus.WithError(err).Fatal("Container engine unavailable")
//	}
//	images, _ := eng.ListImagesByRepository(ctx, "app")
//
// The package integrates with docker/docker client libraries, docker/cli credential stores,
// and uses logrus for logging.
package engine
