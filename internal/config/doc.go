// Package config loads and writes the per-project stevedore configuration file.
//
// The file lives at the project root (".stevedore.yaml" unless overridden) and names the image
// built from the project, the registry it is pushed to, and defaults for the build and run
// commands. Keys can be overridden from the environment with the STEVEDORE_ prefix, for example
// STEVEDORE_REGISTRY.
package config
