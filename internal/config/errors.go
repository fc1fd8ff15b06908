package config

import "errors"

var (
	// ErrNotInitialized indicates the project has no configuration file yet.
	ErrNotInitialized = errors.New("project is not initialized, run `stevedore init` first")
	// ErrAlreadyInitialized indicates init would overwrite an existing file.
	ErrAlreadyInitialized = errors.New("project configuration already exists")

	// errReadConfig indicates the configuration file could not be read.
	errReadConfig = errors.New("failed to read project configuration")
	// errDecodeConfig indicates the configuration file holds unexpected values.
	errDecodeConfig = errors.New("failed to decode project configuration")
	// errWriteConfig indicates the configuration file could not be written.
	errWriteConfig = errors.New("failed to write project configuration")
	// errInvalidConfig indicates the configuration failed validation.
	errInvalidConfig = errors.New("invalid project configuration")
)
