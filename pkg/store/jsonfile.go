package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// File names of the persisted stores inside the state directory.
const (
	TrackingFileName   = "tracking.json"
	PreferenceFileName = "preferences.json"
)

// stateDirName is the directory created below the system temp directory.
const stateDirName = "stevedore"

// File permissions used when persisting state.
const (
	stateDirMode  = 0o755
	stateFileMode = 0o644
)

var (
	// errReadState indicates the state file could not be read.
	errReadState = errors.New("failed to read state file")
	// errDecodeState indicates the state file holds malformed JSON.
	errDecodeState = errors.New("failed to decode state file")
	// errEncodeState indicates the state could not be serialized.
	errEncodeState = errors.New("failed to encode state")
	// errWriteState indicates the state file could not be written.
	errWriteState = errors.New("failed to write state file")
)

// DefaultStateDir returns the per-platform directory holding the state files.
func DefaultStateDir() string {
	return filepath.Join(os.TempDir(), stateDirName)
}

// jsonFile reads and writes a whole JSON document at a fixed path.
type jsonFile struct {
	fs   afero.Fs
	path string
}

// load decodes the document into v. An absent file leaves v untouched and is not an error.
func (f jsonFile) load(v any) error {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("%w: %s: %w", errReadState, f.path, err)
	}

	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", errDecodeState, f.path, err)
	}

	return nil
}

// save replaces the document with v, creating the parent directory when needed.
func (f jsonFile) save(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", errEncodeState, err)
	}

	if err := f.fs.MkdirAll(filepath.Dir(f.path), stateDirMode); err != nil {
		return fmt.Errorf("%w: %s: %w", errWriteState, f.path, err)
	}

	if err := afero.WriteFile(f.fs, f.path, data, stateFileMode); err != nil {
		return fmt.Errorf("%w: %s: %w", errWriteState, f.path, err)
	}

	return nil
}
