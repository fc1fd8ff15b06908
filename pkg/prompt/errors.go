package prompt

import "errors"

var (
	// ErrCanceled is returned when the user leaves a prompt without answering.
	ErrCanceled = errors.New("canceled by user")
	// errPromptFailed indicates the terminal program could not run.
	errPromptFailed = errors.New("prompt failed")
	// errUnexpectedModel indicates the program returned a model of another type.
	errUnexpectedModel = errors.New("unexpected prompt model")
)
