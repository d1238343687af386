package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidName     = errors.New("invalid file name")
	ErrUnknownProvider = errors.New("unknown synthesis provider")
)

// ValidationError reports a submission that is missing a field required by
// its mode. It is returned before any job is created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// EncodeError is returned when the encoder exits non-zero. Stderr holds the
// tail of the diagnostic stream only.
type EncodeError struct {
	Step   string
	Stderr string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("ffmpeg [%s] failed:\n%s", e.Step, e.Stderr)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// SynthesisError wraps a voice generation failure.
type SynthesisError struct {
	Provider string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis (%s): %v", e.Provider, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
