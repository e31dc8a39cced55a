package estimator

import (
	"errors"
	"fmt"
)

var (
	// ErrModelNotFound indicates the registry has no model with the given ID.
	ErrModelNotFound = errors.New("model not found in registry")

	// ErrNetwork indicates the registry could not be reached or answered
	// with a non-OK status. Retrying may succeed.
	ErrNetwork = errors.New("registry unreachable")

	// ErrInvalidArchitecture indicates non-positive or non-dividing
	// architecture dimensions.
	ErrInvalidArchitecture = errors.New("invalid model architecture")

	// ErrInvalidQuantization indicates a non-positive bpw or an unsupported
	// cache bit width.
	ErrInvalidQuantization = errors.New("invalid quantisation parameters")

	// ErrInvalidContextLength indicates a non-positive context length.
	ErrInvalidContextLength = errors.New("invalid context length")
)

// MalformedConfigError is returned when the registry's config JSON is
// undecodable or is missing a required architecture field under every known
// spelling.
type MalformedConfigError struct {
	ModelID string
	Field   string
	Err     error
}

func (e *MalformedConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed config for %s: no usable value for %s", e.ModelID, e.Field)
	}
	return fmt.Sprintf("malformed config for %s: %v", e.ModelID, e.Err)
}

func (e *MalformedConfigError) Unwrap() error {
	return e.Err
}

// UnknownQuantLevelError is returned for a GGUF level name outside the
// supported set.
type UnknownQuantLevelError struct {
	Level      string
	Suggestion string
}

func (e *UnknownQuantLevelError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown quantisation level: %s. Did you mean %s?", e.Level, e.Suggestion)
	}
	return fmt.Sprintf("unknown quantisation level: %s", e.Level)
}
