package selector

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrNotFound           = errors.New("selector not registered")
	ErrInvalidKey         = errors.New("invalid selector key")
	ErrMalformedArguments = errors.New("malformed selector arguments")
	ErrEmptyResolution    = errors.New("selector did not match any target")
	ErrCandidateLimit     = errors.New("too many expanded commands")
)

// NotFoundError is returned when unregistering a key that is not present.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("selector %q was not registered", e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidKeyError is returned when a provider cannot be registered.
type InvalidKeyError struct {
	Key    string
	Reason string
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid selector key %q: %s", e.Key, e.Reason)
}

func (e *InvalidKeyError) Is(target error) bool { return target == ErrInvalidKey }

// MalformedArgumentsError reports an argument segment without "=" or with
// an empty name.
type MalformedArgumentsError struct {
	Token   string // token text, filled in by the engine
	Segment string
}

func (e *MalformedArgumentsError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("malformed argument %q in %s: expected name=value", e.Segment, e.Token)
	}
	return fmt.Sprintf("malformed argument %q: expected name=value", e.Segment)
}

func (e *MalformedArgumentsError) Is(target error) bool { return target == ErrMalformedArguments }

// EmptyResolutionError is returned when a provider resolved no target for
// some candidate.
type EmptyResolutionError struct {
	Token    string
	Provider string
}

func (e *EmptyResolutionError) Error() string {
	return fmt.Sprintf("selector %s (%s) did not match any player/entity", e.Token, e.Provider)
}

func (e *EmptyResolutionError) Is(target error) bool { return target == ErrEmptyResolution }

// ProviderError wraps a failure returned by Provider.Apply.
type ProviderError struct {
	Token    string
	Provider string
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("selector %s (%s) failed: %v", e.Token, e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

// CandidateLimitError is returned when an expansion grows past the
// configured maximum number of commands.
type CandidateLimitError struct {
	Token string
	Limit int
	Count int
}

func (e *CandidateLimitError) Error() string {
	return fmt.Sprintf("selector %s expands to %d commands (limit %d)", e.Token, e.Count, e.Limit)
}

func (e *CandidateLimitError) Is(target error) bool { return target == ErrCandidateLimit }
