package services

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ProviderErrorKind distinguishes why a provider call failed. All kinds are
// handled the same way by the orchestrator; the kind is kept for logs and metrics.
type ProviderErrorKind string

const (
	ProviderErrNetwork   ProviderErrorKind = "network"
	ProviderErrTimeout   ProviderErrorKind = "timeout"
	ProviderErrStatus    ProviderErrorKind = "status"
	ProviderErrEmpty     ProviderErrorKind = "empty"
	ProviderErrDecode    ProviderErrorKind = "decode"
	ProviderErrRateLimit ProviderErrorKind = "rate_limit"
	ProviderErrDisabled  ProviderErrorKind = "disabled"
)

// ProviderError is returned by every Provider on failure.
type ProviderError struct {
	Provider   string
	Kind       ProviderErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// CacheError wraps a persistent cache failure.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("translation cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// ErrAllProvidersFailed is joined with the individual provider errors when the chain is exhausted.
var ErrAllProvidersFailed = errors.New("all translation providers failed")

// IsValidationError reports whether err carries a *ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
