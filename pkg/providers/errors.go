package providers

import (
	"errors"
	"fmt"
)

// UnsupportedProviderError is returned by the factory when asked for a
// provider kind no variant is registered under.
type UnsupportedProviderError struct {
	// Kind is the unrecognized provider kind as given by the caller
	Kind string
}

// Error implements the error interface.
func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider kind %q", e.Kind)
}

// ConfigurationError represents an invalid or incomplete provider
// configuration. It is raised at construction time, before any network
// traffic, and is never retried; the orchestrator responds by attempting the
// safe-default provider instead.
type ConfigurationError struct {
	// Kind is the provider kind whose configuration is invalid
	Kind string

	// Field is the configuration field that is invalid
	Field string

	// Message describes the configuration error
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider %q configuration error for field %q: %s",
		e.Kind, e.Field, e.Message)
}

// NetworkError represents a failed upstream call: a transport failure, a
// timeout, or a non-2xx response. Network errors are transient from the
// pipeline's perspective and are retried with backoff.
//
// Body always holds a secret-redacted, length-capped excerpt of the upstream
// response, so NetworkError values are safe to log and persist verbatim.
type NetworkError struct {
	// Kind is the provider kind where the failure occurred
	Kind string

	// StatusCode is the HTTP status code (0 for transport-level failures)
	StatusCode int

	// Body is a redacted excerpt of the upstream response body
	Body string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %q request failed (status %d): %s", e.Kind, e.StatusCode, e.Body)
	}
	if e.Cause != nil {
		return fmt.Sprintf("provider %q request failed: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("provider %q request failed", e.Kind)
}

// Unwrap returns the underlying error for error chain support.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// ResponseFormatError represents an upstream response that was received but
// could not be interpreted: malformed JSON, or a payload missing the text
// fields the variant extracts its reply from. Format errors are treated as
// hard failures and never retried.
type ResponseFormatError struct {
	// Kind is the provider kind that returned the malformed response
	Kind string

	// Message describes what was missing or malformed
	Message string

	// Cause is the underlying parse error (if any)
	Cause error
}

// Error implements the error interface.
func (e *ResponseFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %q response format error: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %q response format error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *ResponseFormatError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether another attempt against the provider could
// reasonably succeed. Only network-level failures qualify; configuration and
// response-format errors are deterministic and retrying them would repeat
// the same failure.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
