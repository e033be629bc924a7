package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrProviderExecution = errors.New("provider execution failed")
	ErrConfiguration     = errors.New("configuration error")
)

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid caller input (client fault)
	ValidationError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// RateLimitError is returned when a caller exhausted its request budget.
type RateLimitError struct {
	Key        string
	Remaining  int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) StatusCode() int      { return http.StatusTooManyRequests }
func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// ProviderError is a provider-side failure: retries exhausted, malformed reply,
// or a non-retryable upstream rejection. Message is safe to show to callers.
type ProviderError struct {
	Provider string
	Model    string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (%s): %s", e.Provider, e.Model, e.Message)
}

func (e *ProviderError) StatusCode() int      { return http.StatusBadGateway }
func (e *ProviderError) Is(target error) bool { return target == ErrProviderExecution }

// ConfigurationError indicates the server cannot serve a request because of
// its own setup (e.g. no provider adapter registered for a model).
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string        { return e.Message }
func (e *ConfigurationError) StatusCode() int      { return http.StatusInternalServerError }
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
