// Package providers holds what every provider adapter shares: the retry
// policy, cost and token estimation, and failure shaping.
package providers

import (
	"context"
	"errors"
	"time"

	domainllm "promptlab/internal/domain/services/llm"
)

// Failure builds the unsuccessful response returned for an unrecoverable
// upstream error. The message carries no request payload or credentials.
func Failure(model string, start time.Time, err error) *domainllm.GenerateResponse {
	return &domainllm.GenerateResponse{
		Success:   false,
		Error:     FailureMessage(err),
		Model:     model,
		LatencyMs: time.Since(start).Milliseconds(),
	}
}

// FailureMessage renders err for callers
func FailureMessage(err error) string {
	var status *StatusError
	switch {
	case errors.As(err, &status):
		return status.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "upstream request timed out"
	case errors.Is(err, ErrMalformedResponse):
		return ErrMalformedResponse.Error()
	default:
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.Error()
		}
		return "upstream request failed"
	}
}

// ErrMalformedResponse is returned when a 2xx reply cannot be mapped back
var ErrMalformedResponse = errors.New("malformed provider response")
