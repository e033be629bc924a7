package handler

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"promptlab/internal/domain"
	"promptlab/internal/httputil"
)

// handleError converts domain errors to RFC 7807 responses. Every problem
// carries the request id; unexpected errors are logged and hidden.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	requestID := httputil.GetRequestID(r)
	extras := map[string]any{"request_id": requestID}

	var (
		rateErr     *domain.RateLimitError
		providerErr *domain.ProviderError
		configErr   *domain.ConfigurationError
	)

	switch {
	case errors.As(err, &rateErr):
		retryAfter := retryAfterSeconds(rateErr.RetryAfter)
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		extras["retry_after"] = retryAfter
		extras["remaining"] = rateErr.Remaining
		httputil.RespondErrorWithExtras(w, http.StatusTooManyRequests, rateErr.Error(), extras)
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, err.Error(), extras)
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondErrorWithExtras(w, http.StatusNotFound, err.Error(), extras)
	case errors.As(err, &providerErr):
		logger.Warn("provider error", "error", err, "request_id", requestID)
		extras["provider"] = providerErr.Provider
		extras["model"] = providerErr.Model
		httputil.RespondErrorWithExtras(w, http.StatusBadGateway, providerErr.Message, extras)
	case errors.As(err, &configErr):
		logger.Error("configuration error", "error", err, "request_id", requestID)
		httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, configErr.Message, extras)
	default:
		logger.Error("request failed", "error", err, "request_id", requestID)
		httputil.RespondErrorWithExtras(w, http.StatusInternalServerError, "internal server error", extras)
	}
}

// retryAfterSeconds rounds up so clients never retry early
func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
