package handler

import (
	"net/http"

	"promptlab/internal/httputil"
	"promptlab/internal/service/ratelimit"
)

// RateLimitHandler reports the caller's remaining budget
type RateLimitHandler struct {
	limiter *ratelimit.Limiter
}

// NewRateLimitHandler creates a new rate limit handler
func NewRateLimitHandler(limiter *ratelimit.Limiter) *RateLimitHandler {
	return &RateLimitHandler{limiter: limiter}
}

type rateLimitStatus struct {
	Enabled    bool `json:"enabled"`
	PerMinute  int  `json:"limit_per_minute"`
	PerHour    int  `json:"limit_per_hour"`
	Remaining  *int `json:"remaining,omitempty"`
	RetryAfter int  `json:"retry_after"`
}

// GetStatus reports limits, remaining calls and seconds until the next slot
// GET /api/rate-limit
func (h *RateLimitHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	perMinute, perHour := h.limiter.Limits()
	status := rateLimitStatus{
		Enabled:   h.limiter.Enabled(),
		PerMinute: perMinute,
		PerHour:   perHour,
	}

	if status.Enabled {
		userID := httputil.GetUserID(r)
		remaining := h.limiter.Remaining(userID)
		status.Remaining = &remaining
		status.RetryAfter = retryAfterSeconds(h.limiter.RetryAfter(userID))
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}
