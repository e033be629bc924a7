package middleware

import (
	"net"
	"net/http"
	"strings"

	"promptlab/internal/httputil"
)

// UserIDHeader names the caller identity header set by the fronting proxy
const UserIDHeader = "X-User-ID"

// CallerIdentity stores the caller identity in the request context: the
// X-User-ID header, or the client IP when the header is absent. There is
// no authentication; the identity only keys rate limits and ownership.
func CallerIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
			if userID == "" {
				userID = clientIP(r)
			}
			next.ServeHTTP(w, httputil.WithUserID(r, userID))
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
