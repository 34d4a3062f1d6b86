package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/hxabcd/sms-code-sync/internal/httputil"
)

// RequireAPIKey creates middleware that gates message submission behind
// the shared API key. The key is read from the X-API-Key header, falling
// back to the api_key query parameter for agents that cannot set headers.
// Comparison is constant-time. The key itself is never logged.
func RequireAPIKey(apiKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}

			if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				if logger != nil {
					logger.Warn("rejected message submission with invalid api key",
						"ip", r.RemoteAddr,
						"path", r.URL.Path,
					)
				}
				httputil.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
