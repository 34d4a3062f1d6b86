package httputil

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// clientIDCookie identifies a browser session across requests. The value
// is an opaque token, not an authenticated user identity.
const (
	clientIDCookie = "uuid"
	clientIDMaxAge = 7 * 24 * time.Hour
)

// CookieConfig holds cookie configuration.
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool // Set to true in production (HTTPS)
	SameSite http.SameSite
}

// DefaultCookieConfig returns default cookie configuration.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Path:     "/",
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
	}
}

// ClientID returns the client id from the request cookie, generating a
// fresh one when the cookie is absent or empty.
func ClientID(r *http.Request) string {
	if cookie, err := r.Cookie(clientIDCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return uuid.NewString()
}

// SetClientIDCookie round-trips the client id back to the browser with a
// long-lived HttpOnly cookie.
func SetClientIDCookie(w http.ResponseWriter, clientID string, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     clientIDCookie,
		Value:    clientID,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   int(clientIDMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: cfg.SameSite,
	})
}
