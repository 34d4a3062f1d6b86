package domain

import "errors"

// Core errors surfaced at the request boundary. Handlers map these to
// HTTP statuses; none of them should escape a single request.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidToken    = errors.New("invalid token")
	ErrNoCodeFound     = errors.New("no code found in the message")
	ErrNotVerified     = errors.New("session not verified")
	ErrInvalidAPIKey   = errors.New("invalid api key")
)
