package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hxabcd/sms-code-sync/internal/config"
	"github.com/hxabcd/sms-code-sync/internal/events"
	"github.com/hxabcd/sms-code-sync/internal/http/features/profiles"
	"github.com/hxabcd/sms-code-sync/internal/http/features/stream"
	"github.com/hxabcd/sms-code-sync/internal/http/middleware"
	"github.com/hxabcd/sms-code-sync/internal/httputil"
	"github.com/hxabcd/sms-code-sync/internal/message"
	"github.com/hxabcd/sms-code-sync/internal/profile"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger             *slog.Logger
	Registry           *profile.Registry
	MessageService     *message.Service
	Broadcaster        *events.Broadcaster
	APIKey             string
	AllowedOrigins     []string
	MaxRequestBodySize int64
	HeartbeatInterval  time.Duration
	RateLimitConfig    config.RateLimitConfig
	SecurityHeaders    config.SecurityHeadersConfig
	ServeUI            bool
	UIDir              string
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.CORS(cfg.AllowedOrigins, cfg.Logger))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]any{
			"status":          "healthy",
			"profiles_loaded": cfg.Registry.Len(),
		})
	})

	// Create rate limiters for different endpoint types
	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	profilesHandler := profiles.NewHandler(cfg.Logger, cfg.Registry, cfg.MessageService)
	streamHandler := stream.NewHandler(cfg.Logger, cfg.Broadcaster, cfg.HeartbeatInterval)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimiters["api"])
			r.Get("/profiles", profilesHandler.List)
			r.Get("/profiles/{name}/session", profilesHandler.CheckSession)
			r.Delete("/profiles/{name}/session", profilesHandler.Logout)
			r.Get("/profiles/{name}/codes", profilesHandler.GetCodes)
			r.Delete("/profiles/{name}/codes", profilesHandler.ClearCodes)
		})

		r.Group(func(r chi.Router) {
			r.Use(rateLimiters["verify"])
			r.Post("/profiles/{name}/session", profilesHandler.VerifySession)
		})

		r.Group(func(r chi.Router) {
			r.Use(rateLimiters["submit"])
			r.Use(middleware.RequireAPIKey(cfg.APIKey, cfg.Logger))
			r.Post("/profiles/{name}/messages", profilesHandler.SubmitMessage)
		})

		// Long-lived; deliberately outside the rate limiter groups.
		r.Get("/stream", streamHandler.Stream)
	})

	// Static frontend (if UI is enabled)
	if cfg.ServeUI {
		r.Handle("/*", http.FileServer(http.Dir(cfg.UIDir)))
	}

	return r
}
