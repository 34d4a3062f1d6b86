package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hxabcd/sms-code-sync/internal/config"
	"github.com/hxabcd/sms-code-sync/internal/events"
	"github.com/hxabcd/sms-code-sync/internal/extract"
	httpserver "github.com/hxabcd/sms-code-sync/internal/http"
	"github.com/hxabcd/sms-code-sync/internal/message"
	"github.com/hxabcd/sms-code-sync/internal/profile"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Build the profile registry (secrets resolved with env override)
	registry := profile.NewRegistry(logger, cfg.Profiles)
	if registry.Len() == 0 {
		logger.Warn("no profiles loaded")
	}
	logger.Info("profiles loaded", "count", registry.Len())

	// Initialize services
	extractor, err := extract.New(extract.Config{
		CodePattern:   cfg.CodePattern,
		SenderPattern: cfg.SenderPattern,
		MailProviders: cfg.MailProviders,
	})
	if err != nil {
		logger.Error("failed to build extractor", "error", err)
		os.Exit(1)
	}

	broadcaster := events.NewBroadcaster()
	messageService := message.NewService(logger, extractor, broadcaster)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:             logger,
		Registry:           registry,
		MessageService:     messageService,
		Broadcaster:        broadcaster,
		APIKey:             cfg.APIKey,
		AllowedOrigins:     cfg.AllowedOrigins,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		HeartbeatInterval:  cfg.HeartbeatInterval,
		RateLimitConfig:    cfg.RateLimit,
		SecurityHeaders:    cfg.SecurityHeaders,
		ServeUI:            cfg.ServeUI,
		UIDir:              cfg.UIDir,
	})

	// Create HTTP server. No WriteTimeout: the event stream is a
	// long-lived response.
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
