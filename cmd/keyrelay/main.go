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

	"github.com/era-community/keyrelay/internal/config"
	httpserver "github.com/era-community/keyrelay/internal/http"
	"github.com/era-community/keyrelay/internal/registry"
	redisstore "github.com/era-community/keyrelay/internal/registry/redis"
	"github.com/era-community/keyrelay/internal/relay"
	"github.com/era-community/keyrelay/internal/signature"
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

	if cfg.Permissive() {
		logger.Warn("HMAC_SECRET is not set: ALL webhook requests will be accepted without signature verification. Do not run this in production.")
	}
	if cfg.PullSecret == "" {
		logger.Warn("PULL_SECRET is not set: the pending-completions endpoint is open")
	}
	if cfg.WebhookURL == "" {
		logger.Warn("DISCORD_WEBHOOK is not set: relay dispatches will fail until it is configured")
	}

	// Choose registry backend
	var reg registry.Registry
	if cfg.HasRedis() {
		redisCfg := redisstore.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.KeyTTL = cfg.KeyTTL

		store, err := redisstore.New(redisCfg)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		reg = store
		logger.Info("using redis registry backend")
	} else {
		reg = registry.NewMemoryStore(cfg.KeyTTL)
		logger.Info("using in-memory registry backend", "key_ttl", cfg.KeyTTL)
	}

	// Optional append-only key log
	var keyLog *relay.KeyLog
	if cfg.LogToFile {
		keyLog, err = relay.OpenKeyLog(cfg.KeyLogFile)
		if err != nil {
			logger.Error("failed to open key log", "path", cfg.KeyLogFile, "error", err)
			os.Exit(1)
		}
		defer keyLog.Close()
		logger.Info("key log enabled", "path", cfg.KeyLogFile)
	}

	dispatcher := relay.NewDispatcher(relay.Config{
		WebhookURL: cfg.WebhookURL,
		Timeout:    cfg.RelayTimeout,
	}, logger, keyLog)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:          logger,
		Verifier:        signature.NewVerifier(cfg.HMACSecret),
		Registry:        reg,
		Dispatcher:      dispatcher,
		PullSecret:      cfg.PullSecret,
		MaxBodySize:     cfg.MaxBodySize,
		RateLimitConfig: cfg.RateLimit,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ListenAddr, cfg.ListenPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
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
