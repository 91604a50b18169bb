package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/era-community/keyrelay/internal/config"
	"github.com/era-community/keyrelay/internal/http/features/completions"
	"github.com/era-community/keyrelay/internal/http/features/keys"
	"github.com/era-community/keyrelay/internal/http/middleware"
	"github.com/era-community/keyrelay/internal/httputil"
	"github.com/era-community/keyrelay/internal/registry"
	"github.com/era-community/keyrelay/internal/relay"
	"github.com/era-community/keyrelay/internal/signature"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	Verifier        *signature.Verifier
	Registry        registry.Registry
	Dispatcher      *relay.Dispatcher
	PullSecret      string
	MaxBodySize     int64
	RateLimitConfig config.RateLimitConfig
}

// HealthResponse is the health endpoint body.
type HealthResponse struct {
	Status    string `json:"status"`
	Time      int64  `json:"time"`
	KeysCount int    `json:"keys_count"`
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 65536
	}

	r := chi.NewRouter()

	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.RequestSizeLimit(cfg.MaxBodySize))

	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	// Health check. Always 200; the key count is best effort.
	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		count, err := cfg.Registry.ActiveCount(req.Context())
		if err != nil {
			cfg.Logger.Error("failed to count active keys", "error", err)
			count = 0
		}
		httputil.JSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Time:      time.Now().Unix(),
			KeysCount: count,
		})
	})

	keysHandler := keys.NewHandler(cfg.Logger, cfg.Verifier, cfg.Registry, cfg.Dispatcher)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["webhook"])
		r.Post("/api/key/register", keysHandler.Register)
		r.Post("/api/verify/reset", keysHandler.Reset)
	})

	completionsHandler := completions.NewHandler(cfg.Logger, cfg.Registry, cfg.PullSecret)
	r.With(rateLimiters["pull"]).Get("/api/verify/pending-completions", completionsHandler.Pending)

	return r
}
