// Package completions handles the pull endpoint the chat bot polls for
// finished verifications.
package completions

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/era-community/keyrelay/internal/domain"
	"github.com/era-community/keyrelay/internal/httputil"
	"github.com/era-community/keyrelay/internal/registry"
)

type Handler struct {
	logger   *slog.Logger
	registry registry.Registry
	secret   string
}

// NewHandler creates a completions handler. An empty secret leaves the
// endpoint open; main logs a warning for that configuration.
func NewHandler(logger *slog.Logger, reg registry.Registry, secret string) *Handler {
	return &Handler{
		logger:   logger,
		registry: reg,
		secret:   secret,
	}
}

type PendingResponse struct {
	Completions []domain.CompletionEntry `json:"completions"`
}

// Pending drains and returns all queued completion entries. Delivery is at
// most once: entries are removed as they are handed to the poller.
// GET /api/verify/pending-completions
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		provided := r.Header.Get("X-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
			h.logger.Warn("invalid pull secret", "ip", r.RemoteAddr)
			httputil.Error(w, http.StatusForbidden, "Invalid secret header")
			return
		}
	}

	entries, err := h.registry.DrainCompletions(r.Context())
	if err != nil {
		h.logger.Error("failed to drain completions", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to read completions")
		return
	}

	if entries == nil {
		entries = []domain.CompletionEntry{}
	}
	httputil.JSON(w, http.StatusOK, PendingResponse{Completions: entries})
}
