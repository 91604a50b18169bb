// Package keys handles the inbound game-server webhook: key registration
// and verification resets.
package keys

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/era-community/keyrelay/internal/httputil"
	"github.com/era-community/keyrelay/internal/registry"
	"github.com/era-community/keyrelay/internal/relay"
	"github.com/era-community/keyrelay/internal/signature"
)

type Handler struct {
	logger     *slog.Logger
	verifier   *signature.Verifier
	registry   registry.Registry
	dispatcher *relay.Dispatcher
}

func NewHandler(
	logger *slog.Logger,
	verifier *signature.Verifier,
	reg registry.Registry,
	dispatcher *relay.Dispatcher,
) *Handler {
	return &Handler{
		logger:     logger,
		verifier:   verifier,
		registry:   reg,
		dispatcher: dispatcher,
	}
}

type RegisterRequest struct {
	SteamID  string `json:"steamid"`
	Key      string `json:"key"`
	Nickname string `json:"nickname"`
	Server   string `json:"server"`
	Action   string `json:"action"`
}

type ResetRequest struct {
	SteamID   string `json:"steamid"`
	ResetBy   string `json:"reset_by"`
	Timestamp int64  `json:"timestamp"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Register handles a fresh verification key from a game server.
// POST /api/key/register
//
// The relay call happens before the registry mutation: a failed dispatch
// leaves no side effects, so a 5xx response always means nothing changed.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readSigned(w, r)
	if !ok {
		return
	}

	var req RegisterRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SteamID == "" || req.Key == "" {
		httputil.Error(w, http.StatusBadRequest, "Missing steamid or key")
		return
	}
	if req.Nickname == "" {
		req.Nickname = "Unknown"
	}

	err := h.dispatcher.Dispatch(r.Context(), relay.KeyRegistered{
		SteamID:  req.SteamID,
		Key:      req.Key,
		Nickname: req.Nickname,
		Server:   req.Server,
		Action:   req.Action,
	})
	if err != nil {
		httputil.ErrorDetail(w, http.StatusInternalServerError,
			"Failed to deliver notification", err.Error())
		return
	}

	if err := h.registry.Register(r.Context(), req.SteamID, req.Key, req.Nickname); err != nil {
		h.logger.Error("failed to store verification key", "steamid", req.SteamID, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to store key")
		return
	}

	h.logger.Info("verification key registered",
		"steamid", req.SteamID, "nickname", req.Nickname, "server", req.Server)

	httputil.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Reset handles a verification reset from a game server or moderator tool.
// POST /api/verify/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readSigned(w, r)
	if !ok {
		return
	}

	var req ResetRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SteamID == "" {
		httputil.Error(w, http.StatusBadRequest, "Missing steamid")
		return
	}
	if req.ResetBy == "" {
		req.ResetBy = "unknown"
	}
	ts := time.Now()
	if req.Timestamp > 0 {
		ts = time.Unix(req.Timestamp, 0)
	}

	err := h.dispatcher.Dispatch(r.Context(), relay.KeyReset{
		SteamID:   req.SteamID,
		ResetBy:   req.ResetBy,
		Timestamp: ts,
	})
	if err != nil {
		httputil.ErrorDetail(w, http.StatusInternalServerError,
			"Failed to deliver notification", err.Error())
		return
	}

	// Drop any pending key for the player; a reset invalidates it.
	if err := h.registry.Remove(r.Context(), req.SteamID); err != nil {
		h.logger.Error("failed to remove pending key", "steamid", req.SteamID, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to reset key")
		return
	}

	h.logger.Info("verification reset", "steamid", req.SteamID, "reset_by", req.ResetBy)

	httputil.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// readSigned reads the raw body and checks its X-Signature header. It
// writes the error response itself and returns ok=false on rejection.
func (h *Handler) readSigned(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			httputil.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		httputil.Error(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	if !h.verifier.Verify(raw, r.Header.Get("X-Signature")) {
		h.logger.Warn("invalid webhook signature", "path", r.URL.Path, "ip", r.RemoteAddr)
		httputil.Error(w, http.StatusForbidden, "Invalid signature")
		return nil, false
	}

	return raw, true
}
