package completions

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/era-community/keyrelay/internal/domain"
	"github.com/era-community/keyrelay/internal/registry"
)

func newTestHandler(t *testing.T, secret string) (*Handler, *registry.MemoryStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := registry.NewMemoryStore(30 * time.Minute)
	return NewHandler(logger, store, secret), store
}

func TestPending_DrainsEntries(t *testing.T) {
	handler, store := newTestHandler(t, "pull-secret")

	store.AddCompletion(context.Background(), domain.CompletionEntry{
		SteamID: "STEAM_1", DiscordID: "111", VerifiedBy: "mod",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/verify/pending-completions", nil)
	req.Header.Set("X-Secret", "pull-secret")
	rec := httptest.NewRecorder()
	handler.Pending(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp PendingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(resp.Completions) != 1 {
		t.Fatalf("got %d completions, want 1", len(resp.Completions))
	}
	if resp.Completions[0].SteamID != "STEAM_1" || resp.Completions[0].DiscordID != "111" {
		t.Errorf("completion = %+v, want STEAM_1/111", resp.Completions[0])
	}

	// At-most-once: a second poll is empty.
	req = httptest.NewRequest(http.MethodGet, "/api/verify/pending-completions", nil)
	req.Header.Set("X-Secret", "pull-secret")
	rec = httptest.NewRecorder()
	handler.Pending(rec, req)

	json.NewDecoder(rec.Body).Decode(&resp)
	if len(resp.Completions) != 0 {
		t.Errorf("second poll returned %d completions, want 0", len(resp.Completions))
	}
}

func TestPending_EmptyListIsArray(t *testing.T) {
	handler, _ := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/verify/pending-completions", nil)
	rec := httptest.NewRecorder()
	handler.Pending(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "{\"completions\":[]}\n" {
		t.Errorf("body = %q, want empty completions array", rec.Body.String())
	}
}

func TestPending_SecretRequired(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "wrong", header: "not-the-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store := newTestHandler(t, "pull-secret")
			store.AddCompletion(context.Background(), domain.CompletionEntry{SteamID: "STEAM_1"})

			req := httptest.NewRequest(http.MethodGet, "/api/verify/pending-completions", nil)
			if tt.header != "" {
				req.Header.Set("X-Secret", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.Pending(rec, req)

			if rec.Code != http.StatusForbidden {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
			}

			var resp map[string]string
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp["error"] != "Invalid secret header" {
				t.Errorf("error = %q, want %q", resp["error"], "Invalid secret header")
			}

			// A rejected poll must not drain the queue.
			entries, _ := store.DrainCompletions(context.Background())
			if len(entries) != 1 {
				t.Error("rejected poll drained the completion queue")
			}
		})
	}
}

func TestPending_OpenWhenNoSecretConfigured(t *testing.T) {
	handler, _ := newTestHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/verify/pending-completions", nil)
	rec := httptest.NewRecorder()
	handler.Pending(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d with no secret configured", rec.Code, http.StatusOK)
	}
}
