// Package relay forwards key-lifecycle events to the community chat channel
// through a webhook, and optionally mirrors them to an append-only log file.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/era-community/keyrelay/internal/domain"
)

// Config holds dispatcher settings.
type Config struct {
	// WebhookURL is the chat-channel webhook. Dispatch fails when unset.
	WebhookURL string

	// Timeout bounds the outbound call.
	Timeout time.Duration
}

// Dispatcher sends formatted event lines to the notification sink. One
// attempt per event; failures are returned, never retried here.
type Dispatcher struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
	keyLog *KeyLog
}

// webhookPayload is the sink's expected body.
type webhookPayload struct {
	Content string `json:"content"`
}

// NewDispatcher creates a dispatcher. keyLog may be nil to disable the
// append-only file log.
func NewDispatcher(cfg Config, logger *slog.Logger, keyLog *KeyLog) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Dispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		keyLog: keyLog,
	}
}

// Dispatch relays one event to the sink. Delivered events also land in the
// key log when that is enabled.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	msg := ev.Message()

	if err := d.send(ctx, msg); err != nil {
		d.logger.Error("relay dispatch failed", "error", err)
		return err
	}

	if d.keyLog != nil {
		if err := d.keyLog.Append(msg); err != nil {
			d.logger.Error("key log append failed", "error", err)
		}
	}

	d.logger.Info("event relayed", "message", msg)
	return nil
}

func (d *Dispatcher) send(ctx context.Context, content string) error {
	if d.cfg.WebhookURL == "" {
		return fmt.Errorf("%w: webhook URL not set", domain.ErrSinkNotConfigured)
	}

	body, err := json.Marshal(webhookPayload{Content: content})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRelayFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRelayFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRelayFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: sink returned status %d", domain.ErrRelayFailed, resp.StatusCode)
	}
	return nil
}
