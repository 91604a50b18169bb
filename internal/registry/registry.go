// Package registry holds pending verification keys and completed
// verifications. It is the only mutable shared state in the relay; every
// backend must keep register/consume for one player mutually exclusive so
// a key can be consumed exactly once.
package registry

import (
	"context"

	"github.com/era-community/keyrelay/internal/domain"
)

// Registry is the store for pending verification keys and queued
// completion entries. All returned records are copies; callers never hold
// a reference into backend state.
type Registry interface {
	// Register inserts or replaces the active record for a player.
	// Last write wins: a previous unconsumed record is discarded.
	Register(ctx context.Context, playerID, key, nickname string) error

	// Consume returns the active record for a player and marks it consumed
	// in the same step. Exactly one concurrent caller wins; the rest get
	// domain.ErrKeyNotFound. Expired records yield domain.ErrKeyExpired.
	Consume(ctx context.Context, playerID string) (*domain.VerificationRecord, error)

	// Peek returns the active record without consuming it.
	Peek(ctx context.Context, playerID string) (*domain.VerificationRecord, error)

	// Remove discards any pending record for a player. Removing an absent
	// record is not an error.
	Remove(ctx context.Context, playerID string) error

	// ActiveCount returns the number of unexpired, unconsumed records.
	ActiveCount(ctx context.Context) (int, error)

	// PurgeExpired removes expired records and returns how many were dropped.
	PurgeExpired(ctx context.Context) (int, error)

	// AddCompletion queues a finished verification for the polling client.
	AddCompletion(ctx context.Context, entry domain.CompletionEntry) error

	// DrainCompletions returns all queued completion entries and removes
	// them. Delivery is at most once: a drained entry is gone.
	DrainCompletions(ctx context.Context) ([]domain.CompletionEntry, error)
}
