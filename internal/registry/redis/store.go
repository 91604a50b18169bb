// Package redis provides a Redis-backed Registry for deployments where the
// relay and the chat bot run as separate processes and must share the
// pending-key store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/era-community/keyrelay/internal/domain"
	"github.com/era-community/keyrelay/internal/registry"
)

// Config holds Redis connection settings for the registry backend.
type Config struct {
	// URL is the Redis connection URL (e.g. redis://localhost:6379).
	URL string

	PoolSize     int
	MinIdleConns int

	// KeyTTL bounds pending verification records.
	KeyTTL time.Duration
}

// DefaultConfig returns sensible defaults for the Redis backend.
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		KeyTTL:       30 * time.Minute,
	}
}

// Store is a Redis-backed implementation of registry.Registry. Pending
// records live under per-player keys with a native TTL; completions are a
// single list drained atomically.
type Store struct {
	client *redis.Client
	cfg    Config

	now func() time.Time
}

// New connects to Redis and verifies the connection.
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Store with an existing client (for testing).
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ registry.Registry = (*Store)(nil)

func (s *Store) Register(ctx context.Context, playerID, key, nickname string) error {
	now := s.now()
	rec := domain.VerificationRecord{
		PlayerID:  playerID,
		Key:       key,
		Nickname:  nickname,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.KeyTTL),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	// SET replaces any previous record for the player; last write wins.
	return s.client.Set(ctx, pendingKey(playerID), data, s.cfg.KeyTTL).Err()
}

func (s *Store) Consume(ctx context.Context, playerID string) (*domain.VerificationRecord, error) {
	// GETDEL reads and removes in one step, so only one of N concurrent
	// consumers across processes gets the record.
	data, err := s.client.GetDel(ctx, pendingKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, err
	}

	rec, err := s.decode(data)
	if err != nil {
		return nil, err
	}
	rec.Consumed = true
	return rec, nil
}

func (s *Store) Peek(ctx context.Context, playerID string) (*domain.VerificationRecord, error) {
	data, err := s.client.Get(ctx, pendingKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, err
	}
	return s.decode(data)
}

// decode unmarshals a record and re-checks its embedded expiry. Redis
// normally expires the key first, but the record deadline wins on skew.
func (s *Store) decode(data []byte) (*domain.VerificationRecord, error) {
	var rec domain.VerificationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if !s.now().Before(rec.ExpiresAt) {
		return nil, domain.ErrKeyExpired
	}
	return &rec, nil
}

func (s *Store) Remove(ctx context.Context, playerID string) error {
	return s.client.Del(ctx, pendingKey(playerID)).Err()
}

func (s *Store) ActiveCount(ctx context.Context) (int, error) {
	var cursor uint64
	count := 0
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pendingKeyPattern(), 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

// PurgeExpired is a no-op for Redis: key TTLs handle expiry server-side.
func (s *Store) PurgeExpired(_ context.Context) (int, error) {
	return 0, nil
}

func (s *Store) AddCompletion(ctx context.Context, entry domain.CompletionEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.RPush(ctx, completionsKey(), data).Err()
}

func (s *Store) DrainCompletions(ctx context.Context) ([]domain.CompletionEntry, error) {
	// Read and delete in one MULTI so no entry is lost or delivered twice.
	pipe := s.client.TxPipeline()
	rangeCmd := pipe.LRange(ctx, completionsKey(), 0, -1)
	pipe.Del(ctx, completionsKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	raw := rangeCmd.Val()
	entries := make([]domain.CompletionEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.CompletionEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
