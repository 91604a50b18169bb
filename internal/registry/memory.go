package registry

import (
	"context"
	"sync"
	"time"

	"github.com/era-community/keyrelay/internal/domain"
)

// MemoryStore is the default single-process Registry backend: a
// mutex-guarded map, suitable when the relay and the bot share a process.
type MemoryStore struct {
	mu          sync.Mutex
	ttl         time.Duration
	records     map[string]*domain.VerificationRecord
	completions []domain.CompletionEntry

	now func() time.Time
}

// NewMemoryStore creates an in-memory registry issuing records with the
// given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		records: make(map[string]*domain.VerificationRecord),
		now:     time.Now,
	}
}

var _ Registry = (*MemoryStore)(nil)

func (s *MemoryStore) Register(_ context.Context, playerID, key, nickname string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeLocked(now)
	s.records[playerID] = &domain.VerificationRecord{
		PlayerID:  playerID,
		Key:       key,
		Nickname:  nickname,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, playerID string) (*domain.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[playerID]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	if !s.now().Before(rec.ExpiresAt) {
		delete(s.records, playerID)
		return nil, domain.ErrKeyExpired
	}

	delete(s.records, playerID)
	out := *rec
	out.Consumed = true
	return &out, nil
}

func (s *MemoryStore) Peek(_ context.Context, playerID string) (*domain.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[playerID]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	if !s.now().Before(rec.ExpiresAt) {
		delete(s.records, playerID)
		return nil, domain.ErrKeyExpired
	}

	out := *rec
	return &out, nil
}

func (s *MemoryStore) Remove(_ context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, playerID)
	return nil
}

func (s *MemoryStore) ActiveCount(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	now := s.now()
	for _, rec := range s.records {
		if rec.Active(now) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.purgeLocked(s.now()), nil
}

// purgeLocked drops expired records. Caller holds the lock.
func (s *MemoryStore) purgeLocked(now time.Time) int {
	purged := 0
	for id, rec := range s.records {
		if !now.Before(rec.ExpiresAt) {
			delete(s.records, id)
			purged++
		}
	}
	return purged
}

func (s *MemoryStore) AddCompletion(_ context.Context, entry domain.CompletionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completions = append(s.completions, entry)
	return nil
}

func (s *MemoryStore) DrainCompletions(_ context.Context) ([]domain.CompletionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.completions
	s.completions = nil
	return out, nil
}
