package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cashflow/internal/cache"
	"cashflow/internal/core"
	"cashflow/internal/ledger"
	"cashflow/internal/store"
)

var _ store.LedgerStore = (*Store)(nil)

// Store keeps session ledgers in process memory. Sessions idle for longer
// than the TTL, or pushed out by newer sessions past the capacity, are
// dropped and start over from the seed on their next request.
type Store struct {
	mu       sync.Mutex
	sessions *cache.LRUCache[*ledger.Ledger]
	seed     store.Seeder
}

// New creates a store holding at most maxSessions ledgers.
func New(maxSessions int, ttl time.Duration, seed store.Seeder) *Store {
	if seed == nil {
		seed = ledger.Seed
	}
	sessions := cache.NewLRUCache[*ledger.Ledger](maxSessions, ttl)
	sessions.OnEvict(func(key string, l *ledger.Ledger) {
		slog.Debug("Session ledger evicted", "session", key, "transactions", l.Len())
	})
	return &Store{sessions: sessions, seed: seed}
}

// Cache exposes the session cache so it can be registered for cleanup.
func (s *Store) Cache() cache.Cleaner {
	return s.sessions
}

// Sessions returns the number of live sessions.
func (s *Store) Sessions() int {
	return s.sessions.Size()
}

// ledgerFor returns the live ledger of a session, seeding it if needed.
// Callers hold s.mu.
func (s *Store) ledgerFor(session string) *ledger.Ledger {
	l, ok := s.sessions.Get(session)
	if !ok {
		l = s.seed()
		slog.Debug("Session ledger seeded", "session", session, "transactions", l.Len())
	}
	// Set on every access so the TTL slides with activity.
	s.sessions.Set(session, l)
	return l
}

func (s *Store) Snapshot(_ context.Context, session string) (*ledger.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerFor(session).Clone(), nil
}

func (s *Store) Append(_ context.Context, session string, tx core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerFor(session).Add(tx)
}

func (s *Store) Delete(_ context.Context, session string, index int) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerFor(session).Delete(index)
}

func (s *Store) Reset(_ context.Context, session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Set(session, s.seed())
	return nil
}
