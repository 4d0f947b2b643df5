package lessons

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store. It backs tests and single-node setups
// that run without Postgres, mirroring the behavior of the SQL-backed
// store: last write wins, no versioning.
type MemStore struct {
	mu       sync.Mutex
	credits  map[string]CreditRecord // keyed by email + "_" + day
	sessions map[string]Session
}

func NewMemStore() *MemStore {
	return &MemStore{
		credits:  make(map[string]CreditRecord),
		sessions: make(map[string]Session),
	}
}

func (m *MemStore) GetCredit(ctx context.Context, email, day string) (*CreditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.credits[email+"_"+day]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemStore) PutCredit(ctx context.Context, rec *CreditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.credits[rec.Email+"_"+rec.Date] = *rec
	return nil
}

func (m *MemStore) GetSession(ctx context.Context, pairKey string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[pairKey]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemStore) PutSession(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.PairKey] = *s
	return nil
}
