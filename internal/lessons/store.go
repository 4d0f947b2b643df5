package lessons

import (
	"context"
	"time"
)

// CreditRecord is the per-user, per-day remaining-lesson counter. One record
// per (email, day); a record from a prior day is treated as nonexistent and
// superseded with a fresh one on next read.
type CreditRecord struct {
	Email     string    `json:"email"`
	Date      string    `json:"date"` // day key, "2006-01-02"
	Remaining int       `json:"remaining"`
	Cap       int       `json:"cap"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session records one active or expired one-hour lesson between two users,
// keyed by their pair key. A new start overwrites the previous record for
// the pair. Active is advisory: it is only meaningful while now < End, and
// any reader that observes an overrun session flips it off (lazy expiry).
type Session struct {
	PairKey   string    `json:"pair_key"`
	A         string    `json:"a"`
	B         string    `json:"b"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Active    bool      `json:"active"`
	Debited   bool      `json:"debited"` // always true once created, kept for older records
	UpdatedAt time.Time `json:"updated_at"`
}

// CreditStore persists credit records keyed by (email, day). A missing
// record is (nil, nil), not an error. Writes are last-write-wins per key.
type CreditStore interface {
	GetCredit(ctx context.Context, email, day string) (*CreditRecord, error)
	PutCredit(ctx context.Context, rec *CreditRecord) error
}

// SessionStore persists lesson sessions keyed by pair key, with the same
// missing-record and last-write-wins semantics as CreditStore.
type SessionStore interface {
	GetSession(ctx context.Context, pairKey string) (*Session, error)
	PutSession(ctx context.Context, s *Session) error
}

// Store is the full persistence surface the engine needs.
type Store interface {
	CreditStore
	SessionStore
}

// Batcher is an optional upgrade a Store can offer: run a group of writes
// as one unit. Backends with real multi-key transactions should implement
// it; the engine falls back to independent writes when they don't, which
// the contract allows (best-effort double-debit is an accepted race).
type Batcher interface {
	Batch(ctx context.Context, fn func(Store) error) error
}

// PlanResolver looks up a user's plan tier. Unknown users resolve to basic.
type PlanResolver interface {
	PlanFor(ctx context.Context, email string) (string, error)
}
