package lessons

import (
	"context"
	"fmt"
	"time"
)

// LessonDuration is how long a started lesson stays active.
const LessonDuration = time.Hour

// ReasonNoCredits is the structured failure reason when either participant
// has no lessons left today. It is a result, not an error — callers turn it
// into a user-facing message and change nothing.
const ReasonNoCredits = "no-credits"

// StartResult is the outcome of StartLesson.
type StartResult struct {
	OK      bool     `json:"ok"`
	Reason  string   `json:"reason,omitempty"`
	Session *Session `json:"session,omitempty"`
}

// Engine coordinates the credit ledger and the session store. All state
// lives in the injected Store; the engine itself holds nothing mutable, so
// any number of processes (or browser tabs) can run one concurrently. The
// only consistency it relies on is last-write-wins per record.
type Engine struct {
	store Store
	plans PlanResolver
	clock Clock
}

func NewEngine(store Store, plans PlanResolver, clock Clock) *Engine {
	return &Engine{store: store, plans: plans, clock: clock}
}

// Remaining reports how many lessons the user has left today. This is a
// read with a visible side effect: a missing, stale (prior-day) or
// over-cap record is normalized and written back before the value is
// returned.
func (e *Engine) Remaining(ctx context.Context, email string) (int, error) {
	rec, dirty, err := e.normalizedCredit(ctx, email, e.clock.Now())
	if err != nil {
		return 0, err
	}
	if dirty {
		if err := e.store.PutCredit(ctx, rec); err != nil {
			return 0, fmt.Errorf("persist credit record: %w", err)
		}
	}
	if rec.Remaining < 0 {
		return 0, nil
	}
	return rec.Remaining, nil
}

// Decrement debits one lesson for today, flooring at zero. It is a debit,
// not an idempotent operation: calling it twice charges twice.
func (e *Engine) Decrement(ctx context.Context, email string) error {
	rec, _, err := e.normalizedCredit(ctx, email, e.clock.Now())
	if err != nil {
		return err
	}
	rec.Remaining--
	if rec.Remaining < 0 {
		rec.Remaining = 0
	}
	rec.UpdatedAt = e.clock.Now()
	if err := e.store.PutCredit(ctx, rec); err != nil {
		return fmt.Errorf("persist credit record: %w", err)
	}
	return nil
}

// StartLesson checks both users' ledgers and, if both have credit, debits
// one lesson from each and creates a fresh one-hour session for the pair,
// superseding any prior session record.
//
// The check and the three writes are not atomic across both users unless
// the store offers a Batch: two racing starts can each pass the check and
// double-charge. That race is accepted; stores that can group the writes
// (the Postgres store does, in one transaction) narrow it but are not
// required to.
func (e *Engine) StartLesson(ctx context.Context, a, b string) (StartResult, error) {
	now := e.clock.Now()

	creditA, _, err := e.normalizedCredit(ctx, a, now)
	if err != nil {
		return StartResult{}, err
	}
	creditB, _, err := e.normalizedCredit(ctx, b, now)
	if err != nil {
		return StartResult{}, err
	}

	// Read-only failure path: nothing has been written yet.
	if creditA.Remaining <= 0 || creditB.Remaining <= 0 {
		return StartResult{OK: false, Reason: ReasonNoCredits}, nil
	}

	creditA.Remaining--
	creditA.UpdatedAt = now
	creditB.Remaining--
	creditB.UpdatedAt = now

	session := &Session{
		PairKey:   PairKey(a, b),
		A:         a,
		B:         b,
		Start:     now,
		End:       now.Add(LessonDuration),
		Active:    true,
		Debited:   true,
		UpdatedAt: now,
	}

	write := func(s Store) error {
		if err := s.PutCredit(ctx, creditA); err != nil {
			return fmt.Errorf("debit %s: %w", a, err)
		}
		if err := s.PutCredit(ctx, creditB); err != nil {
			return fmt.Errorf("debit %s: %w", b, err)
		}
		if err := s.PutSession(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	}

	if batcher, ok := e.store.(Batcher); ok {
		err = batcher.Batch(ctx, write)
	} else {
		err = write(e.store)
	}
	if err != nil {
		return StartResult{}, err
	}

	return StartResult{OK: true, Session: session}, nil
}

// ActiveSession fetches the current session record for the pair, expiring
// it lazily: a session observed past its end is flipped inactive and
// persisted before being returned. Returns (nil, nil) when the pair never
// had a session.
func (e *Engine) ActiveSession(ctx context.Context, a, b string) (*Session, error) {
	s, err := e.store.GetSession(ctx, PairKey(a, b))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return nil, nil
	}

	now := e.clock.Now()
	if s.Active && !now.Before(s.End) {
		s.Active = false
		s.UpdatedAt = now
		if err := e.store.PutSession(ctx, s); err != nil {
			return nil, fmt.Errorf("expire session: %w", err)
		}
	}
	return s, nil
}

// CanStart reports whether a lesson between a and b could start right now:
// both have credit for today and no session is currently running. Unlike
// Remaining it never writes — stale records are evaluated, not healed.
func (e *Engine) CanStart(ctx context.Context, a, b string) (bool, error) {
	now := e.clock.Now()

	creditA, _, err := e.normalizedCredit(ctx, a, now)
	if err != nil {
		return false, err
	}
	creditB, _, err := e.normalizedCredit(ctx, b, now)
	if err != nil {
		return false, err
	}
	if creditA.Remaining <= 0 || creditB.Remaining <= 0 {
		return false, nil
	}

	s, err := e.store.GetSession(ctx, PairKey(a, b))
	if err != nil {
		return false, fmt.Errorf("load session: %w", err)
	}
	if s != nil && s.Active && now.Before(s.End) {
		return false, nil
	}
	return true, nil
}

// RemainingTime is how long the pair's current session still has to run,
// zero when there is no active session.
func (e *Engine) RemainingTime(ctx context.Context, a, b string) (time.Duration, error) {
	s, err := e.ActiveSession(ctx, a, b)
	if err != nil {
		return 0, err
	}
	if s == nil || !s.Active {
		return 0, nil
	}
	left := s.End.Sub(e.clock.Now())
	if left < 0 {
		return 0, nil
	}
	return left, nil
}

// normalizedCredit loads the user's credit record for today and normalizes
// it in memory: a missing or prior-day record becomes a fresh one at the
// full cap, and a remaining value above the cap (plan downgrade) is
// clamped down. The second return reports whether the record differs from
// what is stored and needs a write-back.
func (e *Engine) normalizedCredit(ctx context.Context, email string, now time.Time) (*CreditRecord, bool, error) {
	plan, err := e.plans.PlanFor(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("resolve plan for %s: %w", email, err)
	}
	cap := CapForPlan(plan)
	today := DayKey(now)

	rec, err := e.store.GetCredit(ctx, email, today)
	if err != nil {
		return nil, false, fmt.Errorf("load credit record: %w", err)
	}

	if rec == nil || rec.Date != today {
		return &CreditRecord{
			Email:     email,
			Date:      today,
			Remaining: cap,
			Cap:       cap,
			UpdatedAt: now,
		}, true, nil
	}

	dirty := false
	if rec.Remaining > cap {
		rec.Remaining = cap
		dirty = true
	}
	if rec.Cap != cap {
		rec.Cap = cap
		dirty = true
	}
	if dirty {
		rec.UpdatedAt = now
	}
	return rec, dirty, nil
}
