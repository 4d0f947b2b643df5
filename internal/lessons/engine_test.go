package lessons

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

type fakePlans map[string]string

func (p fakePlans) PlanFor(ctx context.Context, email string) (string, error) {
	if plan, ok := p[email]; ok {
		return plan, nil
	}
	return PlanBasic, nil
}

func newTestEngine(plans fakePlans) (*Engine, *MemStore, *fakeClock) {
	store := NewMemStore()
	clock := &fakeClock{t: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}
	return NewEngine(store, plans, clock), store, clock
}

func TestRemaining_InitializesToCap(t *testing.T) {
	tests := []struct {
		plan string
		want int
	}{
		{PlanBasic, 1},
		{PlanPlus, 3},
		{PlanPro, UnlimitedCap},
	}

	for _, tc := range tests {
		t.Run(tc.plan, func(t *testing.T) {
			engine, _, _ := newTestEngine(fakePlans{"a@x.com": tc.plan})

			got, err := engine.Remaining(context.Background(), "a@x.com")
			if err != nil {
				t.Fatalf("Remaining: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %d remaining, got %d", tc.want, got)
			}
		})
	}
}

func TestRemaining_DayRollover(t *testing.T) {
	engine, store, clock := newTestEngine(fakePlans{"a@x.com": PlanPlus})
	ctx := context.Background()

	yesterday := DayKey(clock.t.AddDate(0, 0, -1))
	store.PutCredit(ctx, &CreditRecord{
		Email:     "a@x.com",
		Date:      yesterday,
		Remaining: 0,
		Cap:       3,
	})

	got, err := engine.Remaining(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if got != 3 {
		t.Errorf("Expected fresh cap 3 after rollover, got %d", got)
	}

	// The superseding record must be persisted under today's key.
	rec, _ := store.GetCredit(ctx, "a@x.com", DayKey(clock.t))
	if rec == nil || rec.Remaining != 3 {
		t.Errorf("Expected persisted record for today with remaining 3, got %+v", rec)
	}
}

func TestRemaining_ClampsAboveCap(t *testing.T) {
	// Plan downgraded after the record was written: stored remaining
	// exceeds the current cap and must clamp down.
	engine, store, clock := newTestEngine(fakePlans{"a@x.com": PlanBasic})
	ctx := context.Background()

	store.PutCredit(ctx, &CreditRecord{
		Email:     "a@x.com",
		Date:      DayKey(clock.t),
		Remaining: 3,
		Cap:       3,
	})

	got, err := engine.Remaining(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if got != 1 {
		t.Errorf("Expected clamp to cap 1, got %d", got)
	}
}

func TestDecrement_FloorsAtZero(t *testing.T) {
	engine, _, _ := newTestEngine(fakePlans{"a@x.com": PlanBasic})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := engine.Decrement(ctx, "a@x.com"); err != nil {
			t.Fatalf("Decrement: %v", err)
		}
	}

	got, err := engine.Remaining(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if got != 0 {
		t.Errorf("Expected 0 after repeated decrements, got %d", got)
	}
}

func TestStartLesson_HappyPath(t *testing.T) {
	engine, _, clock := newTestEngine(fakePlans{})
	ctx := context.Background()

	res, err := engine.StartLesson(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("StartLesson: %v", err)
	}
	if !res.OK {
		t.Fatalf("Expected ok result, got reason %q", res.Reason)
	}
	if res.Session == nil || !res.Session.Active || !res.Session.Debited {
		t.Fatalf("Expected active debited session, got %+v", res.Session)
	}
	if got := res.Session.End.Sub(res.Session.Start); got != LessonDuration {
		t.Errorf("Expected 1h session, got %v", got)
	}

	// Both basic users spent their single daily credit.
	for _, email := range []string{"a@x.com", "b@x.com"} {
		rem, err := engine.Remaining(ctx, email)
		if err != nil {
			t.Fatalf("Remaining(%s): %v", email, err)
		}
		if rem != 0 {
			t.Errorf("Expected 0 remaining for %s, got %d", email, rem)
		}
	}

	s, err := engine.ActiveSession(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("ActiveSession: %v", err)
	}
	if s == nil || !s.Active {
		t.Fatalf("Expected active session, got %+v", s)
	}

	// Just past the hour the session reads as expired and the countdown
	// is zero.
	clock.Advance(LessonDuration + time.Second)

	s, err = engine.ActiveSession(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("ActiveSession after expiry: %v", err)
	}
	if s == nil || s.Active {
		t.Errorf("Expected expired session, got %+v", s)
	}

	left, err := engine.RemainingTime(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("RemainingTime: %v", err)
	}
	if left != 0 {
		t.Errorf("Expected 0 remaining time, got %v", left)
	}
}

func TestStartLesson_NoCreditsLeavesLedgersUntouched(t *testing.T) {
	engine, store, clock := newTestEngine(fakePlans{})
	ctx := context.Background()

	store.PutCredit(ctx, &CreditRecord{
		Email:     "a@x.com",
		Date:      DayKey(clock.t),
		Remaining: 0,
		Cap:       1,
	})

	res, err := engine.StartLesson(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("StartLesson: %v", err)
	}
	if res.OK || res.Reason != ReasonNoCredits {
		t.Fatalf("Expected no-credits failure, got %+v", res)
	}

	// No mutation on the failure path: A stays at 0, B was never written.
	recA, _ := store.GetCredit(ctx, "a@x.com", DayKey(clock.t))
	if recA == nil || recA.Remaining != 0 {
		t.Errorf("Expected A untouched at 0, got %+v", recA)
	}
	recB, _ := store.GetCredit(ctx, "b@x.com", DayKey(clock.t))
	if recB != nil {
		t.Errorf("Expected no record for B, got %+v", recB)
	}
	if s, _ := store.GetSession(ctx, PairKey("a@x.com", "b@x.com")); s != nil {
		t.Errorf("Expected no session, got %+v", s)
	}
}

func TestStartLesson_SupersedesPriorSession(t *testing.T) {
	engine, _, clock := newTestEngine(fakePlans{"a@x.com": PlanPlus, "b@x.com": PlanPlus})
	ctx := context.Background()

	first, err := engine.StartLesson(ctx, "a@x.com", "b@x.com")
	if err != nil || !first.OK {
		t.Fatalf("first StartLesson: %v %+v", err, first)
	}

	clock.Advance(LessonDuration + time.Minute)

	second, err := engine.StartLesson(ctx, "b@x.com", "a@x.com")
	if err != nil || !second.OK {
		t.Fatalf("second StartLesson: %v %+v", err, second)
	}

	s, err := engine.ActiveSession(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("ActiveSession: %v", err)
	}
	if !s.Start.Equal(second.Session.Start) {
		t.Errorf("Expected the new session to overwrite the old one")
	}
}

func TestLazyExpiry_FlipsActiveAndPersists(t *testing.T) {
	engine, store, clock := newTestEngine(fakePlans{})
	ctx := context.Background()

	key := PairKey("a@x.com", "b@x.com")
	store.PutSession(ctx, &Session{
		PairKey: key,
		A:       "a@x.com",
		B:       "b@x.com",
		Start:   clock.t.Add(-LessonDuration),
		End:     clock.t.Add(-time.Millisecond),
		Active:  true,
		Debited: true,
	})

	s, err := engine.ActiveSession(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("ActiveSession: %v", err)
	}
	if s.Active {
		t.Error("Expected the overrun session to read inactive")
	}

	stored, _ := store.GetSession(ctx, key)
	if stored.Active {
		t.Error("Expected the expiry to be written back")
	}
}

func TestCanStart(t *testing.T) {
	engine, _, clock := newTestEngine(fakePlans{"a@x.com": PlanPlus, "b@x.com": PlanPlus})
	ctx := context.Background()

	ok, err := engine.CanStart(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("CanStart: %v", err)
	}
	if !ok {
		t.Error("Expected fresh pair to be able to start")
	}

	if res, err := engine.StartLesson(ctx, "a@x.com", "b@x.com"); err != nil || !res.OK {
		t.Fatalf("StartLesson: %v %+v", err, res)
	}

	// A session is already running for the pair.
	ok, err = engine.CanStart(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("CanStart: %v", err)
	}
	if ok {
		t.Error("Expected active session to block a new start")
	}

	// Once it expires the pair can start again (plus tier has credits left).
	clock.Advance(LessonDuration + time.Second)
	ok, err = engine.CanStart(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("CanStart: %v", err)
	}
	if !ok {
		t.Error("Expected expired session to allow a new start")
	}
}

func TestProPlan_StaysPositive(t *testing.T) {
	engine, _, _ := newTestEngine(fakePlans{"pro@x.com": PlanPro})
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := engine.Decrement(ctx, "pro@x.com"); err != nil {
			t.Fatalf("Decrement: %v", err)
		}
	}

	got, err := engine.Remaining(ctx, "pro@x.com")
	if err != nil {
		t.Fatalf("Remaining: %v", err)
	}
	if got <= 0 {
		t.Errorf("Expected pro tier to stay positive, got %d", got)
	}
	if got != UnlimitedCap-50 {
		t.Errorf("Expected %d, got %d", UnlimitedCap-50, got)
	}
}

func TestRemainingTime_CountsDown(t *testing.T) {
	engine, _, clock := newTestEngine(fakePlans{})
	ctx := context.Background()

	if res, err := engine.StartLesson(ctx, "a@x.com", "b@x.com"); err != nil || !res.OK {
		t.Fatalf("StartLesson: %v %+v", err, res)
	}

	clock.Advance(20 * time.Minute)

	left, err := engine.RemainingTime(ctx, "a@x.com", "b@x.com")
	if err != nil {
		t.Fatalf("RemainingTime: %v", err)
	}
	if left != 40*time.Minute {
		t.Errorf("Expected 40m left, got %v", left)
	}
}
