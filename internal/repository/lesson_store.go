package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillswap-backend/internal/lessons"
)

// querier is the subset of pgx shared by a pool and a transaction, so the
// same store code serves both the direct path and Batch.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LessonStore is the Postgres-backed lessons.Store. It also implements
// lessons.Batcher: the three StartLesson writes go through one
// transaction, which narrows (but per the engine's contract need not
// eliminate) the double-debit race.
type LessonStore struct {
	pool *pgxpool.Pool
	db   querier
}

func NewLessonStore(pool *pgxpool.Pool) *LessonStore {
	return &LessonStore{pool: pool, db: pool}
}

func (s *LessonStore) GetCredit(ctx context.Context, email, day string) (*lessons.CreditRecord, error) {
	rec := &lessons.CreditRecord{}
	err := s.db.QueryRow(ctx, `
		SELECT email, day, remaining, cap, updated_at
		FROM lesson_credits
		WHERE email = LOWER($1) AND day = $2`,
		email, day,
	).Scan(&rec.Email, &rec.Date, &rec.Remaining, &rec.Cap, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *LessonStore) PutCredit(ctx context.Context, rec *lessons.CreditRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO lesson_credits (email, day, remaining, cap, updated_at)
		VALUES (LOWER($1), $2, $3, $4, $5)
		ON CONFLICT (email, day) DO UPDATE
		SET remaining = EXCLUDED.remaining, cap = EXCLUDED.cap, updated_at = EXCLUDED.updated_at`,
		rec.Email, rec.Date, rec.Remaining, rec.Cap, rec.UpdatedAt,
	)
	return err
}

func (s *LessonStore) GetSession(ctx context.Context, pairKey string) (*lessons.Session, error) {
	sess := &lessons.Session{}
	err := s.db.QueryRow(ctx, `
		SELECT pair_key, a, b, start_at, end_at, active, debited, updated_at
		FROM lesson_sessions
		WHERE pair_key = $1`,
		pairKey,
	).Scan(&sess.PairKey, &sess.A, &sess.B, &sess.Start, &sess.End, &sess.Active, &sess.Debited, &sess.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *LessonStore) PutSession(ctx context.Context, sess *lessons.Session) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO lesson_sessions (pair_key, a, b, start_at, end_at, active, debited, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (pair_key) DO UPDATE
		SET a = EXCLUDED.a, b = EXCLUDED.b, start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at, active = EXCLUDED.active,
			debited = EXCLUDED.debited, updated_at = EXCLUDED.updated_at`,
		sess.PairKey, sess.A, sess.B, sess.Start, sess.End, sess.Active, sess.Debited, sess.UpdatedAt,
	)
	return err
}

// Batch runs fn against a transaction-scoped view of the store.
func (s *LessonStore) Batch(ctx context.Context, fn func(lessons.Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&LessonStore{pool: s.pool, db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
