package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RatingRepo struct {
	pool *pgxpool.Pool
}

func NewRatingRepo(pool *pgxpool.Pool) *RatingRepo {
	return &RatingRepo{pool: pool}
}

// Upsert records rater's score for target, replacing any earlier score by
// the same rater. One score per (target, rater).
func (r *RatingRepo) Upsert(ctx context.Context, targetEmail, raterEmail string, score int) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ratings (target_email, rater_email, score)
		VALUES (LOWER($1), LOWER($2), $3)
		ON CONFLICT (target_email, rater_email) DO UPDATE
		SET score = EXCLUDED.score, updated_at = NOW()`,
		targetEmail, raterEmail, score,
	)
	return err
}

// AverageFor is the mean score for a user rounded to one decimal, zero
// when nobody has rated them yet.
func (r *RatingRepo) AverageFor(ctx context.Context, targetEmail string) (float64, error) {
	var avg float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(ROUND(AVG(score)::numeric, 1), 0)
		FROM ratings WHERE target_email = LOWER($1)`,
		targetEmail,
	).Scan(&avg)
	return avg, err
}

// ScoreBy returns the score rater gave target, zero if none.
func (r *RatingRepo) ScoreBy(ctx context.Context, targetEmail, raterEmail string) (int, error) {
	var score int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE((
			SELECT score FROM ratings
			WHERE target_email = LOWER($1) AND rater_email = LOWER($2)
		), 0)`,
		targetEmail, raterEmail,
	).Scan(&score)
	return score, err
}
