package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillswap-backend/internal/lessons"
	"skillswap-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, password_hash, name, bio, photo_url, telegram, instagram,
	offers, wants, plan, is_admin, is_verified, is_active, created_at, last_login_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Bio,
		&user.PhotoURL, &user.Telegram, &user.Instagram, &user.Offers, &user.Wants,
		&user.Plan, &user.IsAdmin, &user.IsVerified, &user.IsActive,
		&user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, offers, wants, plan, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	user.ID = uuid.New()
	user.Email = strings.ToLower(user.Email)
	user.Plan = lessons.PlanBasic
	user.IsActive = true
	if user.Offers == nil {
		user.Offers = []string{}
	}
	if user.Wants == nil {
		user.Wants = []string{}
	}

	return r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Offers, user.Wants,
		user.Plan, user.IsVerified,
	).Scan(&user.CreatedAt)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// List returns public profiles of all active users except the caller,
// average rating included, most recently joined first. An empty search
// term matches everyone; otherwise the term matches name or any offered
// or wanted skill, case-insensitively.
func (r *UserRepo) List(ctx context.Context, exceptEmail, search string) ([]models.Profile, error) {
	query := `
		SELECT u.email, u.name, u.bio, u.photo_url, u.telegram, u.instagram,
			u.offers, u.wants, u.plan,
			COALESCE((SELECT ROUND(AVG(score)::numeric, 1) FROM ratings WHERE target_email = u.email), 0)
		FROM users u
		WHERE u.is_active = TRUE
		  AND u.email <> LOWER($1)
		  AND ($2 = '' OR u.name ILIKE '%' || $2 || '%'
			OR EXISTS (SELECT 1 FROM unnest(u.offers) s WHERE s ILIKE '%' || $2 || '%')
			OR EXISTS (SELECT 1 FROM unnest(u.wants) s WHERE s ILIKE '%' || $2 || '%'))
		ORDER BY u.created_at DESC`

	rows, err := r.pool.Query(ctx, query, exceptEmail, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(
			&p.Email, &p.Name, &p.Bio, &p.PhotoURL, &p.Telegram, &p.Instagram,
			&p.Offers, &p.Wants, &p.Plan, &p.Rating,
		); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, bio = $2, photo_url = $3, telegram = $4, instagram = $5,
			offers = $6, wants = $7
		WHERE id = $8`,
		user.Name, user.Bio, user.PhotoURL, user.Telegram, user.Instagram,
		user.Offers, user.Wants, user.ID,
	)
	return err
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, userID)
	return err
}

func (r *UserRepo) UpdatePlan(ctx context.Context, userID uuid.UUID, plan string) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET plan = $1 WHERE id = $2", plan, userID)
	return err
}

func (r *UserRepo) VerifyEmail(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET is_verified = TRUE WHERE id = $1", userID)
	return err
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", time.Now(), userID)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	return err
}

func (r *UserRepo) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM users WHERE email = LOWER($1)", email)
	return err
}

// PlanFor implements lessons.PlanResolver. Unknown users get the basic
// plan rather than an error — the ledger treats them as capped at one.
func (r *UserRepo) PlanFor(ctx context.Context, email string) (string, error) {
	var plan string
	err := r.pool.QueryRow(ctx, "SELECT plan FROM users WHERE email = LOWER($1)", email).Scan(&plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return lessons.PlanBasic, nil
	}
	if err != nil {
		return "", err
	}
	if plan == "" {
		return lessons.PlanBasic, nil
	}
	return plan, nil
}
