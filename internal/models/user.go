package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Bio          *string    `json:"bio"`
	PhotoURL     *string    `json:"photo_url"`
	Telegram     *string    `json:"telegram"`
	Instagram    *string    `json:"instagram"`
	Offers       []string   `json:"offers"` // skills this user can teach
	Wants        []string   `json:"wants"`  // skills this user wants to learn
	Plan         string     `json:"plan"`   // "basic" | "plus" | "pro"
	IsAdmin      bool       `json:"is_admin"`
	IsVerified   bool       `json:"is_verified"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// Profile is the public view of a user shown on browse/search cards and
// in chat headers. No auth fields, average rating precomputed.
type Profile struct {
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	Bio       *string  `json:"bio"`
	PhotoURL  *string  `json:"photo_url"`
	Telegram  *string  `json:"telegram"`
	Instagram *string  `json:"instagram"`
	Offers    []string `json:"offers"`
	Wants     []string `json:"wants"`
	Plan      string   `json:"plan"`
	Rating    float64  `json:"rating"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest carries the editable profile fields. Offers and
// wants accept either a JSON array or a single comma-separated string;
// both normalize to a string slice.
type UpdateProfileRequest struct {
	Name      *string    `json:"name"`
	Bio       *string    `json:"bio"`
	PhotoURL  *string    `json:"photo_url"`
	Telegram  *string    `json:"telegram"`
	Instagram *string    `json:"instagram"`
	Offers    *SkillList `json:"offers"`
	Wants     *SkillList `json:"wants"`
}

type RateRequest struct {
	Score int `json:"score"`
}

type ChangePlanRequest struct {
	Plan string `json:"plan"`
}

// PlanInfo describes one subscription tier for the pricing surface.
type PlanInfo struct {
	Name      string `json:"name"`
	DailyCap  int    `json:"daily_cap"`
	Unlimited bool   `json:"unlimited"`
}
