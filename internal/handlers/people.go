package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"skillswap-backend/internal/middleware"
	"skillswap-backend/internal/models"
	"skillswap-backend/internal/repository"
)

// PeopleHandler serves the browse/search surface: everyone else's public
// profile, plus ratings.
type PeopleHandler struct {
	userRepo   *repository.UserRepo
	ratingRepo *repository.RatingRepo
}

func NewPeopleHandler(userRepo *repository.UserRepo, ratingRepo *repository.RatingRepo) *PeopleHandler {
	return &PeopleHandler{userRepo: userRepo, ratingRepo: ratingRepo}
}

// List returns public profiles of all other users, optionally filtered by
// ?q= against names and skills.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())
	q := r.URL.Query().Get("q")

	profiles, err := h.userRepo.List(r.Context(), me, q)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list users", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"users": profiles})
}

func (h *PeopleHandler) Get(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())
	email := chi.URLParam(r, "email")

	user, err := h.userRepo.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load user", r))
		return
	}

	rating, err := h.ratingRepo.AverageFor(r.Context(), user.Email)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load rating", r))
		return
	}
	myScore, err := h.ratingRepo.ScoreBy(r.Context(), user.Email, me)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load rating", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": models.Profile{
			Email:     user.Email,
			Name:      user.Name,
			Bio:       user.Bio,
			PhotoURL:  user.PhotoURL,
			Telegram:  user.Telegram,
			Instagram: user.Instagram,
			Offers:    user.Offers,
			Wants:     user.Wants,
			Plan:      user.Plan,
			Rating:    rating,
		},
		"my_score": myScore,
	})
}

// Rate records the caller's 1-5 score for another user, replacing any
// earlier score. Rating yourself is rejected.
func (h *PeopleHandler) Rate(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())
	target := chi.URLParam(r, "email")

	var req models.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Score < 1 || req.Score > 5 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Score must be between 1 and 5", r))
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), target)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load user", r))
		return
	}

	if user.Email == me {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "You cannot rate yourself", r))
		return
	}

	if err := h.ratingRepo.Upsert(r.Context(), user.Email, me, req.Score); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save rating", r))
		return
	}

	rating, _ := h.ratingRepo.AverageFor(r.Context(), user.Email)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Rating saved",
		"rating":  rating,
	})
}
