package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"skillswap-backend/internal/lessons"
	"skillswap-backend/internal/middleware"
	"skillswap-backend/internal/models"
	"skillswap-backend/internal/repository"
)

type UserHandler struct {
	userRepo *repository.UserRepo
}

func NewUserHandler(userRepo *repository.UserRepo) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Name cannot be empty", r))
			return
		}
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.PhotoURL != nil {
		user.PhotoURL = req.PhotoURL
	}
	if req.Telegram != nil {
		user.Telegram = req.Telegram
	}
	if req.Instagram != nil {
		user.Instagram = req.Instagram
	}
	if req.Offers != nil {
		user.Offers = []string(*req.Offers)
	}
	if req.Wants != nil {
		user.Wants = []string(*req.Wants)
	}

	if err := h.userRepo.UpdateProfile(r.Context(), user); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update profile", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if len(req.NewPassword) < 8 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Password must be at least 8 characters", r))
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Current password is incorrect", r))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 12)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to hash password", r))
		return
	}

	if err := h.userRepo.UpdatePassword(r.Context(), userID, string(hash)); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to change password", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed"})
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.userRepo.Delete(r.Context(), userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete account", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

// Plans lists the subscription tiers and their daily lesson caps.
func (h *UserHandler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"plans": []models.PlanInfo{
			{Name: lessons.PlanBasic, DailyCap: lessons.CapForPlan(lessons.PlanBasic)},
			{Name: lessons.PlanPlus, DailyCap: lessons.CapForPlan(lessons.PlanPlus)},
			{Name: lessons.PlanPro, DailyCap: lessons.CapForPlan(lessons.PlanPro), Unlimited: true},
		},
	})
}

// ChangePlan switches the caller's tier. There is no billing behind this;
// the tier only sets the daily lesson cap.
func (h *UserHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.ChangePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	switch req.Plan {
	case lessons.PlanBasic, lessons.PlanPlus, lessons.PlanPro:
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Plan must be basic, plus, or pro", r))
		return
	}

	if err := h.userRepo.UpdatePlan(r.Context(), userID, req.Plan); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to change plan", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Plan updated", "plan": req.Plan})
}

// AdminDeleteUser removes any account by email. Admin only.
func (h *UserHandler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, err := h.userRepo.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil || !caller.IsAdmin {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Admin access required", r))
		return
	}

	email := r.URL.Query().Get("email")
	if email == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "email query parameter is required", r))
		return
	}

	if _, err := h.userRepo.GetByEmail(r.Context(), email); err != nil {
		if err == pgx.ErrNoRows {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to look up user", r))
		return
	}

	if err := h.userRepo.DeleteByEmail(r.Context(), email); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete user", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}
