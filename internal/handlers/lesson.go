package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"skillswap-backend/internal/lessons"
	"skillswap-backend/internal/middleware"
	"skillswap-backend/internal/models"
	"skillswap-backend/internal/repository"
	"skillswap-backend/internal/services"
)

// LessonHandler is the HTTP face of the lesson credit & session engine.
// It decides when the video-room link is surfaced: the link itself is a
// pure function of the pair, but only an active session exposes it.
type LessonHandler struct {
	engine   *lessons.Engine
	userRepo *repository.UserRepo
	redis    *redis.Client
}

func NewLessonHandler(engine *lessons.Engine, userRepo *repository.UserRepo, redisClient *redis.Client) *LessonHandler {
	return &LessonHandler{engine: engine, userRepo: userRepo, redis: redisClient}
}

// Remaining reports the caller's lessons left today along with their cap.
func (h *LessonHandler) Remaining(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())

	remaining, err := h.engine.Remaining(r.Context(), me)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORE_UNAVAILABLE", "Failed to read lesson credits", r))
		return
	}

	plan, err := h.userRepo.PlanFor(r.Context(), me)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORE_UNAVAILABLE", "Failed to resolve plan", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"remaining": remaining,
		"cap":       lessons.CapForPlan(plan),
		"plan":      plan,
	})
}

// Status describes the lesson state between the caller and another user:
// the current session if any, the countdown, whether a new lesson could
// start, and — only while a session is active — the video room URL.
func (h *LessonHandler) Status(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())
	with := strings.ToLower(chi.URLParam(r, "email"))

	session, err := h.engine.ActiveSession(r.Context(), me, with)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORE_UNAVAILABLE", "Failed to read lesson session", r))
		return
	}

	left, err := h.engine.RemainingTime(r.Context(), me, with)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORE_UNAVAILABLE", "Failed to read lesson session", r))
		return
	}

	canStart, err := h.engine.CanStart(r.Context(), me, with)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORE_UNAVAILABLE", "Failed to read lesson credits", r))
		return
	}

	resp := map[string]interface{}{
		"session":           session,
		"active":            session != nil && session.Active,
		"remaining_seconds": int(left.Seconds()),
		"can_start":         canStart,
	}
	if session != nil && session.Active {
		resp["room_url"] = lessons.RoomURL(me, with)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *LessonHandler) CanStart(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())
	with := chi.URLParam(r, "email")

	ok, err := h.engine.CanStart(r.Context(), me, with)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORE_UNAVAILABLE", "Failed to read lesson credits", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"can_start": ok})
}

// Start spends one daily credit of each participant and opens the
// one-hour session. A no-credits refusal is a structured 200-level
// response, not an error: the UI shows it inline.
func (h *LessonHandler) Start(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())
	with := strings.ToLower(chi.URLParam(r, "email"))

	if with == me {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "You cannot start a lesson with yourself", r))
		return
	}

	if _, err := h.userRepo.GetByEmail(r.Context(), with); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "User not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load user", r))
		return
	}

	result, err := h.engine.StartLesson(r.Context(), me, with)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResp("STORE_UNAVAILABLE", "Failed to start lesson", r))
		return
	}

	if !result.OK {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"ok":     false,
			"reason": result.Reason,
		})
		return
	}

	h.notifyStarted(r, result.Session)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"ok":       true,
		"session":  result.Session,
		"room_url": lessons.RoomURL(me, with),
	})
}

// notifyStarted pushes the lesson-started event to both participants'
// websocket channels and queues their notification emails. Best effort:
// the session is already committed.
func (h *LessonHandler) notifyStarted(r *http.Request, session *lessons.Session) {
	payload, err := json.Marshal(models.WSMessage{Type: "lesson-started", Payload: session})
	if err != nil {
		return
	}
	h.redis.Publish(r.Context(), "user_updates:"+session.A, payload)
	h.redis.Publish(r.Context(), "user_updates:"+session.B, payload)

	for _, pair := range [][2]string{{session.A, session.B}, {session.B, session.A}} {
		job, err := json.Marshal(models.EmailJob{Type: "lesson-started", To: pair[0], With: pair[1]})
		if err != nil {
			continue
		}
		h.redis.RPush(r.Context(), services.EmailQueue, job)
	}
}
