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
)

// ChatHandler serves per-pair message threads. Realtime delivery rides the
// same redis pub/sub channels the websocket hub subscribes to.
type ChatHandler struct {
	messageRepo *repository.MessageRepo
	userRepo    *repository.UserRepo
	redis       *redis.Client
}

func NewChatHandler(messageRepo *repository.MessageRepo, userRepo *repository.UserRepo, redisClient *redis.Client) *ChatHandler {
	return &ChatHandler{messageRepo: messageRepo, userRepo: userRepo, redis: redisClient}
}

// Threads lists the caller's conversations, newest first.
func (h *ChatHandler) Threads(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())

	threads, err := h.messageRepo.ListThreads(r.Context(), me)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list threads", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"threads": threads})
}

// Messages returns the full conversation with one user, oldest first.
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())
	with := chi.URLParam(r, "email")

	msgs, err := h.messageRepo.ListThread(r.Context(), lessons.PairKey(me, with))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load messages", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs})
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())
	with := strings.ToLower(chi.URLParam(r, "email"))

	if with == me {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "You cannot message yourself", r))
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message text is required", r))
		return
	}

	if _, err := h.userRepo.GetByEmail(r.Context(), with); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Recipient not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load recipient", r))
		return
	}

	msg := &models.Message{
		ThreadID: lessons.PairKey(me, with),
		From:     me,
		To:       with,
		Text:     text,
	}

	if err := h.messageRepo.Create(r.Context(), msg); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to send message", r))
		return
	}

	h.publish(r, msg)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": msg})
}

// MarkRead flags everything the other user sent in this thread as read.
func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())
	with := chi.URLParam(r, "email")

	if err := h.messageRepo.MarkRead(r.Context(), lessons.PairKey(me, with), me); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to mark messages read", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Marked read"})
}

func (h *ChatHandler) Unread(w http.ResponseWriter, r *http.Request) {
	me := middleware.GetUserEmail(r.Context())

	count, err := h.messageRepo.UnreadCount(r.Context(), me)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to count unread messages", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// publish fans the new message out to both participants' channels. Losing
// an event only degrades realtime delivery; the message is already stored.
func (h *ChatHandler) publish(r *http.Request, msg *models.Message) {
	payload, err := json.Marshal(models.WSMessage{Type: "message", Payload: msg})
	if err != nil {
		return
	}
	h.redis.Publish(r.Context(), "user_updates:"+msg.From, payload)
	h.redis.Publish(r.Context(), "user_updates:"+msg.To, payload)
}
