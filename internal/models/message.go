package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one chat message between two users. Messages sharing a
// thread_id (the pair key of the two participants) form a conversation.
type Message struct {
	ID       uuid.UUID `json:"id"`
	ThreadID string    `json:"thread_id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Text     string    `json:"text"`
	Read     bool      `json:"read"`
	SentAt   time.Time `json:"sent_at"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

// ThreadSummary is one row of the caller's conversation list.
type ThreadSummary struct {
	With        string     `json:"with"`
	LastText    string     `json:"last_text"`
	LastSentAt  *time.Time `json:"last_sent_at"`
	UnreadCount int        `json:"unread_count"`
}
