package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"skillswap-backend/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *models.Message) error {
	msg.ID = uuid.New()

	return r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, thread_id, from_email, to_email, text)
		VALUES ($1, $2, LOWER($3), LOWER($4), $5)
		RETURNING sent_at`,
		msg.ID, msg.ThreadID, msg.From, msg.To, msg.Text,
	).Scan(&msg.SentAt)
}

// ListThread returns the full conversation for a thread, oldest first.
func (r *MessageRepo) ListThread(ctx context.Context, threadID string) ([]models.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, thread_id, from_email, to_email, text, read, sent_at
		FROM messages
		WHERE thread_id = $1
		ORDER BY sent_at ASC`,
		threadID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.From, &m.To, &m.Text, &m.Read, &m.SentAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkRead flags every unread message addressed to reader in the thread.
func (r *MessageRepo) MarkRead(ctx context.Context, threadID, readerEmail string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE messages SET read = TRUE
		WHERE thread_id = $1 AND to_email = LOWER($2) AND read = FALSE`,
		threadID, readerEmail,
	)
	return err
}

// ListThreads builds the caller's conversation list: the other
// participant, the newest message and the unread count per thread.
func (r *MessageRepo) ListThreads(ctx context.Context, email string) ([]models.ThreadSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			CASE WHEN m.from_email = LOWER($1) THEN m.to_email ELSE m.from_email END AS with_email,
			(SELECT text FROM messages last
			 WHERE last.thread_id = m.thread_id
			 ORDER BY last.sent_at DESC LIMIT 1) AS last_text,
			MAX(m.sent_at) AS last_sent_at,
			COUNT(*) FILTER (WHERE m.to_email = LOWER($1) AND m.read = FALSE) AS unread
		FROM messages m
		WHERE m.from_email = LOWER($1) OR m.to_email = LOWER($1)
		GROUP BY m.thread_id, with_email
		ORDER BY last_sent_at DESC`,
		email,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	threads := make([]models.ThreadSummary, 0)
	for rows.Next() {
		var t models.ThreadSummary
		if err := rows.Scan(&t.With, &t.LastText, &t.LastSentAt, &t.UnreadCount); err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}

// UnreadCount is the caller's total unread messages across all threads.
func (r *MessageRepo) UnreadCount(ctx context.Context, email string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE to_email = LOWER($1) AND read = FALSE`,
		email,
	).Scan(&count)
	return count, err
}
