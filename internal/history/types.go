package history

import (
	"context"
	"time"
)

// Roles used in the transcript. "model" matches the wire role the brain
// providers expect for assistant turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is a single transcript entry for a session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store keeps the per-session transcript the brain receives as context.
// This is the reply-side conversation memory, keyed by session identifier.
type Store interface {
	Append(ctx context.Context, msg Message) error
	Recent(ctx context.Context, sessionID string, limit int) ([]Message, error)
	Close() error
}
