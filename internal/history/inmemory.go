package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxMessages keeps the last 10 turns (user + model) per session.
const DefaultMaxMessages = 20

// InMemoryStore is the in-process transcript store for local/dev use. Each
// session's transcript is capped, oldest messages dropped first.
type InMemoryStore struct {
	mu          sync.RWMutex
	messages    map[string][]Message
	maxMessages int
}

func NewInMemoryStore(maxMessages int) *InMemoryStore {
	if maxMessages <= 0 {
		maxMessages = DefaultMaxMessages
	}
	return &InMemoryStore{
		messages:    make(map[string][]Message),
		maxMessages: maxMessages,
	}
}

func (s *InMemoryStore) Append(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	arr := append(s.messages[msg.SessionID], msg)
	if len(arr) > s.maxMessages {
		arr = arr[len(arr)-s.maxMessages:]
	}
	s.messages[msg.SessionID] = arr
	return nil
}

func (s *InMemoryStore) Recent(_ context.Context, sessionID string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.messages[sessionID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]Message, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
