package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/antoniostano/parla/internal/mode"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Origin records how the user produced a turn's text.
type Origin string

const (
	OriginTyped       Origin = "typed"
	OriginTranscribed Origin = "transcribed"
)

var ErrNotFound = errors.New("session not found")

// Session is the mutable runtime state for one practice conversation.
// AwaitingReply is the sole concurrency guard: at most one turn may be in
// flight per session at any time.
type Session struct {
	ID             string    `json:"session_id"`
	Mode           mode.ID   `json:"mode"`
	Status         Status    `json:"status"`
	TurnCount      int       `json:"turn_count"`
	AwaitingReply  bool      `json:"awaiting_reply"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// DeriveID builds the stable session identifier for a mode. The identifier
// is the collaborator's key for reply-side context continuity.
func DeriveID(m mode.ID) string {
	return "parla-" + string(m)
}

type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	inactivityTimeout time.Duration
	onExpire          func(*Session)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 2 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		inactivityTimeout: inactivityTimeout,
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Initialize resolves the requested mode (unknown or missing values fall
// back to chat) and creates or revives the session keyed by the derived
// identifier. The returned mode metadata carries the welcome message, which
// is rendered locally as the first AI turn without contacting the brain.
func (m *Manager) Initialize(requestedMode string) (*Session, mode.Mode) {
	md := mode.Resolve(requestedMode)
	return m.Ensure(DeriveID(md.ID), md.ID), md
}

// Ensure returns the active session with the given id, creating or reviving
// it when absent or ended. Explicit ids let clients continue a conversation
// the collaborator already has context for.
func (m *Manager) Ensure(id string, modeID mode.ID) *Session {
	now := time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status != StatusActive {
		s = &Session{
			ID:             id,
			Mode:           modeID,
			Status:         StatusActive,
			StartedAt:      now,
			LastActivityAt: now,
		}
		m.sessions[id] = s
	}
	return clone(s)
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// BeginSubmission acquires the in-flight guard. It refuses when the session
// is unknown or ended, when a turn is already awaiting its reply, or when
// the input trims to empty. On success the AwaitingReply flag is set and the
// caller owns the turn until EndSubmission.
func (m *Manager) BeginSubmission(id, input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status != StatusActive {
		return false
	}
	if s.AwaitingReply {
		return false
	}
	s.AwaitingReply = true
	s.LastActivityAt = time.Now().UTC()
	return true
}

// EndSubmission releases the in-flight guard. It must run on every exit
// path of an accepted submission, success or failure, and is idempotent.
func (m *Manager) EndSubmission(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return
	}
	s.AwaitingReply = false
	s.LastActivityAt = time.Now().UTC()
}

// AdvanceInterviewStep increments the turn counter. Only interview mode
// reads it; the prompt itself is static per mode.
func (m *Manager) AdvanceInterviewStep(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return
	}
	s.TurnCount++
}

func (m *Manager) End(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.Status = StatusEnded
	s.AwaitingReply = false
	s.LastActivityAt = time.Now().UTC()
	return clone(s), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for _, s := range m.sessions {
		if s.Status != StatusActive {
			continue
		}
		if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		s.Status = StatusEnded
		s.AwaitingReply = false
		s.LastActivityAt = now
		expired = append(expired, clone(s))
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	return &c
}
