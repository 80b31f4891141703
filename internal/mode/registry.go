package mode

import (
	"errors"
	"fmt"
	"strings"
)

// ID names one of the practice modes.
type ID string

const (
	Chat      ID = "chat"
	Tutor     ID = "tutor"
	Interview ID = "interview"
)

var ErrUnknownMode = errors.New("unknown mode")

// Mode is the static metadata and persona prompt for one practice mode.
// The registry is fixed at compile time; modes are never added or removed
// at runtime.
type Mode struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	Icon         string `json:"icon"`
	Badge        string `json:"badge"`
	Welcome      string `json:"welcome_message"`
	SystemPrompt string `json:"-"`
}

var registry = map[ID]Mode{
	Chat: {
		ID:           Chat,
		Title:        "Free Chat",
		Icon:         "💬",
		Badge:        "Casual",
		Welcome:      "Hey there! I'm your English conversation partner. What would you like to talk about today?",
		SystemPrompt: chatPrompt,
	},
	Tutor: {
		ID:           Tutor,
		Title:        "Grammar Tutor",
		Icon:         "📚",
		Badge:        "Learning",
		Welcome:      "Hello! I'm your English tutor. Chat with me about anything and I'll gently point out grammar slips as we go.",
		SystemPrompt: tutorPrompt,
	},
	Interview: {
		ID:           Interview,
		Title:        "Mock Interview",
		Icon:         "💼",
		Badge:        "Professional",
		Welcome:      "Welcome to your mock interview. To get started, what position are you preparing for?",
		SystemPrompt: interviewPrompt,
	},
}

// Get returns the metadata for a known mode id.
func Get(id ID) (Mode, error) {
	m, ok := registry[id]
	if !ok {
		return Mode{}, fmt.Errorf("%w: %q", ErrUnknownMode, id)
	}
	return m, nil
}

// Resolve normalizes a raw mode value and falls back to chat for anything
// missing or unrecognized. It never fails.
func Resolve(raw string) Mode {
	id := ID(strings.ToLower(strings.TrimSpace(raw)))
	if m, ok := registry[id]; ok {
		return m
	}
	return registry[Chat]
}

// Default returns the chat mode.
func Default() Mode {
	return registry[Chat]
}

// IDs lists the registered mode ids in a stable order.
func IDs() []ID {
	return []ID{Chat, Tutor, Interview}
}
