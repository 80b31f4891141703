package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TurnRequest is the normalized request sent to the AI collaborator for one
// conversational turn.
type TurnRequest struct {
	SessionID    string   `json:"session_id"`
	Mode         string   `json:"mode"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	UserText     string   `json:"user_message"`
	Context      []string `json:"context,omitempty"`
}

// TurnReply is the collaborator's answer. Text is required; Correction is
// only meaningful for tutor-mode turns.
type TurnReply struct {
	Text       string `json:"ai_reply"`
	Correction string `json:"grammar_correction,omitempty"`
}

var (
	ErrEmptyReply     = errors.New("brain returned an empty reply")
	ErrMalformedReply = errors.New("brain reply is missing the ai_reply field")
)

// Adapter produces a single reply per turn. Implementations never retry;
// the pipeline substitutes a fallback reply on any error.
type Adapter interface {
	Reply(ctx context.Context, req TurnRequest) (TurnReply, error)
}

// Config controls adapter construction.
type Config struct {
	Mode    string
	APIKey  string
	Model   string
	HTTPURL string
}

// NewAdapter builds the configured adapter. In auto mode it prefers the
// Gemini adapter when an API key is present, then a configured HTTP
// endpoint, and finally the deterministic mock.
func NewAdapter(ctx context.Context, cfg Config) (Adapter, error) {
	adapterMode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if adapterMode == "" {
		adapterMode = "auto"
	}

	switch adapterMode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewGenAIChain(ctx, cfg.APIKey, cfg.Model)
		}
		if strings.TrimSpace(cfg.HTTPURL) != "" {
			return NewHTTPAdapter(cfg.HTTPURL), nil
		}
		return NewMockAdapter(), nil
	case "genai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("an API key is required for genai mode")
		}
		return NewGenAIChain(ctx, cfg.APIKey, cfg.Model)
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("a brain HTTP url is required for http mode")
		}
		return NewHTTPAdapter(cfg.HTTPURL), nil
	case "mock":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported brain adapter mode %q", cfg.Mode)
	}
}
