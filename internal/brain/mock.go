package brain

import (
	"context"
	"fmt"
	"strings"
)

// MockAdapter provides deterministic local replies when no real brain is
// configured.
type MockAdapter struct{}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

func (a *MockAdapter) Reply(ctx context.Context, req TurnRequest) (TurnReply, error) {
	select {
	case <-ctx.Done():
		return TurnReply{}, ctx.Err()
	default:
	}

	text := strings.TrimSpace(req.UserText)
	if text == "" {
		text = "..."
	}

	reply := TurnReply{
		Text: fmt.Sprintf("[%s MODE] I heard you say: '%s'.", strings.ToUpper(req.Mode), text),
	}
	if strings.EqualFold(req.Mode, "tutor") {
		reply.Correction = "Mock feedback: good effort!"
	}
	return reply, nil
}
