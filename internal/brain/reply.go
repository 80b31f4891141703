package brain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseReply decodes the JSON reply contract shared by all persona prompts.
// Models without a native JSON output mode tend to wrap the object in
// markdown code fences, so those are stripped first.
func ParseReply(raw string) (TurnReply, error) {
	text := stripCodeFences(strings.TrimSpace(raw))
	if text == "" {
		return TurnReply{}, ErrEmptyReply
	}

	var reply TurnReply
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		return TurnReply{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	if strings.TrimSpace(reply.Text) == "" {
		return TurnReply{}, ErrMalformedReply
	}
	return reply, nil
}

func stripCodeFences(text string) string {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+len("```"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}
	return text
}

// BuildPrompt assembles the full prompt: persona instructions, the recent
// transcript, and the new user message.
func BuildPrompt(req TurnRequest) string {
	var b strings.Builder
	b.WriteString(req.SystemPrompt)
	if len(req.Context) > 0 {
		b.WriteString("\n\nConversation History:\n")
		b.WriteString(strings.Join(req.Context, "\n"))
	}
	b.WriteString("\n\nUSER: ")
	b.WriteString(req.UserText)
	b.WriteString("\n\nRespond ONLY in valid JSON format.")
	return b.String()
}
