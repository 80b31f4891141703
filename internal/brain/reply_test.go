package brain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseReplyPlainJSON(t *testing.T) {
	reply, err := ParseReply(`{"ai_reply": "Nice to meet you!", "grammar_correction": null}`)
	if err != nil {
		t.Fatalf("ParseReply() error = %v", err)
	}
	if reply.Text != "Nice to meet you!" {
		t.Fatalf("Text = %q", reply.Text)
	}
	if reply.Correction != "" {
		t.Fatalf("Correction = %q, want empty", reply.Correction)
	}
}

func TestParseReplyWithCorrection(t *testing.T) {
	reply, err := ParseReply(`{"ai_reply": "Good question!", "grammar_correction": "Say 'I went', not 'I goed'."}`)
	if err != nil {
		t.Fatalf("ParseReply() error = %v", err)
	}
	if reply.Correction != "Say 'I went', not 'I goed'." {
		t.Fatalf("Correction = %q", reply.Correction)
	}
}

func TestParseReplyStripsJSONFence(t *testing.T) {
	raw := "```json\n{\"ai_reply\": \"Hello!\"}\n```"
	reply, err := ParseReply(raw)
	if err != nil {
		t.Fatalf("ParseReply() error = %v", err)
	}
	if reply.Text != "Hello!" {
		t.Fatalf("Text = %q", reply.Text)
	}
}

func TestParseReplyStripsBareFence(t *testing.T) {
	raw := "Sure, here you go:\n```\n{\"ai_reply\": \"Hi there\"}\n```"
	reply, err := ParseReply(raw)
	if err != nil {
		t.Fatalf("ParseReply() error = %v", err)
	}
	if reply.Text != "Hi there" {
		t.Fatalf("Text = %q", reply.Text)
	}
}

func TestParseReplyRejectsNonJSON(t *testing.T) {
	_, err := ParseReply("I am not JSON at all")
	if !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("error = %v, want ErrMalformedReply", err)
	}
}

func TestParseReplyRejectsMissingReplyField(t *testing.T) {
	_, err := ParseReply(`{"grammar_correction": "only feedback"}`)
	if !errors.Is(err, ErrMalformedReply) {
		t.Fatalf("error = %v, want ErrMalformedReply", err)
	}
}

func TestParseReplyRejectsEmpty(t *testing.T) {
	_, err := ParseReply("   \n ")
	if !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("error = %v, want ErrEmptyReply", err)
	}
}

func TestBuildPromptIncludesHistoryAndContract(t *testing.T) {
	prompt := BuildPrompt(TurnRequest{
		SystemPrompt: "You are a partner.",
		UserText:     "How are you?",
		Context:      []string{"USER: hi", "MODEL: hello"},
	})

	for _, want := range []string{"You are a partner.", "Conversation History:", "USER: hi", "MODEL: hello", "USER: How are you?", "Respond ONLY in valid JSON format."} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptWithoutHistory(t *testing.T) {
	prompt := BuildPrompt(TurnRequest{SystemPrompt: "p", UserText: "hello"})
	if strings.Contains(prompt, "Conversation History:") {
		t.Fatalf("prompt should omit the history section when empty:\n%s", prompt)
	}
}
