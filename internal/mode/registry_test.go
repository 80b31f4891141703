package mode

import (
	"errors"
	"strings"
	"testing"
)

func TestGetKnownModes(t *testing.T) {
	for _, id := range IDs() {
		m, err := Get(id)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", id, err)
		}
		if m.ID != id {
			t.Fatalf("Get(%q).ID = %q", id, m.ID)
		}
		if m.Title == "" || m.Welcome == "" || m.SystemPrompt == "" {
			t.Fatalf("mode %q has incomplete metadata: %+v", id, m)
		}
		if !strings.Contains(m.SystemPrompt, `"ai_reply"`) {
			t.Fatalf("mode %q prompt is missing the JSON reply contract", id)
		}
	}
}

func TestGetUnknownMode(t *testing.T) {
	_, err := Get("podcast")
	if !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("Get(podcast) error = %v, want ErrUnknownMode", err)
	}
}

func TestResolveFallsBackToChat(t *testing.T) {
	cases := []string{"", "   ", "podcast", "CHAT?", "debate"}
	for _, raw := range cases {
		if got := Resolve(raw); got.ID != Chat {
			t.Fatalf("Resolve(%q).ID = %q, want %q", raw, got.ID, Chat)
		}
	}
}

func TestResolveNormalizes(t *testing.T) {
	if got := Resolve("  Interview "); got.ID != Interview {
		t.Fatalf("Resolve(Interview).ID = %q, want %q", got.ID, Interview)
	}
	if got := Resolve("TUTOR"); got.ID != Tutor {
		t.Fatalf("Resolve(TUTOR).ID = %q, want %q", got.ID, Tutor)
	}
}
