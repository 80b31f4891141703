package history

import (
	"context"
	"fmt"
	"testing"
)

func TestInMemoryStoreCapsTranscript(t *testing.T) {
	s := NewInMemoryStore(4)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		err := s.Append(ctx, Message{
			SessionID: "parla-chat",
			Role:      RoleUser,
			Content:   fmt.Sprintf("message %d", i),
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := s.Recent(ctx, "parla-chat", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len(Recent()) = %d, want 4", len(got))
	}
	if got[0].Content != "message 6" || got[3].Content != "message 9" {
		t.Fatalf("unexpected window: first=%q last=%q", got[0].Content, got[3].Content)
	}
}

func TestInMemoryStoreRecentLimitAndOrder(t *testing.T) {
	s := NewInMemoryStore(0)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleModel
		}
		if err := s.Append(ctx, Message{SessionID: "parla-tutor", Role: role, Content: fmt.Sprintf("m%d", i)}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := s.Recent(ctx, "parla-tutor", 3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(Recent(3)) = %d, want 3", len(got))
	}
	if got[0].Content != "m3" || got[2].Content != "m5" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestInMemoryStoreIsolatesSessions(t *testing.T) {
	s := NewInMemoryStore(0)
	ctx := context.Background()

	if err := s.Append(ctx, Message{SessionID: "parla-chat", Role: RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := s.Recent(ctx, "parla-interview", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Recent() for untouched session = %+v, want nil", got)
	}
}
