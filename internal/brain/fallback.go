package brain

import (
	"context"
	"errors"
	"fmt"
)

// FallbackAdapter attempts a primary adapter first and falls back on error.
// Context cancellation passes through untouched so an abandoned turn is not
// answered twice.
type FallbackAdapter struct {
	primary  Adapter
	fallback Adapter
}

func NewFallbackAdapter(primary, fallback Adapter) *FallbackAdapter {
	return &FallbackAdapter{primary: primary, fallback: fallback}
}

func (a *FallbackAdapter) Reply(ctx context.Context, req TurnRequest) (TurnReply, error) {
	if a == nil || a.primary == nil {
		if a != nil && a.fallback != nil {
			return a.fallback.Reply(ctx, req)
		}
		return TurnReply{}, fmt.Errorf("fallback adapter misconfigured")
	}

	reply, err := a.primary.Reply(ctx, req)
	if err == nil {
		return reply, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return TurnReply{}, err
	}
	if a.fallback == nil {
		return TurnReply{}, err
	}

	fallbackReply, fallbackErr := a.fallback.Reply(ctx, req)
	if fallbackErr != nil {
		return TurnReply{}, fmt.Errorf("primary adapter error: %w; fallback adapter error: %v", err, fallbackErr)
	}
	return fallbackReply, nil
}
