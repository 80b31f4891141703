package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/antoniostano/parla/internal/brain"
	"github.com/antoniostano/parla/internal/history"
	"github.com/antoniostano/parla/internal/mode"
	"github.com/antoniostano/parla/internal/observability"
	"github.com/antoniostano/parla/internal/session"
)

// FallbackReply is the fixed, locally generated reply substituted when the
// brain cannot be reached or answers with garbage. It is never retried and
// never surfaced as a hard error.
const FallbackReply = "I'm having trouble connecting to my brain right now."

// Result describes the outcome of one submission attempt. Accepted is false
// when the in-flight guard refused the turn; in that case nothing else was
// done (no brain call, no history write, no counter change).
type Result struct {
	Accepted   bool
	SessionID  string
	Mode       mode.ID
	Reply      string
	Correction string
	Fallback   bool
	Origin     session.Origin
}

// Pipeline runs one conversational turn end to end: guard acquisition,
// history context, a single brain call, and guaranteed guard release.
type Pipeline struct {
	sessions     *session.Manager
	adapter      brain.Adapter
	store        history.Store
	metrics      *observability.Metrics
	contextLimit int
}

func New(sessions *session.Manager, adapter brain.Adapter, store history.Store, metrics *observability.Metrics, contextLimit int) *Pipeline {
	if contextLimit <= 0 {
		contextLimit = history.DefaultMaxMessages
	}
	return &Pipeline{
		sessions:     sessions,
		adapter:      adapter,
		store:        store,
		metrics:      metrics,
		contextLimit: contextLimit,
	}
}

// Submit runs one turn for the session. Exactly one of real reply or
// fallback reply is produced per accepted submission; the guard is released
// on every exit path.
func (p *Pipeline) Submit(ctx context.Context, sessionID, userText string, origin session.Origin) (Result, error) {
	sess, err := p.sessions.Get(sessionID)
	if err != nil {
		return Result{}, fmt.Errorf("submit turn: %w", err)
	}

	text := strings.TrimSpace(userText)
	if !p.sessions.BeginSubmission(sessionID, text) {
		return Result{Accepted: false, SessionID: sessionID, Mode: sess.Mode, Origin: origin}, nil
	}
	defer p.sessions.EndSubmission(sessionID)

	start := time.Now()
	md := mode.Resolve(string(sess.Mode))

	// Context is captured before the new user message is appended so the
	// prompt carries the message exactly once.
	contextLines := p.contextLines(ctx, sessionID)
	p.appendBestEffort(ctx, history.Message{
		SessionID: sessionID,
		Role:      history.RoleUser,
		Content:   text,
	})

	reply, brainErr := p.adapter.Reply(ctx, brain.TurnRequest{
		SessionID:    sessionID,
		Mode:         string(md.ID),
		SystemPrompt: md.SystemPrompt,
		UserText:     text,
		Context:      contextLines,
	})

	res := Result{
		Accepted:  true,
		SessionID: sessionID,
		Mode:      md.ID,
		Origin:    origin,
	}

	outcome := "ok"
	if brainErr != nil || strings.TrimSpace(reply.Text) == "" {
		if brainErr != nil {
			log.Printf("brain reply failed for %s: %v", sessionID, brainErr)
		} else {
			log.Printf("brain reply empty for %s", sessionID)
		}
		p.metrics.BrainErrors.WithLabelValues(string(md.ID)).Inc()
		res.Reply = FallbackReply
		res.Fallback = true
		outcome = "fallback"
	} else {
		res.Reply = strings.TrimSpace(reply.Text)
		// The correction field is only meaningful in tutor mode; other
		// modes drop it even when the brain sends one.
		if md.ID == mode.Tutor {
			res.Correction = strings.TrimSpace(reply.Correction)
		}
	}

	if md.ID == mode.Interview {
		p.sessions.AdvanceInterviewStep(sessionID)
	}

	p.appendBestEffort(ctx, history.Message{
		SessionID: sessionID,
		Role:      history.RoleModel,
		Content:   res.Reply,
	})

	p.metrics.Turns.WithLabelValues(string(md.ID), outcome).Inc()
	p.metrics.ObserveReplyLatency(time.Since(start))

	return res, nil
}

func (p *Pipeline) contextLines(ctx context.Context, sessionID string) []string {
	if p.store == nil {
		return nil
	}
	recent, err := p.store.Recent(ctx, sessionID, p.contextLimit)
	if err != nil {
		log.Printf("history context unavailable for %s: %v", sessionID, err)
		return nil
	}
	lines := make([]string, 0, len(recent))
	for _, m := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(m.Role), m.Content))
	}
	return lines
}

func (p *Pipeline) appendBestEffort(ctx context.Context, msg history.Message) {
	if p.store == nil {
		return
	}
	if err := p.store.Append(ctx, msg); err != nil {
		log.Printf("history append failed for %s: %v", msg.SessionID, err)
	}
}
