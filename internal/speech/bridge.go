package speech

import (
	"context"
	"strings"
	"sync"
)

type InputState string

const (
	InputIdle      InputState = "idle"
	InputListening InputState = "listening"
)

// SubmitFunc receives a recognized utterance exactly as if it had been
// typed; the bridge calls it at most once per listening session.
type SubmitFunc func(ctx context.Context, transcript string)

// Bridge adapts optional host speech capabilities to the conversation core.
// The input side is a two-state machine (idle ⇄ listening); the output side
// plays at most one utterance at a time, new replies preempting the current
// one. Either provider may be nil, which disables that capability without
// affecting the text path.
type Bridge struct {
	mu          sync.Mutex
	recognizer  Recognizer
	synthesizer Synthesizer
	submit      SubmitFunc

	state      InputState
	stopListen func()
	listenGen  int

	current Playback
	voiceID string
	rate    float64
	pitch   float64
}

func NewBridge(recognizer Recognizer, synthesizer Synthesizer, submit SubmitFunc) *Bridge {
	b := &Bridge{
		recognizer:  recognizer,
		synthesizer: synthesizer,
		submit:      submit,
		state:       InputIdle,
		rate:        1.0,
		pitch:       1.0,
	}
	if synthesizer != nil {
		b.voiceID = PickVoiceID(synthesizer.Voices())
	}
	return b
}

func (b *Bridge) CanListen() bool { return b.recognizer != nil }
func (b *Bridge) CanSpeak() bool  { return b.synthesizer != nil }

func (b *Bridge) State() InputState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ToggleListening starts a listening session when idle and stops the active
// one when listening; it never stacks sessions.
func (b *Bridge) ToggleListening(ctx context.Context) (InputState, error) {
	if b.recognizer == nil {
		return InputIdle, ErrCapabilityUnavailable
	}

	b.mu.Lock()
	if b.state == InputListening {
		stop := b.stopListen
		b.state = InputIdle
		b.stopListen = nil
		b.mu.Unlock()
		if stop != nil {
			stop()
		}
		return InputIdle, nil
	}
	b.mu.Unlock()

	if err := b.startListening(ctx); err != nil {
		return InputIdle, err
	}
	return InputListening, nil
}

func (b *Bridge) startListening(ctx context.Context) error {
	events, stop, err := b.recognizer.Listen(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if b.state == InputListening {
		// Lost a race with another activation; keep the existing session.
		b.mu.Unlock()
		stop()
		return nil
	}
	b.state = InputListening
	b.stopListen = stop
	b.listenGen++
	gen := b.listenGen
	b.mu.Unlock()

	go b.consume(ctx, gen, events)
	return nil
}

// consume waits for the single terminal event of one listening session.
// A recognized utterance returns the bridge to idle and triggers exactly
// one submission; errors and closed channels return to idle silently.
func (b *Bridge) consume(ctx context.Context, gen int, events <-chan RecognitionEvent) {
	defer b.finishListening(gen)

	select {
	case <-ctx.Done():
	case ev, ok := <-events:
		if !ok {
			return
		}
		if ev.Type != RecognitionResult {
			return
		}
		transcript := strings.TrimSpace(ev.Transcript)
		if transcript == "" {
			return
		}
		b.finishListening(gen)
		if b.submit != nil {
			b.submit(ctx, transcript)
		}
	}
}

// finishListening returns the bridge to idle if the given session is still
// the active one. Stale sessions are ignored, so a stop racing a fresh
// activation cannot kill the new session.
func (b *Bridge) finishListening(gen int) {
	b.mu.Lock()
	if b.listenGen != gen || b.state != InputListening {
		b.mu.Unlock()
		return
	}
	stop := b.stopListen
	b.state = InputIdle
	b.stopListen = nil
	b.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Speak plays reply text aloud, cancelling any currently playing utterance
// first. New replies preempt, never queue.
func (b *Bridge) Speak(ctx context.Context, text string) error {
	if b.synthesizer == nil {
		return ErrCapabilityUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	b.mu.Lock()
	current := b.current
	b.mu.Unlock()
	if current != nil {
		current.Cancel()
	}

	playback, err := b.synthesizer.Speak(ctx, Utterance{
		Text:    text,
		VoiceID: b.voiceID,
		Rate:    b.rate,
		Pitch:   b.pitch,
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.current = playback
	b.mu.Unlock()
	return nil
}

// StopSpeaking cancels the current utterance, if any.
func (b *Bridge) StopSpeaking() {
	b.mu.Lock()
	current := b.current
	b.current = nil
	b.mu.Unlock()
	if current != nil {
		current.Cancel()
	}
}

// PickVoiceID prefers a female-sounding English voice, then any English
// voice, then the provider default.
func PickVoiceID(voices []Voice) string {
	for _, v := range voices {
		if v.Female && isEnglish(v.Lang) {
			return v.ID
		}
	}
	for _, v := range voices {
		if isEnglish(v.Lang) {
			return v.ID
		}
	}
	for _, v := range voices {
		if v.Default {
			return v.ID
		}
	}
	return ""
}

func isEnglish(lang string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(lang)), "en")
}
