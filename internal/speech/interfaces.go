package speech

import (
	"context"
	"errors"
)

// ErrCapabilityUnavailable signals that the host offers no provider for the
// requested capability. Callers disable the affordance and carry on with
// text-only interaction.
var ErrCapabilityUnavailable = errors.New("speech capability unavailable")

type RecognitionEventType string

const (
	RecognitionResult RecognitionEventType = "result"
	RecognitionError  RecognitionEventType = "error"
)

// RecognitionEvent is the single terminal event of one listening session:
// either one recognized utterance or one error. There are no partials and
// no retries at this boundary.
type RecognitionEvent struct {
	Type       RecognitionEventType
	Transcript string
	Confidence float64
	Code       string
	Detail     string
}

// Recognizer converts microphone audio to text with single-utterance
// semantics: after Listen, the provider delivers at most one event and the
// session is over. The returned stop function aborts listening early and is
// safe to call more than once.
type Recognizer interface {
	Listen(ctx context.Context) (<-chan RecognitionEvent, func(), error)
}

// Voice describes one selectable synthesis voice.
type Voice struct {
	ID      string
	Name    string
	Lang    string
	Female  bool
	Default bool
}

// Utterance is one piece of reply text to speak aloud.
type Utterance struct {
	Text    string
	VoiceID string
	Rate    float64
	Pitch   float64
}

// Playback is a handle to one playing utterance.
type Playback interface {
	Cancel()
	Done() <-chan struct{}
}

// Synthesizer converts reply text to audio. Implementations play at most
// one utterance at a time from the bridge's point of view; preemption is
// the bridge's job.
type Synthesizer interface {
	Voices() []Voice
	Speak(ctx context.Context, u Utterance) (Playback, error)
}
