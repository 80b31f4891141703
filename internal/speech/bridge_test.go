package speech

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeRecognizer hands out a manually driven event channel per session.
type fakeRecognizer struct {
	mu       sync.Mutex
	sessions []chan RecognitionEvent
	stops    int
}

func (r *fakeRecognizer) Listen(_ context.Context) (<-chan RecognitionEvent, func(), error) {
	ch := make(chan RecognitionEvent, 1)
	r.mu.Lock()
	r.sessions = append(r.sessions, ch)
	r.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			r.mu.Lock()
			r.stops++
			r.mu.Unlock()
		})
	}
	return ch, stop, nil
}

func (r *fakeRecognizer) session(i int) chan RecognitionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[i]
}

func (r *fakeRecognizer) sessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func waitForState(t *testing.T, b *Bridge, want InputState) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if b.State() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("bridge state = %q, want %q", b.State(), want)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestToggleListeningStartsAndStops(t *testing.T) {
	rec := &fakeRecognizer{}
	b := NewBridge(rec, nil, nil)

	state, err := b.ToggleListening(context.Background())
	if err != nil {
		t.Fatalf("ToggleListening() error = %v", err)
	}
	if state != InputListening {
		t.Fatalf("state = %q, want listening", state)
	}

	// Toggling while active stops instead of starting a new session.
	state, err = b.ToggleListening(context.Background())
	if err != nil {
		t.Fatalf("ToggleListening() error = %v", err)
	}
	if state != InputIdle {
		t.Fatalf("state = %q, want idle", state)
	}
	if rec.sessionCount() != 1 {
		t.Fatalf("sessions = %d, want 1", rec.sessionCount())
	}
}

func TestSingleUtteranceSubmitsOnceAndReturnsToIdle(t *testing.T) {
	rec := &fakeRecognizer{}
	submitted := make(chan string, 4)
	b := NewBridge(rec, nil, func(_ context.Context, transcript string) {
		submitted <- transcript
	})

	if _, err := b.ToggleListening(context.Background()); err != nil {
		t.Fatalf("ToggleListening() error = %v", err)
	}

	rec.session(0) <- RecognitionEvent{Type: RecognitionResult, Transcript: " hello bridge "}

	select {
	case got := <-submitted:
		if got != "hello bridge" {
			t.Fatalf("transcript = %q", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("recognized utterance was never submitted")
	}
	waitForState(t, b, InputIdle)

	select {
	case extra := <-submitted:
		t.Fatalf("unexpected second submission %q", extra)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRecognitionErrorReturnsToIdleWithoutSubmission(t *testing.T) {
	rec := &fakeRecognizer{}
	submitted := make(chan string, 1)
	b := NewBridge(rec, nil, func(_ context.Context, transcript string) {
		submitted <- transcript
	})

	if _, err := b.ToggleListening(context.Background()); err != nil {
		t.Fatalf("ToggleListening() error = %v", err)
	}
	rec.session(0) <- RecognitionEvent{Type: RecognitionError, Code: "no-speech"}

	waitForState(t, b, InputIdle)
	select {
	case got := <-submitted:
		t.Fatalf("error event should not submit, got %q", got)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestEmptyTranscriptIsDropped(t *testing.T) {
	rec := &fakeRecognizer{}
	submitted := make(chan string, 1)
	b := NewBridge(rec, nil, func(_ context.Context, transcript string) {
		submitted <- transcript
	})

	if _, err := b.ToggleListening(context.Background()); err != nil {
		t.Fatalf("ToggleListening() error = %v", err)
	}
	rec.session(0) <- RecognitionEvent{Type: RecognitionResult, Transcript: "   "}

	waitForState(t, b, InputIdle)
	select {
	case got := <-submitted:
		t.Fatalf("blank transcript should not submit, got %q", got)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestListeningWithoutRecognizer(t *testing.T) {
	b := NewBridge(nil, NewMockSynthesizer(), nil)
	if b.CanListen() {
		t.Fatalf("CanListen() = true without a recognizer")
	}
	if _, err := b.ToggleListening(context.Background()); err != ErrCapabilityUnavailable {
		t.Fatalf("error = %v, want ErrCapabilityUnavailable", err)
	}
}

func TestSpeakPreemptsCurrentUtterance(t *testing.T) {
	synth := NewMockSynthesizer()
	b := NewBridge(nil, synth, nil)

	if err := b.Speak(context.Background(), "first reply"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if err := b.Speak(context.Background(), "second reply"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}

	first := synth.PlaybackAt(0)
	if first == nil || !first.Cancelled() {
		t.Fatalf("first utterance must be cancelled before the second starts")
	}
	second := synth.PlaybackAt(1)
	if second == nil || second.Cancelled() {
		t.Fatalf("second utterance should still be playing")
	}

	got := synth.Utterances()
	if len(got) != 2 || got[0].Text != "first reply" || got[1].Text != "second reply" {
		t.Fatalf("unexpected utterances: %+v", got)
	}
}

func TestSpeakWithoutSynthesizer(t *testing.T) {
	b := NewBridge(NewMockRecognizer(""), nil, nil)
	if b.CanSpeak() {
		t.Fatalf("CanSpeak() = true without a synthesizer")
	}
	if err := b.Speak(context.Background(), "hello"); err != ErrCapabilityUnavailable {
		t.Fatalf("error = %v, want ErrCapabilityUnavailable", err)
	}
}

func TestSpeakSkipsBlankText(t *testing.T) {
	synth := NewMockSynthesizer()
	b := NewBridge(nil, synth, nil)
	if err := b.Speak(context.Background(), "   "); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if len(synth.Utterances()) != 0 {
		t.Fatalf("blank text should not be spoken")
	}
}

func TestPickVoiceIDPrefersFemaleEnglish(t *testing.T) {
	voices := []Voice{
		{ID: "it-default", Lang: "it-IT", Default: true},
		{ID: "en-male", Lang: "en-GB"},
		{ID: "en-female", Lang: "en-US", Female: true},
	}
	if got := PickVoiceID(voices); got != "en-female" {
		t.Fatalf("PickVoiceID() = %q, want en-female", got)
	}
}

func TestPickVoiceIDFallbacks(t *testing.T) {
	if got := PickVoiceID([]Voice{{ID: "en-male", Lang: "en-AU"}, {ID: "fr", Lang: "fr-FR"}}); got != "en-male" {
		t.Fatalf("PickVoiceID() = %q, want en-male", got)
	}
	if got := PickVoiceID([]Voice{{ID: "fr", Lang: "fr-FR"}, {ID: "it", Lang: "it-IT", Default: true}}); got != "it" {
		t.Fatalf("PickVoiceID() = %q, want the host default", got)
	}
	if got := PickVoiceID(nil); got != "" {
		t.Fatalf("PickVoiceID(nil) = %q, want empty", got)
	}
}

func TestBridgeUsesPreferredVoice(t *testing.T) {
	synth := NewMockSynthesizer()
	b := NewBridge(nil, synth, nil)

	if err := b.Speak(context.Background(), "ciao"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	got := synth.Utterances()
	if len(got) != 1 || got[0].VoiceID != "mock-en-f" {
		t.Fatalf("utterance voice = %+v, want the female English mock voice", got)
	}
}

func TestMockRecognizerDrivesBridge(t *testing.T) {
	rec := NewMockRecognizer("ciao parla")
	submitted := make(chan string, 1)
	b := NewBridge(rec, nil, func(_ context.Context, transcript string) {
		submitted <- transcript
	})

	if _, err := b.ToggleListening(context.Background()); err != nil {
		t.Fatalf("ToggleListening() error = %v", err)
	}

	select {
	case got := <-submitted:
		if got != "ciao parla" {
			t.Fatalf("transcript = %q", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("mock recognizer never produced a submission")
	}
	waitForState(t, b, InputIdle)
}
