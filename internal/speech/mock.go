package speech

import (
	"context"
	"sync"
)

// MockRecognizer delivers one canned transcript per listening session. It
// stands in for a real speech-to-text engine in local runs and tests.
type MockRecognizer struct {
	mu         sync.Mutex
	transcript string
	sessions   int
	stops      int
}

func NewMockRecognizer(transcript string) *MockRecognizer {
	if transcript == "" {
		transcript = "simulated voice input"
	}
	return &MockRecognizer{transcript: transcript}
}

func (r *MockRecognizer) Listen(_ context.Context) (<-chan RecognitionEvent, func(), error) {
	r.mu.Lock()
	r.sessions++
	transcript := r.transcript
	r.mu.Unlock()

	events := make(chan RecognitionEvent, 1)
	events <- RecognitionEvent{
		Type:       RecognitionResult,
		Transcript: transcript,
		Confidence: 0.7,
	}
	close(events)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			r.mu.Lock()
			r.stops++
			r.mu.Unlock()
		})
	}
	return events, stop, nil
}

func (r *MockRecognizer) Sessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions
}

// MockSynthesizer records spoken utterances instead of producing audio.
type MockSynthesizer struct {
	mu         sync.Mutex
	voices     []Voice
	utterances []Utterance
	playbacks  []*MockPlayback
}

func NewMockSynthesizer(voices ...Voice) *MockSynthesizer {
	if len(voices) == 0 {
		voices = []Voice{
			{ID: "mock-it-m", Name: "Marco", Lang: "it-IT", Default: true},
			{ID: "mock-en-f", Name: "Samantha", Lang: "en-US", Female: true},
			{ID: "mock-en-m", Name: "Daniel", Lang: "en-GB"},
		}
	}
	return &MockSynthesizer{voices: voices}
}

func (s *MockSynthesizer) Voices() []Voice {
	out := make([]Voice, len(s.voices))
	copy(out, s.voices)
	return out
}

func (s *MockSynthesizer) Speak(_ context.Context, u Utterance) (Playback, error) {
	p := newMockPlayback()
	s.mu.Lock()
	s.utterances = append(s.utterances, u)
	s.playbacks = append(s.playbacks, p)
	s.mu.Unlock()
	return p, nil
}

func (s *MockSynthesizer) Utterances() []Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Utterance, len(s.utterances))
	copy(out, s.utterances)
	return out
}

func (s *MockSynthesizer) PlaybackAt(i int) *MockPlayback {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.playbacks) {
		return nil
	}
	return s.playbacks[i]
}

// MockPlayback stays "playing" until cancelled or completed.
type MockPlayback struct {
	once      sync.Once
	done      chan struct{}
	mu        sync.Mutex
	cancelled bool
}

func newMockPlayback() *MockPlayback {
	return &MockPlayback{done: make(chan struct{})}
}

func (p *MockPlayback) Cancel() {
	p.mu.Lock()
	p.cancelled = true
	p.mu.Unlock()
	p.once.Do(func() { close(p.done) })
}

// Complete marks natural end of playback.
func (p *MockPlayback) Complete() {
	p.once.Do(func() { close(p.done) })
}

func (p *MockPlayback) Done() <-chan struct{} { return p.done }

func (p *MockPlayback) Cancelled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancelled
}
