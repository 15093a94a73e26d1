// Package mock provides a test double for the tts.Sink interface.
package mock

import (
	"context"
	"sync"

	"github.com/sara-labs/sara/pkg/provider/tts"
)

// Compile-time interface assertion.
var _ tts.Sink = (*Sink)(nil)

// Sink is a mock implementation of tts.Sink that records spoken text.
type Sink struct {
	mu sync.Mutex

	// Err, if non-nil, is returned from every Speak call.
	Err error

	// Spoken records the text of every Speak call in order.
	Spoken []string
}

// Speak implements tts.Sink.
func (s *Sink) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Spoken = append(s.Spoken, text)
	return s.Err
}

// Name implements tts.Sink.
func (s *Sink) Name() string { return "mock" }

// Texts returns a snapshot of all spoken texts.
func (s *Sink) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.Spoken))
	copy(out, s.Spoken)
	return out
}
