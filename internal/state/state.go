// Package state holds the single in-process record of the assistant's
// current status and conversation transcript.
//
// One mutex covers both fields so that status and transcript always change
// as a pair: the web boundary can never observe a new transcript entry with
// a stale status or vice versa. The presentation boundary only ever sees
// copies, taken via Snapshot.
package state

import (
	"sync"

	"github.com/sara-labs/sara/internal/conv"
)

// Status is the assistant's coarse activity state shown in the frontend.
type Status int

const (
	StatusIdle Status = iota
	StatusThinking
	StatusListening
	StatusTranslating
	StatusError
)

// String renders the status the way the polling frontend displays it.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusThinking:
		return "Thinking..."
	case StatusListening:
		return "Listening..."
	case StatusTranslating:
		return "Translating..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// greeting seeds the transcript so the frontend has something to show before
// the first utterance.
const greeting = "Hello! How can I assist you today?"

// Snapshot is an immutable copy of the assistant state handed to the
// presentation boundary.
type Snapshot struct {
	Status     Status
	Transcript []conv.Turn
}

// Assistant is the process-lifetime conversation state. The zero value is
// not usable; construct with New.
//
// All methods are safe for concurrent use.
type Assistant struct {
	mu         sync.Mutex
	status     Status
	transcript []conv.Turn
}

// New returns an Assistant in the Idle state with the greeting turn seeded.
func New() *Assistant {
	return &Assistant{
		status:     StatusIdle,
		transcript: []conv.Turn{conv.Assistant(greeting)},
	}
}

// AppendTurn appends a turn to the transcript without changing the status.
func (a *Assistant) AppendTurn(t conv.Turn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transcript = append(a.transcript, t)
}

// SetStatus updates the status without touching the transcript.
func (a *Assistant) SetStatus(s Status) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
}

// Apply updates the status and appends the given turns in one critical
// section, so the pair is visible atomically to Snapshot callers.
func (a *Assistant) Apply(s Status, turns ...conv.Turn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = s
	a.transcript = append(a.transcript, turns...)
}

// Snapshot returns a copy of the current status and transcript. The returned
// slice shares no memory with the live transcript.
func (a *Assistant) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		Status:     a.status,
		Transcript: conv.CloneTurns(a.transcript),
	}
}
