package state_test

import (
	"sync"
	"testing"

	"github.com/sara-labs/sara/internal/conv"
	"github.com/sara-labs/sara/internal/state"
)

func TestNew_SeedsGreeting(t *testing.T) {
	a := state.New()
	snap := a.Snapshot()

	if snap.Status != state.StatusIdle {
		t.Errorf("status: got %v, want Idle", snap.Status)
	}
	if len(snap.Transcript) != 1 {
		t.Fatalf("transcript length: got %d, want 1", len(snap.Transcript))
	}
	if snap.Transcript[0].Role != conv.RoleAssistant {
		t.Errorf("greeting role: got %q", snap.Transcript[0].Role)
	}
}

func TestApply_AtomicPair(t *testing.T) {
	a := state.New()
	a.Apply(state.StatusThinking, conv.User("hello"))

	snap := a.Snapshot()
	if snap.Status != state.StatusThinking {
		t.Errorf("status: got %v, want Thinking", snap.Status)
	}
	last := snap.Transcript[len(snap.Transcript)-1]
	if last.Content != "hello" || last.Role != conv.RoleUser {
		t.Errorf("last turn: got %+v", last)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	a := state.New()
	a.AppendTurn(conv.User("original"))

	snap := a.Snapshot()
	snap.Transcript[len(snap.Transcript)-1].Content = "mutated"

	again := a.Snapshot()
	last := again.Transcript[len(again.Transcript)-1]
	if last.Content != "original" {
		t.Errorf("live transcript was mutated through a snapshot: %q", last.Content)
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		s    state.Status
		want string
	}{
		{state.StatusIdle, "Idle"},
		{state.StatusThinking, "Thinking..."},
		{state.StatusListening, "Listening..."},
		{state.StatusTranslating, "Translating..."},
		{state.StatusError, "Error"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	a := state.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			a.Apply(state.StatusThinking, conv.Assistant("response"))
		}()
		go func() {
			defer wg.Done()
			_ = a.Snapshot()
		}()
	}
	wg.Wait()

	snap := a.Snapshot()
	if got := len(snap.Transcript); got != 51 {
		t.Errorf("transcript length after concurrent appends: got %d, want 51", got)
	}
}
