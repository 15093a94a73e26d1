package stt_test

import (
	"testing"

	"github.com/sara-labs/sara/pkg/provider/stt"
)

func TestModifyQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"question word", "what time is it", "What time is it?"},
		{"statement", "open spotify", "Open spotify."},
		{"already punctuated question", "how are you.", "How are you?"},
		{"already punctuated statement", "play some jazz?", "Play some jazz."},
		{"whitespace only", "   ", ""},
		{"empty", "", ""},
		{"single question word", "why", "Why?"},
		{"compound question opener", "can you hear me", "Can you hear me?"},
		{"statement containing question word mid-sentence", "tell me what you think", "Tell me what you think."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stt.ModifyQuery(tt.in); got != tt.want {
				t.Errorf("ModifyQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
