// Package stt defines the speech-capture interface used by the voice entry
// point.
//
// A Recognizer blocks until one complete utterance has been captured and
// returns it as plain text. The capture mechanism (headless browser Web
// Speech page, native engine, ...) is an implementation detail behind the
// interface.
package stt

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Recognizer captures a single spoken utterance.
//
// Implementations must respect context cancellation: a cancelled ctx must
// abort the capture and return ctx.Err().
type Recognizer interface {
	// Recognize blocks until an utterance is captured and returns its text.
	// An empty string with a nil error means nothing usable was heard.
	Recognize(ctx context.Context) (string, error)

	// Name returns a short identifier for logs and metrics.
	Name() string
}

// questionWords mark utterances that should end with a question mark.
var questionWords = []string{
	"how", "what", "who", "where", "when", "why", "which",
	"whose", "whom", "can you", "what's", "where's", "how's",
}

// ModifyQuery normalises a raw recognised utterance into a well-formed query:
// trimmed, capitalised, and terminated with "?" for question-shaped input or
// "." otherwise. Existing terminal punctuation is replaced.
func ModifyQuery(raw string) string {
	q := strings.TrimSpace(raw)
	if q == "" {
		return ""
	}

	lower := strings.ToLower(q)
	q = strings.TrimRight(q, ".?!")

	question := false
	for _, w := range questionWords {
		if strings.HasPrefix(lower, w+" ") || lower == w {
			question = true
			break
		}
	}

	if question {
		q += "?"
	} else {
		q += "."
	}

	r, size := utf8.DecodeRuneInString(q)
	return string(unicode.ToUpper(r)) + q[size:]
}
