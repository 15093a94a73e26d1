// Package tts defines the text-to-speech sink used to voice assistant
// responses.
//
// Speech output is fire-and-forget from the dispatcher's perspective: the
// pipeline hands the response text to the sink on a background goroutine and
// never waits for playback. A failed synthesis is logged, never surfaced to
// the user.
package tts

import "context"

// Sink accepts response text for spoken playback.
//
// Implementations must be safe for concurrent use and must bound any
// outbound network call with a default timeout.
type Sink interface {
	// Speak synthesizes and plays text. Blocking is allowed; callers invoke
	// Speak from a background goroutine.
	Speak(ctx context.Context, text string) error

	// Name returns a short identifier for logs and metrics.
	Name() string
}
