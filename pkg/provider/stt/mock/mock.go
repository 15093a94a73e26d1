// Package mock provides a test double for the stt.Recognizer interface.
package mock

import (
	"context"
	"sync"

	"github.com/sara-labs/sara/pkg/provider/stt"
)

// Compile-time interface assertion.
var _ stt.Recognizer = (*Recognizer)(nil)

// Recognizer is a mock implementation of stt.Recognizer.
type Recognizer struct {
	mu sync.Mutex

	// Utterance is returned from every Recognize call.
	Utterance string

	// Err, if non-nil, is returned as the error from Recognize.
	Err error

	// CallCount is incremented on every Recognize call.
	CallCount int
}

// Recognize implements stt.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CallCount++
	if r.Err != nil {
		return "", r.Err
	}
	return r.Utterance, nil
}

// Name implements stt.Recognizer.
func (r *Recognizer) Name() string { return "mock" }

// Calls returns the number of Recognize invocations so far.
func (r *Recognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.CallCount
}
