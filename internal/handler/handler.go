// Package handler implements the per-verb task handlers invoked by the
// dispatcher. Handlers never panic outward and never return Go errors to the
// caller; failures surface as a Result with OK false and a user-facing
// message, so one broken task cannot take down a batch.
package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sara-labs/sara/internal/classify"
)

// Result is the outcome of one handled task.
type Result struct {
	// OK reports whether the task succeeded.
	OK bool

	// Response is the user-facing message. It is set on both success and
	// failure; a failed task still produces something worth showing.
	Response string
}

// Handler executes one classified task.
type Handler interface {
	Handle(ctx context.Context, arg string) Result
}

// Func adapts a function to the Handler interface.
type Func func(ctx context.Context, arg string) Result

// Handle calls f.
func (f Func) Handle(ctx context.Context, arg string) Result {
	return f(ctx, arg)
}

// Registry maps verbs to their handlers.
type Registry struct {
	handlers map[classify.Verb]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[classify.Verb]Handler)}
}

// Register binds verb to h, wrapping it with panic recovery. Registering a
// verb twice replaces the earlier handler.
func (r *Registry) Register(verb classify.Verb, h Handler) {
	r.handlers[verb] = recovering{verb: verb, next: h}
}

// Resolve returns the handler for verb, or false when none is registered.
func (r *Registry) Resolve(verb classify.Verb) (Handler, bool) {
	h, ok := r.handlers[verb]
	return h, ok
}

// Verbs returns every registered verb.
func (r *Registry) Verbs() []classify.Verb {
	out := make([]classify.Verb, 0, len(r.handlers))
	for v := range r.handlers {
		out = append(out, v)
	}
	return out
}

// recovering converts a handler panic into a failed Result.
type recovering struct {
	verb classify.Verb
	next Handler
}

func (rec recovering) Handle(ctx context.Context, arg string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("handler panicked", "verb", rec.verb, "panic", fmt.Sprint(r))
			res = Result{OK: false, Response: "Sorry, something went wrong while handling that."}
		}
	}()
	return rec.next.Handle(ctx, arg)
}
