package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sara-labs/sara/internal/classify"
	"github.com/sara-labs/sara/internal/conv"
	"github.com/sara-labs/sara/internal/handler"
	"github.com/sara-labs/sara/internal/observe"
	"github.com/sara-labs/sara/internal/state"
	"github.com/sara-labs/sara/pkg/provider/tts"
)

// Canned replies for the pipeline's own failure modes. Handler failures
// carry their own messages.
const (
	rephraseResponse = "I'm not sure how to handle that. Could you rephrase?"
	classifyApology  = "Sorry, I couldn't work out what you meant. Please try again."
)

// BatchResult pairs a task with its handler outcome.
type BatchResult struct {
	Task   classify.Task
	Result handler.Result
}

// Dispatcher runs the full query pipeline: classify, fan the tasks out to
// their handlers, and record every response in the shared state.
type Dispatcher struct {
	classifier classify.Classifier
	registry   *handler.Registry
	assistant  *state.Assistant
	metrics    *observe.Metrics

	// speak, when non-nil, voices responses without blocking the pipeline.
	speak tts.Sink
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSpeech voices every pipeline response through sink.
func WithSpeech(sink tts.Sink) Option {
	return func(d *Dispatcher) {
		d.speak = sink
	}
}

// WithMetrics overrides the metrics instance. Defaults to
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New constructs a Dispatcher.
func New(classifier classify.Classifier, registry *handler.Registry, assistant *state.Assistant, opts ...Option) (*Dispatcher, error) {
	if classifier == nil {
		return nil, fmt.Errorf("dispatch: classifier must not be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("dispatch: handler registry must not be nil")
	}
	if assistant == nil {
		return nil, fmt.Errorf("dispatch: assistant state must not be nil")
	}
	d := &Dispatcher{
		classifier: classifier,
		registry:   registry,
		assistant:  assistant,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.metrics == nil {
		d.metrics = observe.DefaultMetrics()
	}
	return d, nil
}

// ProcessQuery runs one user query through the whole pipeline. It blocks
// until every task of the query finished; callers wanting fire-and-forget
// semantics submit it to an [Executor]. The outcome lands in the shared
// state, not in a return value, because the frontend reads state, not HTTP
// responses.
func (d *Dispatcher) ProcessQuery(ctx context.Context, query string) {
	id := uuid.NewString()
	log := slog.With("query_id", id)
	start := time.Now()

	d.metrics.ActiveQueries.Add(ctx, 1)
	defer func() {
		d.metrics.ActiveQueries.Add(ctx, -1)
		d.metrics.QueryDuration.Record(ctx, time.Since(start).Seconds())
	}()

	d.assistant.Apply(state.StatusThinking, conv.User(query))
	log.Info("processing query", "query", query)

	clsStart := time.Now()
	tasks, err := d.classifier.Classify(ctx, query)
	d.metrics.ClassificationDuration.Record(ctx, time.Since(clsStart).Seconds())
	if err != nil {
		log.Error("classification failed", "error", err)
		d.finish(ctx, conv.Assistant(classifyApology))
		return
	}
	if len(tasks) == 0 {
		log.Warn("query produced no tasks", "query", query)
		d.finish(ctx, conv.Assistant(rephraseResponse))
		return
	}
	log.Info("query classified", "tasks", len(tasks))

	results := d.DispatchBatch(ctx, tasks)

	turns := make([]conv.Turn, 0, len(results))
	for _, r := range results {
		if r.Result.Response == "" {
			continue
		}
		turns = append(turns, conv.Assistant(r.Result.Response))
	}
	if len(turns) == 0 {
		turns = append(turns, conv.Assistant(rephraseResponse))
	}
	d.finish(ctx, turns...)
	log.Info("query done", "tasks", len(tasks), "duration", time.Since(start))
}

// DispatchBatch runs every task concurrently and gathers all results in
// task order. Tasks whose verb has no registered handler are skipped with a
// log line; they produce no result rather than a hole in the slice.
func (d *Dispatcher) DispatchBatch(ctx context.Context, tasks []classify.Task) []BatchResult {
	results := make([]BatchResult, len(tasks))
	valid := make([]bool, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		h, ok := d.registry.Resolve(task.Verb)
		if !ok {
			slog.Warn("no handler for verb, skipping task", "verb", task.Verb, "arg", task.Arg)
			continue
		}
		valid[i] = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			res := h.Handle(ctx, task.Arg)
			status := "ok"
			if !res.OK {
				status = "error"
			}
			d.metrics.RecordTask(ctx, string(task.Verb), status, time.Since(start).Seconds())
			results[i] = BatchResult{Task: task, Result: res}
		}()
	}
	wg.Wait()

	out := make([]BatchResult, 0, len(tasks))
	for i := range results {
		if valid[i] {
			out = append(out, results[i])
		}
	}
	return out
}

// finish appends the closing turns, returns the status to idle and voices
// the responses without blocking.
func (d *Dispatcher) finish(ctx context.Context, turns ...conv.Turn) {
	d.assistant.Apply(state.StatusIdle, turns...)
	if d.speak == nil {
		return
	}

	var parts []string
	for _, t := range turns {
		parts = append(parts, t.Content)
	}
	text := strings.Join(parts, " ")
	go func() {
		// Speech runs detached from the request context so a finished
		// pipeline does not cut the voice off.
		if err := d.speak.Speak(context.WithoutCancel(ctx), text); err != nil {
			slog.Warn("speech output failed", "provider", d.speak.Name(), "error", err)
		}
	}()
}
