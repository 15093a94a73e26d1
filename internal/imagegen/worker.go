package imagegen

import (
	"context"
	"log/slog"
	"time"

	"github.com/sara-labs/sara/internal/observe"
)

// Polling cadences of the worker loop.
const (
	pollIdle      = 2 * time.Second
	pollTransient = 1 * time.Second
	pollMissing   = 5 * time.Second
)

// Worker polls the exchange file and runs generations for pending requests.
type Worker struct {
	exchange *Exchange
	gen      Generator
	outDir   string
	metrics  *observe.Metrics

	// onGenerated, when set, is called with the saved image paths after each
	// successful generation. Used by the CLI to open the results.
	onGenerated func(paths []string)
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithOnGenerated registers a callback invoked with the saved image paths.
func WithOnGenerated(fn func(paths []string)) WorkerOption {
	return func(w *Worker) {
		w.onGenerated = fn
	}
}

// NewWorker returns a worker writing images to outDir.
func NewWorker(exchange *Exchange, gen Generator, outDir string, opts ...WorkerOption) *Worker {
	w := &Worker{exchange: exchange, gen: gen, outDir: outDir, metrics: observe.DefaultMetrics()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls the exchange until ctx is canceled. The cadence backs off to
// pollMissing when the record file is unreadable and tightens to
// pollTransient after a failed generation, so a stuck request retries sooner.
func (w *Worker) Run(ctx context.Context) error {
	slog.Info("image worker started", "exchange", w.exchange.Path(), "out_dir", w.outDir)
	delay := pollIdle
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = w.step(ctx)
	}
}

// step performs one poll cycle and returns the delay before the next.
func (w *Worker) step(ctx context.Context) time.Duration {
	req, err := w.exchange.Read()
	if err != nil {
		slog.Warn("exchange record unreadable", "error", err)
		return pollMissing
	}
	if !req.Pending {
		return pollIdle
	}

	slog.Info("generating images", "prompt", req.Prompt)
	paths, err := GenerateSet(ctx, w.gen, w.outDir, req.Prompt)

	// The record is cleared regardless of outcome so a failed prompt is not
	// retried forever.
	if cerr := w.exchange.Clear(); cerr != nil {
		slog.Error("failed to clear exchange record", "error", cerr)
	}

	if err != nil {
		slog.Warn("image generation failed", "prompt", req.Prompt, "error", err)
		return pollTransient
	}
	slog.Info("images generated", "prompt", req.Prompt, "count", len(paths))
	w.metrics.ImagesGenerated.Add(ctx, int64(len(paths)))
	if w.onGenerated != nil {
		w.onGenerated(paths)
	}
	return pollIdle
}
