// Package app wires all Sara subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects all
// subsystems, Run serves HTTP until the context is canceled, and Shutdown
// tears everything down in order.
//
// For testing, inject doubles via functional options (WithClassifier,
// WithDesktop). When an option is not provided, New creates real
// implementations from the config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sara-labs/sara/internal/automation"
	"github.com/sara-labs/sara/internal/chatlog"
	"github.com/sara-labs/sara/internal/classify"
	"github.com/sara-labs/sara/internal/config"
	"github.com/sara-labs/sara/internal/dispatch"
	"github.com/sara-labs/sara/internal/handler"
	"github.com/sara-labs/sara/internal/health"
	"github.com/sara-labs/sara/internal/imagegen"
	"github.com/sara-labs/sara/internal/state"
	"github.com/sara-labs/sara/internal/web"
	"github.com/sara-labs/sara/pkg/provider/llm"
	"github.com/sara-labs/sara/pkg/provider/search"
	"github.com/sara-labs/sara/pkg/provider/stt"
	"github.com/sara-labs/sara/pkg/provider/tts"
)

// shutdownTimeout bounds the graceful HTTP server shutdown.
const shutdownTimeout = 10 * time.Second

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured. Populated by main.go via the config registry.
type Providers struct {
	LLM    llm.Provider
	Search search.Provider
	TTS    tts.Sink
	STT    stt.Recognizer
}

// App owns all subsystem lifetimes and serves the assistant over HTTP.
type App struct {
	cfg       *config.Config
	providers *Providers

	assistant  *state.Assistant
	store      *chatlog.Store
	exchange   *imagegen.Exchange
	registry   *handler.Registry
	classifier classify.Classifier
	desktop    *automation.Desktop
	dispatcher *dispatch.Dispatcher
	executor   *dispatch.Executor
	server     *web.Server

	// closers are called in order during Shutdown.
	closers []func() error

	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithClassifier injects a classifier instead of building one from the LLM
// provider.
func WithClassifier(c classify.Classifier) Option {
	return func(a *App) { a.classifier = c }
}

// WithDesktop injects a desktop automation layer instead of the real one.
func WithDesktop(d *automation.Desktop) Option {
	return func(a *App) { a.desktop = d }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go, populated via the config registry.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config must not be nil")
	}
	if providers == nil || providers.LLM == nil {
		return nil, errors.New("app: an LLM provider is required")
	}

	a := &App{
		cfg:       cfg,
		providers: providers,
		assistant: state.New(),
	}
	for _, o := range opts {
		o(a)
	}

	a.store = chatlog.New(cfg.Paths.ChatLog, chatlog.WithMaxTurns(cfg.History.MaxTurns))
	a.exchange = imagegen.NewExchange(cfg.Paths.ImageExchange)

	if a.classifier == nil {
		c, err := classify.NewLLMClassifier(providers.LLM)
		if err != nil {
			return nil, fmt.Errorf("app: build classifier: %w", err)
		}
		a.classifier = c
	}
	if a.desktop == nil {
		a.desktop = automation.New(providers.Search)
	}

	if err := a.initHandlers(); err != nil {
		return nil, err
	}

	dispatchOpts := []dispatch.Option{}
	if providers.TTS != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithSpeech(providers.TTS))
	}
	d, err := dispatch.New(a.classifier, a.registry, a.assistant, dispatchOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: build dispatcher: %w", err)
	}
	a.dispatcher = d

	a.executor = dispatch.NewExecutor(ctx, 0)
	a.closers = append(a.closers, func() error {
		a.executor.Close()
		return nil
	})

	serverOpts := []web.Option{
		web.WithHealth(a.healthHandler()),
	}
	if providers.STT != nil {
		serverOpts = append(serverOpts, web.WithRecognizer(providers.STT))
	}
	a.server = web.NewServer(a.assistant, a.dispatcher, a.executor, serverOpts...)

	return a, nil
}

// initHandlers builds the per-verb handler registry from the providers.
func (a *App) initHandlers() error {
	reg := handler.NewRegistry()

	engine, err := handler.NewChatEngine(a.providers.LLM, a.store, a.cfg.Assistant.Username, a.cfg.Assistant.Name)
	if err != nil {
		return fmt.Errorf("app: build chat engine: %w", err)
	}
	reg.Register(classify.VerbGeneral, handler.Func(engine.General))

	if a.providers.Search != nil {
		rt, err := handler.NewRealtime(engine, a.providers.Search)
		if err != nil {
			return fmt.Errorf("app: build realtime handler: %w", err)
		}
		reg.Register(classify.VerbRealtime, rt)
	} else {
		// Without search the realtime verb degrades to a plain chat answer.
		reg.Register(classify.VerbRealtime, handler.Func(engine.General))
	}

	cw, err := handler.NewContentWriter(a.providers.LLM, a.cfg.Paths.DataDir)
	if err != nil {
		return fmt.Errorf("app: build content writer: %w", err)
	}
	reg.Register(classify.VerbContent, cw)

	ir, err := handler.NewImageRequester(a.exchange)
	if err != nil {
		return fmt.Errorf("app: build image requester: %w", err)
	}
	reg.Register(classify.VerbGenerateImage, ir)

	handler.RegisterAutomation(reg, a.desktop)

	a.registry = reg
	return nil
}

// healthHandler assembles the readiness checks.
func (a *App) healthHandler() *health.Handler {
	return health.New(
		health.DataDirWritable(a.cfg.Paths.DataDir),
		health.Named("llm", func(context.Context) error {
			if a.providers.LLM == nil {
				return errors.New("no llm provider configured")
			}
			return nil
		}),
	)
}

// Assistant exposes the shared state, mainly for tests.
func (a *App) Assistant() *state.Assistant { return a.assistant }

// Handler returns the HTTP surface, mainly for tests.
func (a *App) Handler() http.Handler { return a.server.Handler() }

// Run serves HTTP until ctx is canceled, then shuts down gracefully. The
// websocket broadcast loop runs for the lifetime of ctx.
func (a *App) Run(ctx context.Context) error {
	go a.server.Hub().Run(ctx)

	srv := &http.Server{
		Addr:    a.cfg.Server.ListenAddr,
		Handler: a.server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", a.cfg.Server.ListenAddr, "tls", a.cfg.Server.TLS != nil)
		if tls := a.cfg.Server.TLS; tls != nil {
			errCh <- srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("app: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown error", "err", err)
	}
	return a.Shutdown(shutdownCtx)
}

// Shutdown tears down all subsystems in order. It respects the context
// deadline: if ctx expires before all closers finish, remaining closers are
// skipped and the context error is returned.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error
	a.stopOnce.Do(func() {
		slog.Info("shutting down", "closers", len(a.closers))
		for i, closer := range a.closers {
			select {
			case <-ctx.Done():
				slog.Warn("shutdown deadline exceeded", "remaining", len(a.closers)-i)
				shutdownErr = ctx.Err()
				return
			default:
			}
			if err := closer(); err != nil {
				slog.Warn("closer error", "index", i, "err", err)
			}
		}
		slog.Info("shutdown complete")
	})
	return shutdownErr
}
