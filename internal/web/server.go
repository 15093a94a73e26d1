// Package web exposes the assistant over HTTP: query submission, voice
// capture, the polling endpoint the frontend reads, a websocket push
// channel, and the operational endpoints (metrics, health).
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sara-labs/sara/internal/conv"
	"github.com/sara-labs/sara/internal/dispatch"
	"github.com/sara-labs/sara/internal/health"
	"github.com/sara-labs/sara/internal/observe"
	"github.com/sara-labs/sara/internal/state"
	"github.com/sara-labs/sara/pkg/provider/stt"
)

// updatePayload is the response body of GET /updates and every websocket
// push frame.
type updatePayload struct {
	Status      string      `json:"status"`
	ChatHistory []conv.Turn `json:"chat_history"`
}

// queryRequest is the POST /query body.
type queryRequest struct {
	Query string `json:"query"`
}

// Server wires the assistant's HTTP surface. HTTP handlers never run the
// pipeline inline; they enqueue it and answer immediately, because the
// frontend reads progress from /updates rather than the POST response.
type Server struct {
	assistant  *state.Assistant
	dispatcher *dispatch.Dispatcher
	executor   *dispatch.Executor
	health     *health.Handler
	metrics    *observe.Metrics
	hub        *Hub

	// recognizer, when non-nil, enables the /start_voice route.
	recognizer stt.Recognizer
}

// Option configures a Server.
type Option func(*Server)

// WithRecognizer enables voice capture through r.
func WithRecognizer(r stt.Recognizer) Option {
	return func(s *Server) {
		s.recognizer = r
	}
}

// WithHealth installs h's routes on the server.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithMetrics overrides the metrics instance used by the HTTP middleware.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer constructs the HTTP surface for the given pipeline pieces.
func NewServer(assistant *state.Assistant, dispatcher *dispatch.Dispatcher, executor *dispatch.Executor, opts ...Option) *Server {
	s := &Server{
		assistant:  assistant,
		dispatcher: dispatcher,
		executor:   executor,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	s.hub = NewHub(assistant)
	return s
}

// Hub returns the websocket hub so the app can run its broadcast loop.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the complete route tree wrapped in the observability
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("POST /start_voice", s.handleStartVoice)
	mux.HandleFunc("GET /updates", s.handleUpdates)
	mux.HandleFunc("GET /ws", s.hub.handleWS)
	mux.Handle("GET /metrics", promhttp.Handler())
	if s.health != nil {
		s.health.Register(mux)
	}
	return observe.Middleware(s.metrics)(mux)
}

// handleQuery accepts a text query and enqueues the pipeline for it.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be JSON with a query field"})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query must not be empty"})
		return
	}

	query := req.Query
	if err := s.executor.Submit("query", func(ctx context.Context) {
		s.dispatcher.ProcessQuery(ctx, query)
	}); err != nil {
		observe.Logger(r.Context()).Error("could not enqueue query", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server is shutting down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

// handleStartVoice captures one spoken query in the background and feeds it
// into the pipeline.
func (s *Server) handleStartVoice(w http.ResponseWriter, r *http.Request) {
	if s.recognizer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "voice capture is not configured"})
		return
	}

	if err := s.executor.Submit("voice", func(ctx context.Context) {
		s.assistant.SetStatus(state.StatusListening)
		query, err := s.recognizer.Recognize(ctx)
		if err != nil {
			slog.Error("voice capture failed", "provider", s.recognizer.Name(), "error", err)
			s.assistant.SetStatus(state.StatusIdle)
			return
		}
		if query == "" {
			s.assistant.SetStatus(state.StatusIdle)
			return
		}
		s.dispatcher.ProcessQuery(ctx, query)
	}); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server is shutting down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "listening"})
}

// handleUpdates returns the current status string and full transcript. The
// frontend polls this; it must always succeed and always carry the whole
// history so a reloading page recovers the conversation.
func (s *Server) handleUpdates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, snapshotPayload(s.assistant))
}

// snapshotPayload renders the shared state for the frontend.
func snapshotPayload(a *state.Assistant) updatePayload {
	snap := a.Snapshot()
	history := snap.Transcript
	if history == nil {
		history = []conv.Turn{}
	}
	return updatePayload{
		Status:      snap.Status.String(),
		ChatHistory: history,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}
