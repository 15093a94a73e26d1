// Package httptts provides a TTS sink backed by a local speech server
// (e.g. a Coqui TTS container or any small bridge that accepts text and
// plays it on the host audio device).
//
// Synthesis is one HTTP POST per utterance: JSON body {"text": ...} to the
// configured endpoint. Any 2xx response counts as success; the body, if any,
// is discarded, playback is the server's concern.
package httptts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sara-labs/sara/pkg/provider/tts"
)

// Compile-time interface assertion.
var _ tts.Sink = (*Sink)(nil)

const (
	defaultTimeout  = 15 * time.Second
	defaultEndpoint = "/api/speak"
)

// Sink implements tts.Sink against a local HTTP speech server.
type Sink struct {
	baseURL  string
	endpoint string
	client   *http.Client
}

// Option is a functional option for Sink.
type Option func(*Sink)

// WithTimeout sets the per-request HTTP timeout. Defaults to 15 seconds.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) { s.client.Timeout = d }
}

// WithEndpoint overrides the synthesis path. Defaults to /api/speak.
func WithEndpoint(path string) Option {
	return func(s *Sink) { s.endpoint = path }
}

// New constructs a Sink targeting the speech server at baseURL
// (e.g. "http://localhost:5002").
func New(baseURL string, opts ...Option) (*Sink, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("httptts: baseURL must not be empty")
	}
	s := &Sink{
		baseURL:  strings.TrimRight(baseURL, "/"),
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Name implements tts.Sink.
func (s *Sink) Name() string { return "http" }

// Speak implements tts.Sink.
func (s *Sink) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("httptts: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("httptts: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("httptts: request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("httptts: unexpected status %d", resp.StatusCode)
	}
	return nil
}
