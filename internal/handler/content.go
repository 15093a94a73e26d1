package handler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sara-labs/sara/pkg/provider/llm"
)

const contentTemperature = 0.7

const contentSystemPrompt = `You are a professional content writer.
Write the requested piece in full, ready to use as-is.
Use clear structure and plain language. Do not add commentary about the request itself.`

// ContentWriter generates long-form text (letters, essays, code snippets,
// applications) for a topic, saves it under the data directory and opens it
// in the user's editor.
type ContentWriter struct {
	provider llm.Provider
	dataDir  string

	// open launches the saved file in an editor. Injectable for tests.
	open func(path string) error
}

// ContentOption configures a ContentWriter.
type ContentOption func(*ContentWriter)

// WithOpener overrides how the saved file is opened.
func WithOpener(open func(path string) error) ContentOption {
	return func(c *ContentWriter) {
		c.open = open
	}
}

// NewContentWriter returns a writer saving files under dataDir.
func NewContentWriter(provider llm.Provider, dataDir string, opts ...ContentOption) (*ContentWriter, error) {
	if provider == nil {
		return nil, fmt.Errorf("handler: llm provider must not be nil")
	}
	if dataDir == "" {
		return nil, fmt.Errorf("handler: data directory must not be empty")
	}
	c := &ContentWriter{provider: provider, dataDir: dataDir, open: openInEditor}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Handle writes content about topic to "<datadir>/<sanitized topic>.txt" and
// opens it.
func (c *ContentWriter) Handle(ctx context.Context, topic string) Result {
	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: contentSystemPrompt,
		Messages:     []llm.Message{{Role: "user", Content: "Write content about: " + topic}},
		Temperature:  contentTemperature,
	})
	if err != nil {
		slog.Error("content generation failed", "topic", topic, "error", err)
		return Result{OK: false, Response: apologyTransient}
	}
	body := tidyAnswer(resp.Content)
	if body == "" {
		return Result{OK: false, Response: apologyTransient}
	}

	name := SanitizeFilename(topic)
	if name == "" {
		name = "content"
	}
	path := filepath.Join(c.dataDir, name+".txt")
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		slog.Error("content dir not writable", "dir", c.dataDir, "error", err)
		return Result{OK: false, Response: apologyTransient}
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		slog.Error("content not saved", "path", path, "error", err)
		return Result{OK: false, Response: apologyTransient}
	}

	if err := c.open(path); err != nil {
		slog.Warn("could not open content file", "path", path, "error", err)
	}
	return Result{OK: true, Response: fmt.Sprintf("I've written the content about %s and opened it for you.", topic)}
}

// SanitizeFilename turns a free-form topic into a safe flat file name:
// filesystem-reserved characters and spaces are removed and the rest is
// lowercased.
func SanitizeFilename(topic string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(topic)) {
		switch r {
		case '\\', '/', '*', '?', ':', '"', '<', '>', '|', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// openInEditor opens path with the platform opener.
func openInEditor(path string) error {
	return openWithDefaultApp(path)
}

var _ Handler = (*ContentWriter)(nil)
