package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sara-labs/sara/internal/chatlog"
	"github.com/sara-labs/sara/internal/conv"
	"github.com/sara-labs/sara/internal/observe"
	"github.com/sara-labs/sara/pkg/provider/llm"
)

// Apologies returned when a chat completion fails. The general path resets
// the persisted history first so the next query starts from a known-good
// file; the realtime path leaves history alone because nothing was persisted
// yet when the failure hit.
const (
	apologyAfterReset = "Sorry, I ran into a problem and had to reset our conversation. Please ask me again."
	apologyTransient  = "Sorry, I couldn't complete that right now. Please try again in a moment."
)

const chatTemperature = 0.7

// ChatEngine answers conversational queries against the persisted history.
// A single mutex spans the whole load, complete and save sequence so
// concurrent chat requests cannot interleave partial histories.
type ChatEngine struct {
	mu        sync.Mutex
	provider  llm.Provider
	store     *chatlog.Store
	username  string
	assistant string
	metrics   *observe.Metrics

	// now is swapped in tests to pin the realtime clock turn.
	now func() time.Time
}

// NewChatEngine returns an engine answering as assistant on behalf of
// username.
func NewChatEngine(provider llm.Provider, store *chatlog.Store, username, assistant string) (*ChatEngine, error) {
	if provider == nil {
		return nil, fmt.Errorf("handler: llm provider must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("handler: chat log store must not be nil")
	}
	return &ChatEngine{
		provider:  provider,
		store:     store,
		username:  username,
		assistant: assistant,
		metrics:   observe.DefaultMetrics(),
		now:       time.Now,
	}, nil
}

// General answers a conversational query from the persisted history alone.
// On completion failure the history is reset to a clean file before the
// apology is returned.
func (e *ChatEngine) General(ctx context.Context, query string) Result {
	return e.chat(ctx, query, "", true)
}

// chat runs one full history cycle. extraContext, when non-empty, is folded
// in as an additional system turn ahead of the user query (the realtime path
// uses it for search snippets). resetOnFailure selects whether a failed
// completion wipes the persisted history.
func (e *ChatEngine) chat(ctx context.Context, query, extraContext string, resetOnFailure bool) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	turns := e.store.Load()
	turns = append(turns, conv.User(query))

	messages := make([]llm.Message, 0, len(turns)+2)
	messages = append(messages, llm.Message{Role: string(conv.RoleSystem), Content: e.clockInfo()})
	if extraContext != "" {
		messages = append(messages, llm.Message{Role: string(conv.RoleSystem), Content: extraContext})
	}
	for _, t := range turns {
		messages = append(messages, llm.Message{Role: string(t.Role), Content: t.Content})
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: e.systemPrompt(),
		Messages:     messages,
		Temperature:  chatTemperature,
	})
	e.recordCompletion(ctx, err)
	if err != nil {
		if !resetOnFailure {
			slog.Error("chat completion failed", "provider", e.provider.Name(), "error", err)
			return Result{OK: false, Response: apologyTransient}
		}
		slog.Error("chat completion failed, resetting history", "provider", e.provider.Name(), "error", err)
		if rerr := e.store.Reset(); rerr != nil {
			slog.Error("chat log reset failed", "error", rerr)
		}
		return Result{OK: false, Response: apologyAfterReset}
	}

	answer := tidyAnswer(resp.Content)
	if answer == "" {
		slog.Warn("chat completion returned no content", "provider", e.provider.Name())
		return Result{OK: false, Response: apologyTransient}
	}

	turns = append(turns, conv.Assistant(answer))
	if err := e.store.Save(turns); err != nil {
		// The answer is still good even if persisting it failed.
		slog.Error("chat log save failed", "error", err)
	}
	return Result{OK: true, Response: answer}
}

// recordCompletion counts one completion call against the provider metrics.
func (e *ChatEngine) recordCompletion(ctx context.Context, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		e.metrics.RecordProviderError(ctx, e.provider.Name(), "llm")
	}
	e.metrics.RecordProviderRequest(ctx, e.provider.Name(), "llm", status)
}

// systemPrompt frames the assistant persona and answer style.
func (e *ChatEngine) systemPrompt() string {
	return fmt.Sprintf(`You are %s, a highly accurate and helpful personal assistant for %s.
Answer the user's questions directly and conversationally.
Reply only in English, even if the question is in another language.
Do not mention the current time unless the user asks for it.
Do not announce your reasoning or your training; just answer.`, e.assistant, e.username)
}

// clockInfo renders the realtime clock as a system turn so the model can
// answer date and time questions without a tool call.
func (e *ChatEngine) clockInfo() string {
	now := e.now()
	return fmt.Sprintf("Use this real-time information if needed:\nDay: %s\nDate: %02d\nMonth: %s\nYear: %d\nTime: %02d hours, %02d minutes, %02d seconds.",
		now.Weekday(), now.Day(), now.Month(), now.Year(), now.Hour(), now.Minute(), now.Second())
}

// tidyAnswer drops blank lines and trims edge whitespace from a completion.
func tidyAnswer(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
