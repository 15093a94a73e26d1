package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sara-labs/sara/pkg/provider/llm"
)

// Classifier maps a raw utterance to an ordered list of tasks. An empty
// slice with a nil error means "no actionable task": the caller asks the
// user to rephrase. Errors are reserved for transport-level failures.
type Classifier interface {
	Classify(ctx context.Context, utterance string) ([]Task, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, utterance string) ([]Task, error)

// Classify implements Classifier.
func (f ClassifierFunc) Classify(ctx context.Context, utterance string) ([]Task, error) {
	return f(ctx, utterance)
}

// systemPrompt constrains the model to emit only lines of the fixed grammar.
// The model never answers the query itself; it just routes it.
const systemPrompt = `You are a decision-making model for a personal assistant. You do NOT answer queries. You classify each user query into one or more of the following task lines, one per line:

general <query>        - conversational or knowledge query answerable without live data
realtime <query>       - query needing up-to-date information from the internet
content <topic>        - request to write content (letter, article, blog, code) about a topic
generate image <prompt> - request to create an image of the prompt
open <app>             - request to open an application or website
close <app>            - request to close an application
play <name>            - request to play a song or video
google search <topic>  - explicit request to search google for a topic
youtube search <topic> - explicit request to search youtube for a topic
system <action>        - one of: mute, unmute, volume up, volume down

Rules:
- Respond with task lines ONLY. No explanations, no markdown, no numbering.
- A single query may produce several task lines (e.g. "open instagram and turn the volume up").
- If the query is not classifiable at all, respond with an empty message.`

// llmTemperature keeps routing decisions near-deterministic.
const llmTemperature = 0.2

// LLMClassifier classifies utterances by asking an LLM to rewrite them into
// the fixed grammar. Output shape is validated with ParseTasks before anything
// is returned; lines the model invents outside the grammar are dropped.
type LLMClassifier struct {
	provider llm.Provider
}

// NewLLMClassifier returns a classifier backed by provider.
func NewLLMClassifier(provider llm.Provider) (*LLMClassifier, error) {
	if provider == nil {
		return nil, fmt.Errorf("classify: provider must not be nil")
	}
	return &LLMClassifier{provider: provider}, nil
}

// Classify implements Classifier.
func (c *LLMClassifier) Classify(ctx context.Context, utterance string) ([]Task, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, nil
	}

	resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: utterance},
		},
		Temperature: llmTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("classify: completion: %w", err)
	}

	return ParseTasks(resp.Content), nil
}
