package classify_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sara-labs/sara/internal/classify"
	"github.com/sara-labs/sara/pkg/provider/llm"
	llmmock "github.com/sara-labs/sara/pkg/provider/llm/mock"
)

func TestLLMClassifier_ValidatesOutputShape(t *testing.T) {
	p := &llmmock.Provider{
		CompleteResponse: llm.CompletionResponse{
			Content: "open instagram\nI think you should also...\nsystem volume up",
		},
	}
	c, err := classify.NewLLMClassifier(p)
	if err != nil {
		t.Fatal(err)
	}

	tasks, err := c.Classify(context.Background(), "open insta and volume up")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2 (chatty line must be dropped)", len(tasks))
	}
	if tasks[0].Verb != classify.VerbOpen || tasks[1].Verb != classify.VerbSystem {
		t.Errorf("got %v", tasks)
	}
}

func TestLLMClassifier_EmptyOutputMeansNoTasks(t *testing.T) {
	p := &llmmock.Provider{}
	c, err := classify.NewLLMClassifier(p)
	if err != nil {
		t.Fatal(err)
	}

	tasks, err := c.Classify(context.Background(), "mumble mumble")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %v, want no tasks", tasks)
	}
}

func TestLLMClassifier_BlankUtteranceSkipsModel(t *testing.T) {
	p := &llmmock.Provider{}
	c, err := classify.NewLLMClassifier(p)
	if err != nil {
		t.Fatal(err)
	}

	tasks, err := c.Classify(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %v, want no tasks", tasks)
	}
	if len(p.Calls()) != 0 {
		t.Error("model should not be called for a blank utterance")
	}
}

func TestLLMClassifier_PropagatesTransportError(t *testing.T) {
	p := &llmmock.Provider{CompleteErr: errors.New("connection refused")}
	c, err := classify.NewLLMClassifier(p)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Classify(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLLMClassifier_SendsUtteranceAndGrammar(t *testing.T) {
	p := &llmmock.Provider{
		CompleteResponse: llm.CompletionResponse{Content: "general hello"},
	}
	c, err := classify.NewLLMClassifier(p)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Classify(context.Background(), "hello"); err != nil {
		t.Fatal(err)
	}

	calls := p.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	req := calls[0].Req
	if req.SystemPrompt == "" || !strings.Contains(req.SystemPrompt, "generate image") {
		t.Error("system prompt should carry the task grammar")
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
		t.Errorf("messages: got %+v", req.Messages)
	}
}

func TestNewLLMClassifier_NilProvider(t *testing.T) {
	if _, err := classify.NewLLMClassifier(nil); err == nil {
		t.Fatal("expected error for nil provider")
	}
}
