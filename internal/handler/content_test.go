package handler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sara-labs/sara/pkg/provider/llm"
	llmmock "github.com/sara-labs/sara/pkg/provider/llm/mock"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My:Topic/Name?", "mytopicname"},
		{"A Letter To HR", "alettertohr"},
		{`report<2024>|final`, "report2024final"},
		{"  plain  ", "plain"},
		{`\/*?:"<>| `, ""},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContentWriterSavesAndOpens(t *testing.T) {
	dir := t.TempDir()
	provider := &llmmock.Provider{CompleteResponse: llm.CompletionResponse{Content: "Dear team,\n\nGoodbye.\n"}}

	var opened string
	cw, err := NewContentWriter(provider, dir, WithOpener(func(path string) error {
		opened = path
		return nil
	}))
	if err != nil {
		t.Fatalf("NewContentWriter() error = %v", err)
	}

	res := cw.Handle(context.Background(), "A Resignation Letter")
	if !res.OK {
		t.Fatalf("Handle() failed: %q", res.Response)
	}

	want := filepath.Join(dir, "aresignationletter.txt")
	if opened != want {
		t.Errorf("opened %q, want %q", opened, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading saved content: %v", err)
	}
	if got := string(data); got != "Dear team,\nGoodbye." {
		t.Errorf("saved content = %q", got)
	}
}

func TestContentWriterFailureApologizes(t *testing.T) {
	provider := &llmmock.Provider{CompleteErr: errors.New("model unavailable")}
	cw, err := NewContentWriter(provider, t.TempDir(), WithOpener(func(string) error {
		t.Error("nothing should be opened on failure")
		return nil
	}))
	if err != nil {
		t.Fatalf("NewContentWriter() error = %v", err)
	}

	res := cw.Handle(context.Background(), "anything")
	if res.OK {
		t.Fatal("Handle() should fail when the completion fails")
	}
	if res.Response != apologyTransient {
		t.Errorf("Response = %q, want %q", res.Response, apologyTransient)
	}
}

func TestContentWriterOpenFailureStillSucceeds(t *testing.T) {
	provider := &llmmock.Provider{CompleteResponse: llm.CompletionResponse{Content: "body"}}
	cw, err := NewContentWriter(provider, t.TempDir(), WithOpener(func(string) error {
		return errors.New("no display")
	}))
	if err != nil {
		t.Fatalf("NewContentWriter() error = %v", err)
	}
	if res := cw.Handle(context.Background(), "notes"); !res.OK {
		t.Errorf("a failed editor open must not fail the task: %+v", res)
	}
}
