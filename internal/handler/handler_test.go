package handler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sara-labs/sara/internal/classify"
	"github.com/sara-labs/sara/internal/imagegen"
)

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()
	reg.Register(classify.VerbGeneral, Func(func(context.Context, string) Result {
		return Result{OK: true, Response: "hi"}
	}))

	h, ok := reg.Resolve(classify.VerbGeneral)
	if !ok {
		t.Fatal("registered verb not resolved")
	}
	if res := h.Handle(context.Background(), "x"); !res.OK || res.Response != "hi" {
		t.Errorf("Handle() = %+v", res)
	}
	if _, ok := reg.Resolve(classify.VerbOpen); ok {
		t.Error("unregistered verb should not resolve")
	}
}

func TestRegistryRecoversPanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register(classify.VerbOpen, Func(func(context.Context, string) Result {
		panic("handler bug")
	}))

	h, _ := reg.Resolve(classify.VerbOpen)
	res := h.Handle(context.Background(), "spotify")
	if res.OK {
		t.Error("a panicking handler must report failure")
	}
	if res.Response == "" {
		t.Error("a panicking handler must still produce a user-facing message")
	}
}

func TestImageRequesterSignalsExchange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imagegeneration.data")
	ex := imagegen.NewExchange(path)
	h, err := NewImageRequester(ex)
	if err != nil {
		t.Fatalf("NewImageRequester() error = %v", err)
	}

	res := h.Handle(context.Background(), "a sunset over mountains")
	if !res.OK {
		t.Fatalf("Handle() failed: %q", res.Response)
	}
	if !strings.Contains(res.Response, "generating") {
		t.Errorf("Response = %q, want an acknowledgement", res.Response)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading exchange file: %v", err)
	}
	if got, want := string(data), "a sunset over mountains,True"; got != want {
		t.Errorf("exchange record = %q, want %q", got, want)
	}
}

func TestImageRequesterBlankPromptFails(t *testing.T) {
	ex := imagegen.NewExchange(filepath.Join(t.TempDir(), "imagegeneration.data"))
	h, err := NewImageRequester(ex)
	if err != nil {
		t.Fatalf("NewImageRequester() error = %v", err)
	}
	if res := h.Handle(context.Background(), "  "); res.OK {
		t.Error("a blank prompt must not be recorded as a request")
	}
}
