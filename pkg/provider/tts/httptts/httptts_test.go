package httptts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sara-labs/sara/pkg/provider/tts/httptts"
)

func TestSpeak_PostsText(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		got = body["text"]
	}))
	defer srv.Close()

	s, err := httptts.New(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Speak(context.Background(), "hello there"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello there" {
		t.Errorf("text: got %q, want %q", got, "hello there")
	}
}

func TestSpeak_EmptyTextIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	s, err := httptts.New(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Speak(context.Background(), "   "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("server should not be called for blank text")
	}
}

func TestSpeak_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, err := httptts.New(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Speak(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestNew_EmptyBaseURL(t *testing.T) {
	if _, err := httptts.New(""); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
