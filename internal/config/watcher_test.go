package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const watcherBase = `
providers:
  llm:
    name: groq
`

const watcherChanged = `
server:
  log_level: debug
providers:
  llm:
    name: groq
`

func writeConfigFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
}

func TestWatcherInitialLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sara.yaml")
	writeConfigFile(t, path, watcherBase)

	w, err := NewWatcher(path, nil, WithInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if got := w.Current().Providers.LLM.Name; got != "groq" {
		t.Errorf("Current().Providers.LLM.Name = %q", got)
	}
}

func TestWatcherInitialLoadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sara.yaml")
	writeConfigFile(t, path, "server: [not a mapping]")

	if _, err := NewWatcher(path, nil); err == nil {
		t.Error("NewWatcher() must fail on an invalid initial config")
	}
}

func TestWatcherDetectsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sara.yaml")
	writeConfigFile(t, path, watcherBase)

	var mu sync.Mutex
	var gotOld, gotNew *Config
	changed := make(chan struct{})

	w, err := NewWatcher(path, func(old, new *Config) {
		mu.Lock()
		defer mu.Unlock()
		if gotNew == nil {
			gotOld, gotNew = old, new
			close(changed)
		}
	}, WithInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	// Ensure a different mtime on filesystems with coarse timestamps.
	time.Sleep(20 * time.Millisecond)
	writeConfigFile(t, path, watcherChanged)
	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reported the change")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotOld.Server.LogLevel != LogInfo {
		t.Errorf("old log level = %q", gotOld.Server.LogLevel)
	}
	if gotNew.Server.LogLevel != LogDebug {
		t.Errorf("new log level = %q", gotNew.Server.LogLevel)
	}
	if w.Current() != gotNew {
		t.Error("Current() must return the reloaded config")
	}
}

func TestWatcherKeepsOldConfigOnInvalidChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sara.yaml")
	writeConfigFile(t, path, watcherBase)

	w, err := NewWatcher(path, func(old, new *Config) {
		t.Error("onChange must not fire for an invalid config")
	}, WithInterval(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	time.Sleep(20 * time.Millisecond)
	writeConfigFile(t, path, "server: [not a mapping]")
	now := time.Now()
	if err := os.Chtimes(path, now, now); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := w.Current().Providers.LLM.Name; got != "groq" {
		t.Errorf("Current() after invalid change = %q, want the old config", got)
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sara.yaml")
	writeConfigFile(t, path, watcherBase)

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.Stop()
	w.Stop()
}
