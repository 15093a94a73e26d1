// Package chatlog persists the conversation history as a flat JSON file.
//
// The file holds a single JSON array of turns and is replaced wholesale on
// every save. There are no transactional guarantees beyond the atomic
// rename; the recovery policy for a failed chat generation is to truncate
// the log to empty rather than attempt a rollback.
//
// The store's mutex covers the full load→mutate→save cycle via Update, so
// two chat-producing handlers classified out of one utterance can never race
// on the file.
package chatlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sara-labs/sara/internal/conv"
)

// DefaultMaxTurns caps retained history at 20 exchanges (user + assistant).
const DefaultMaxTurns = 40

// Store is a file-backed chat log with sliding-window retention.
//
// All methods are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	path     string
	maxTurns int
}

// Option is a functional option for Store.
type Option func(*Store)

// WithMaxTurns overrides the retention window. Values below 1 fall back to
// the default.
func WithMaxTurns(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.maxTurns = n
		}
	}
}

// New creates a Store backed by the file at path. The file is created lazily
// on first save; a missing file reads as empty history.
func New(path string, opts ...Option) *Store {
	s := &Store{path: path, maxTurns: DefaultMaxTurns}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load returns the persisted history. A missing or corrupt file is treated
// as "no history": it returns an empty slice, never an error. Corruption is
// logged locally and not escalated.
func (s *Store) Load() []conv.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the persisted history with turns, truncated to the retention
// window (oldest discarded first). The file is written to a temp sibling and
// renamed into place.
func (s *Store) Save(turns []conv.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(turns)
}

// Reset truncates the log to an empty array. Used by the fail-safe path
// after an unrecoverable chat-generation error.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(nil)
}

// Update runs fn over the current history and persists its result, all under
// the store's lock. This is the only safe way for a handler to do a
// load-modify-save cycle; direct Load+Save from two goroutines could
// interleave.
func (s *Store) Update(fn func(turns []conv.Turn) []conv.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(fn(s.load()))
}

// load reads and decodes the backing file. Caller must hold s.mu.
func (s *Store) load() []conv.Turn {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("chatlog: read failed, treating as empty", "path", s.path, "err", err)
		}
		return []conv.Turn{}
	}

	var turns []conv.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		slog.Warn("chatlog: corrupt log, treating as empty", "path", s.path, "err", err)
		return []conv.Turn{}
	}
	if turns == nil {
		turns = []conv.Turn{}
	}
	return turns
}

// save truncates to the retention window and atomically replaces the file.
// Caller must hold s.mu.
func (s *Store) save(turns []conv.Turn) error {
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	if turns == nil {
		turns = []conv.Turn{}
	}

	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("chatlog: encode: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("chatlog: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".chatlog-*")
	if err != nil {
		return fmt.Errorf("chatlog: temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chatlog: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chatlog: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chatlog: replace %q: %w", s.path, err)
	}
	return nil
}
