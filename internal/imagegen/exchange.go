// Package imagegen implements the cross-process image generation protocol.
//
// The assistant process never calls the image API itself. It signals a
// request by writing "<prompt>,True" to a well-known exchange file; a
// separate worker process (cmd/sara-imagegen) polls that file, performs the
// generation, and writes back "False,False" to clear the request. The
// two-state protocol makes races benign at the cost of dropped requests
// under concurrent double-submission.
package imagegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Flag values of the exchange record.
const (
	flagPending = "True"
	flagIdle    = "False"
)

// Request is a decoded exchange record.
type Request struct {
	// Prompt is the image prompt to generate.
	Prompt string

	// Pending reports whether the record signals un-consumed work.
	Pending bool
}

// Exchange reads and writes the two-field exchange record. The mutex only
// serializes writers within this process; cross-process callers rely on the
// protocol's tolerance for benign races.
type Exchange struct {
	mu   sync.Mutex
	path string
}

// NewExchange returns an Exchange backed by the record file at path.
func NewExchange(path string) *Exchange {
	return &Exchange{path: path}
}

// Path returns the record file path.
func (e *Exchange) Path() string { return e.path }

// Read decodes the current record. A missing file decodes as not pending.
func (e *Exchange) Read() (Request, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := os.ReadFile(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Request{}, nil
		}
		return Request{}, fmt.Errorf("imagegen: read exchange: %w", err)
	}

	record := strings.TrimSpace(string(data))
	if record == "" {
		return Request{}, nil
	}
	prompt, flag, ok := strings.Cut(record, ",")
	if !ok {
		return Request{}, fmt.Errorf("imagegen: malformed exchange record %q", record)
	}
	return Request{
		Prompt:  strings.TrimSpace(prompt),
		Pending: strings.TrimSpace(flag) == flagPending,
	}, nil
}

// Signal writes a pending request for prompt. When a request is already
// pending it is overwritten; the protocol accepts dropped requests under
// double-submission rather than queueing.
func (e *Exchange) Signal(prompt string) error {
	prompt = strings.ReplaceAll(strings.TrimSpace(prompt), ",", " ")
	if prompt == "" {
		return fmt.Errorf("imagegen: prompt must not be empty")
	}
	return e.write(prompt + "," + flagPending)
}

// Clear resets the record to the idle convention "False,False".
func (e *Exchange) Clear() error {
	return e.write(flagIdle + "," + flagIdle)
}

// write replaces the record file.
func (e *Exchange) write(record string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return fmt.Errorf("imagegen: create exchange dir: %w", err)
	}
	if err := os.WriteFile(e.path, []byte(record), 0o644); err != nil {
		return fmt.Errorf("imagegen: write exchange: %w", err)
	}
	return nil
}
