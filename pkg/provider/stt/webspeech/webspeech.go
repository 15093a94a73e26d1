// Package webspeech provides a speech recognizer that drives the browser's
// Web Speech API through a headless Chromium instance controlled with go-rod.
//
// The recognizer serves a tiny recognition page from a temp file, clicks its
// start button, and polls the output element until the recognition engine has
// produced a transcript. This keeps the heavy speech models inside the
// browser; the Go side only shuttles text.
package webspeech

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/sara-labs/sara/pkg/provider/stt"
)

// Compile-time interface assertion.
var _ stt.Recognizer = (*Recognizer)(nil)

// pollInterval is the delay between reads of the recognition output element.
const pollInterval = 200 * time.Millisecond

// recognitionPage is the Web Speech API page rendered into the browser. The
// %s placeholder receives the BCP-47 input language (e.g. "en-US").
const recognitionPage = `<!DOCTYPE html>
<html lang="en">
<head><title>Speech Recognition</title></head>
<body>
  <button id="start" onclick="startRecognition()">Start</button>
  <button id="end" onclick="stopRecognition()">Stop</button>
  <p id="output"></p>
  <script>
    const output = document.getElementById('output');
    let recognition;
    function startRecognition() {
      recognition = new webkitSpeechRecognition() || new SpeechRecognition();
      recognition.lang = '%s';
      recognition.continuous = true;
      recognition.onresult = function(event) {
        const transcript = event.results[event.results.length - 1][0].transcript;
        output.textContent += transcript;
      };
      recognition.onend = function() { recognition.start(); };
      recognition.start();
    }
    function stopRecognition() {
      recognition.stop();
      output.innerHTML = "";
    }
  </script>
</body>
</html>`

// Recognizer implements stt.Recognizer via a rod-controlled browser page.
type Recognizer struct {
	language string
	pagePath string
	browser  *rod.Browser
}

// Option is a functional option for Recognizer.
type Option func(*Recognizer)

// WithLanguage sets the recognition language (BCP-47). Defaults to "en-US".
func WithLanguage(lang string) Option {
	return func(r *Recognizer) { r.language = lang }
}

// New launches a headless browser prepared for speech capture. The caller
// must Close the recognizer to release the browser.
func New(opts ...Option) (*Recognizer, error) {
	r := &Recognizer{language: "en-US"}
	for _, o := range opts {
		o(r)
	}

	dir, err := os.MkdirTemp("", "sara-webspeech-")
	if err != nil {
		return nil, fmt.Errorf("webspeech: temp dir: %w", err)
	}
	r.pagePath = filepath.Join(dir, "recognition.html")
	page := fmt.Sprintf(recognitionPage, r.language)
	if err := os.WriteFile(r.pagePath, []byte(page), 0o644); err != nil {
		return nil, fmt.Errorf("webspeech: write recognition page: %w", err)
	}

	controlURL, err := launcher.New().
		Headless(true).
		Set("use-fake-ui-for-media-stream").
		Set("use-fake-device-for-media-stream").
		Launch()
	if err != nil {
		return nil, fmt.Errorf("webspeech: launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("webspeech: connect to browser: %w", err)
	}
	r.browser = browser

	return r, nil
}

// Name implements stt.Recognizer.
func (r *Recognizer) Name() string { return "webspeech" }

// Recognize implements stt.Recognizer. It blocks until the Web Speech engine
// produces a transcript or ctx is cancelled.
func (r *Recognizer) Recognize(ctx context.Context) (string, error) {
	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + r.pagePath})
	if err != nil {
		return "", fmt.Errorf("webspeech: open recognition page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	start, err := page.Element("#start")
	if err != nil {
		return "", fmt.Errorf("webspeech: start button: %w", err)
	}
	if err := start.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", fmt.Errorf("webspeech: click start: %w", err)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		out, err := page.Element("#output")
		if err != nil {
			continue
		}
		text, err := out.Text()
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}

		// Stop the engine before returning; errors here are harmless.
		if end, err := page.Element("#end"); err == nil {
			_ = end.Click(proto.InputMouseButtonLeft, 1)
		}

		return stt.ModifyQuery(text), nil
	}
}

// Close shuts down the browser and removes the recognition page.
func (r *Recognizer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
	}
	if r.pagePath != "" {
		os.RemoveAll(filepath.Dir(r.pagePath))
	}
	return err
}
