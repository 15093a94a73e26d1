package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sara-labs/sara/internal/imagegen"
)

// ImageRequester signals image generation requests to the worker process
// through the exchange file. The images themselves are produced out of
// process; the handler only records the request.
type ImageRequester struct {
	exchange *imagegen.Exchange
}

// NewImageRequester returns a handler writing to exchange.
func NewImageRequester(exchange *imagegen.Exchange) (*ImageRequester, error) {
	if exchange == nil {
		return nil, fmt.Errorf("handler: image exchange must not be nil")
	}
	return &ImageRequester{exchange: exchange}, nil
}

// Handle records prompt as a pending generation request.
func (h *ImageRequester) Handle(_ context.Context, prompt string) Result {
	if err := h.exchange.Signal(prompt); err != nil {
		slog.Error("image request not recorded", "prompt", prompt, "error", err)
		return Result{OK: false, Response: "Sorry, I couldn't start the image generation."}
	}
	return Result{OK: true, Response: "I'm generating the images now. They'll open shortly."}
}

var _ Handler = (*ImageRequester)(nil)
