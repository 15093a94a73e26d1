package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultModelURL = "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-xl-base-1.0"
	defaultTimeout  = 2 * time.Minute

	// variantCount is the number of images generated per request.
	variantCount = 4
)

// Generator produces one image for a prompt. Implementations must be safe
// for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string, seed int) ([]byte, error)
}

// HFClient generates images via the Hugging Face inference API.
type HFClient struct {
	apiKey   string
	modelURL string
	client   *http.Client
}

// HFOption configures an HFClient.
type HFOption func(*HFClient)

// WithModelURL overrides the inference endpoint.
func WithModelURL(u string) HFOption {
	return func(c *HFClient) {
		c.modelURL = u
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) HFOption {
	return func(c *HFClient) {
		c.client = hc
	}
}

// NewHFClient returns a client authenticated with apiKey.
func NewHFClient(apiKey string, opts ...HFOption) (*HFClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("imagegen: api key must not be empty")
	}
	c := &HFClient{
		apiKey:   apiKey,
		modelURL: defaultModelURL,
		client:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Generate requests a single image. The seed varies the output across the
// concurrent variants of one prompt.
func (c *HFClient) Generate(ctx context.Context, prompt string, seed int) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{
		"inputs": fmt.Sprintf("%s, 4k, high-resolution, photorealistic, seed=%d", prompt, seed),
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("imagegen: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagegen: call inference API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("imagegen: inference API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imagegen: read image body: %w", err)
	}
	return data, nil
}

// GenerateSet produces variantCount images for prompt concurrently and saves
// them under dir as "<prompt with underscores><n>.jpg". It returns the paths
// of the images that succeeded; a partial set is not an error as long as at
// least one variant was produced.
func GenerateSet(ctx context.Context, gen Generator, dir, prompt string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagegen: create output dir: %w", err)
	}

	base := strings.ReplaceAll(strings.TrimSpace(prompt), " ", "_")
	paths := make([]string, variantCount)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < variantCount; i++ {
		g.Go(func() error {
			data, err := gen.Generate(gctx, prompt, i)
			if err != nil {
				// A failed variant does not cancel its siblings.
				slog.Warn("image variant failed", "variant", i+1, "error", err)
				return nil
			}
			p := filepath.Join(dir, fmt.Sprintf("%s%d.jpg", base, i+1))
			if err := os.WriteFile(p, data, 0o644); err != nil {
				slog.Warn("image variant not saved", "path", p, "error", err)
				return nil
			}
			paths[i] = p
			return nil
		})
	}
	_ = g.Wait()

	var saved []string
	for _, p := range paths {
		if p != "" {
			saved = append(saved, p)
		}
	}
	if len(saved) == 0 {
		return nil, fmt.Errorf("imagegen: all %d variants failed for %q", variantCount, prompt)
	}
	return saved, nil
}
