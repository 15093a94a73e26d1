// Package duckduckgo provides a search provider backed by the DuckDuckGo
// HTML endpoint (html.duckduckgo.com), which serves plain markup without
// JavaScript and tolerates automated clients.
//
// Results are extracted from the result list markup with x/net/html. The
// parser looks for anchors carrying the "result__a" class and pairs them
// with the adjacent "result__snippet" text.
package duckduckgo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/sara-labs/sara/pkg/provider/search"
)

// Compile-time interface assertion.
var _ search.Provider = (*Provider)(nil)

const (
	defaultBaseURL = "https://html.duckduckgo.com/html/"
	defaultTimeout = 10 * time.Second

	// userAgent identifies the client. The HTML endpoint rejects empty UAs.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120 Safari/537.36"
)

// Provider implements search.Provider against the DuckDuckGo HTML endpoint.
type Provider struct {
	baseURL string
	client  *http.Client
}

// Option is a functional option for Provider.
type Option func(*Provider)

// WithBaseURL overrides the DuckDuckGo HTML endpoint. Useful for tests.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// WithTimeout sets the per-request HTTP timeout. Defaults to 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.client.Timeout = d }
}

// New constructs a DuckDuckGo search provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Name implements search.Provider.
func (p *Provider) Name() string { return "duckduckgo" }

// Search implements search.Provider.
func (p *Provider) Search(ctx context.Context, query string, max int) ([]search.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("duckduckgo: query must not be empty")
	}
	if max <= 0 {
		max = 5
	}

	reqURL := p.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo: unexpected status %d", resp.StatusCode)
	}

	results, err := parseResults(resp.Body, max)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo: parse results: %w", err)
	}
	return results, nil
}

// parseResults walks the HTML tree collecting result anchors and snippets.
func parseResults(r io.Reader, max int) ([]search.Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var results []search.Result
	var current *search.Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= max && current == nil {
			return
		}
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				if current != nil {
					results = append(results, *current)
				}
				current = &search.Result{
					Title: strings.TrimSpace(textContent(n)),
					URL:   resolveHref(attr(n, "href")),
				}
			case hasClass(n, "result__snippet"):
				if current != nil && current.Description == "" {
					current.Description = strings.TrimSpace(textContent(n))
					results = append(results, *current)
					current = nil
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil && len(results) < max {
		results = append(results, *current)
	}
	if len(results) > max {
		results = results[:max]
	}
	return results, nil
}

// resolveHref unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/?uddg=<target>)
// into the target URL. Plain links pass through unchanged.
func resolveHref(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.Contains(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

// attr returns the value of the named attribute on n, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// hasClass reports whether n carries class among its space-separated classes.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// textContent returns the concatenated text of n's subtree.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
