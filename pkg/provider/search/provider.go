// Package search defines the Provider interface for realtime web search
// backends.
//
// The realtime chat handler folds the titles and descriptions of the top
// results into the model's context; the app-open fallback uses the first
// organic result URL. Implementations must bound their outbound HTTP calls
// with a default timeout.
package search

import "context"

// Result is a single organic search result.
type Result struct {
	// Title is the result headline.
	Title string

	// Description is the snippet shown under the headline. May be empty.
	Description string

	// URL is the target link of the result.
	URL string
}

// Provider is the abstraction over a web search backend.
//
// Implementations must be safe for concurrent use.
type Provider interface {
	// Search returns up to max organic results for query, best first.
	// An empty result list with a nil error is a valid outcome.
	Search(ctx context.Context, query string, max int) ([]Result, error)

	// Name returns a short identifier for logs and metrics.
	Name() string
}
