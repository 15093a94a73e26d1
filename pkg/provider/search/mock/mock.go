// Package mock provides a test double for the search.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/sara-labs/sara/pkg/provider/search"
)

// Compile-time interface assertion.
var _ search.Provider = (*Provider)(nil)

// SearchCall records a single invocation of Search.
type SearchCall struct {
	Query string
	Max   int
}

// Provider is a mock implementation of search.Provider.
// Zero values cause Search to return nil results and a nil error.
type Provider struct {
	mu sync.Mutex

	// Results is returned from every Search call.
	Results []search.Result

	// Err, if non-nil, is returned as the error from Search.
	Err error

	// SearchCalls records every invocation of Search in order.
	SearchCalls []SearchCall
}

// Search implements search.Provider.
func (p *Provider) Search(ctx context.Context, query string, max int) ([]search.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SearchCalls = append(p.SearchCalls, SearchCall{Query: query, Max: max})
	if p.Err != nil {
		return nil, p.Err
	}
	out := make([]search.Result, len(p.Results))
	copy(out, p.Results)
	return out, nil
}

// Name implements search.Provider.
func (p *Provider) Name() string { return "mock" }

// Calls returns a snapshot of recorded Search invocations.
func (p *Provider) Calls() []SearchCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SearchCall, len(p.SearchCalls))
	copy(out, p.SearchCalls)
	return out
}
