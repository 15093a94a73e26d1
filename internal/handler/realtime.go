package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sara-labs/sara/pkg/provider/search"
)

// maxSnippets caps how many search results feed the realtime context.
const maxSnippets = 5

// Realtime answers a query that needs fresh information. The top search
// snippets are folded into the model context; when the search itself fails
// the query degrades to a plain chat answer instead of failing outright.
type Realtime struct {
	engine *ChatEngine
	search search.Provider
}

// NewRealtime returns a realtime handler backed by engine and searcher.
func NewRealtime(engine *ChatEngine, searcher search.Provider) (*Realtime, error) {
	if engine == nil {
		return nil, fmt.Errorf("handler: chat engine must not be nil")
	}
	if searcher == nil {
		return nil, fmt.Errorf("handler: search provider must not be nil")
	}
	return &Realtime{engine: engine, search: searcher}, nil
}

// Handle answers query with search-grounded context.
func (r *Realtime) Handle(ctx context.Context, query string) Result {
	snippets := r.snippetContext(ctx, query)
	return r.engine.chat(ctx, query, snippets, false)
}

// snippetContext searches for query and renders the results as one system
// turn. It returns "" when the search fails or comes back empty.
func (r *Realtime) snippetContext(ctx context.Context, query string) string {
	results, err := r.search.Search(ctx, query, maxSnippets)
	if err != nil {
		slog.Warn("search failed, answering without snippets", "provider", r.search.Name(), "error", err)
		r.engine.metrics.RecordProviderError(ctx, r.search.Name(), "search")
		r.engine.metrics.RecordProviderRequest(ctx, r.search.Name(), "search", "error")
		return ""
	}
	r.engine.metrics.RecordProviderRequest(ctx, r.search.Name(), "search", "ok")
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The search results for %q are:\n[start]\n", query)
	for _, res := range results {
		fmt.Fprintf(&b, "Title: %s\nDescription: %s\n\n", res.Title, res.Description)
	}
	b.WriteString("[end]\nUse these results to answer the user's question with up-to-date information.")
	return b.String()
}

var _ Handler = (*Realtime)(nil)
