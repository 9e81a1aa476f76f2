package domain

import "context"

// WebSearchResult is a single hit from the external search provider. Content
// is already coerced to a string by the adapter; providers sometimes return
// structured snippets instead of plain text.
type WebSearchResult struct {
	Title   string
	URL     string
	Content string
}

// WebSearchClient defines the interface for querying the external
// search-engine API used to fill knowledge gaps.
type WebSearchClient interface {
	Search(ctx context.Context, query string) ([]WebSearchResult, error)
}
