// Package enrich defines the provider boundary the enrichment core
// consumes: web search, page scraping, and AI synthesis.
package enrich

import "context"

// SearchResult is a single hit from a web search.
type SearchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Provider is an external intelligence source. All calls may fail or
// time out; callers treat failure as "no evidence", never as fatal.
type Provider interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
	Scrape(ctx context.Context, url string) (string, error)
	Synthesize(ctx context.Context, prompt string) (string, error)
}
