package enrich

import (
	"context"
	"fmt"
	"strings"
)

// Compile-time interface check.
var _ Provider = (*StubProvider)(nil)

// StubProvider returns canned responses for offline runs and tests.
// Responses are deterministic functions of the query so scheduler runs
// produce stable confidence scores without network access.
type StubProvider struct{}

func (s *StubProvider) Search(_ context.Context, query string) ([]SearchResult, error) {
	slug := querySlug(query)
	return []SearchResult{
		{
			URL:     fmt.Sprintf("https://www.%s.com", slug),
			Title:   strings.TrimSpace(query),
			Snippet: "Official practice website. " + query,
		},
		{
			URL:     fmt.Sprintf("https://directory.healthgrades.example/%s", slug),
			Title:   "Provider directory listing",
			Snippet: query,
		},
	}, nil
}

func (s *StubProvider) Scrape(_ context.Context, url string) (string, error) {
	return fmt.Sprintf("# About us\n\nScraped content for %s. Accepting new patients. Contact our office to schedule.", url), nil
}

func (s *StubProvider) Synthesize(_ context.Context, prompt string) (string, error) {
	first := prompt
	if idx := strings.IndexByte(first, '\n'); idx > 0 {
		first = first[:idx]
	}
	return "Summary: " + strings.TrimSpace(first), nil
}

// querySlug collapses a query to a lowercase domain-safe token.
func querySlug(query string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(query) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "practice"
	}
	return sb.String()
}
