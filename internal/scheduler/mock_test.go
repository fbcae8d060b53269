package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sells-group/prospect-cli/internal/enrich"
)

// fakeClock advances instantly on Sleep so pipeline tests run without
// real pacing delays.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return ctx.Err()
}

// mockProvider delegates to overridable funcs and counts calls.
type mockProvider struct {
	mu        sync.Mutex
	searches  int
	scrapes   int
	syntheses int

	searchFn     func(ctx context.Context, query string) ([]enrich.SearchResult, error)
	scrapeFn     func(ctx context.Context, url string) (string, error)
	synthesizeFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockProvider) Search(ctx context.Context, query string) ([]enrich.SearchResult, error) {
	m.mu.Lock()
	m.searches++
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return (&enrich.StubProvider{}).Search(ctx, query)
}

func (m *mockProvider) Scrape(ctx context.Context, url string) (string, error) {
	m.mu.Lock()
	m.scrapes++
	m.mu.Unlock()
	if m.scrapeFn != nil {
		return m.scrapeFn(ctx, url)
	}
	return (&enrich.StubProvider{}).Scrape(ctx, url)
}

func (m *mockProvider) Synthesize(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.syntheses++
	m.mu.Unlock()
	if m.synthesizeFn != nil {
		return m.synthesizeFn(ctx, prompt)
	}
	return (&enrich.StubProvider{}).Synthesize(ctx, prompt)
}
