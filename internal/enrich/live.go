package enrich

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/claude"
	"github.com/sells-group/prospect-cli/pkg/jina"
)

// LiveProvider composes Jina (search + reader) and Claude (synthesis)
// behind the Provider interface. Every call passes through a shared
// rate limiter, a per-service circuit breaker, and transient-error
// retries.
type LiveProvider struct {
	jina    jina.Client
	claude  claude.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig

	searchBreaker *resilience.CircuitBreaker
	scrapeBreaker *resilience.CircuitBreaker
	synthBreaker  *resilience.CircuitBreaker
}

// LiveOption configures a LiveProvider.
type LiveOption func(*LiveProvider)

// WithRateLimit caps provider calls per second across all operations.
func WithRateLimit(perSecond float64, burst int) LiveOption {
	return func(p *LiveProvider) {
		p.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRetryConfig overrides the default retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) LiveOption {
	return func(p *LiveProvider) {
		p.retry = cfg
	}
}

// NewLiveProvider creates a provider backed by real upstream APIs.
func NewLiveProvider(jinaClient jina.Client, claudeClient claude.Client, opts ...LiveOption) *LiveProvider {
	cbCfg := resilience.DefaultCircuitBreakerConfig()
	p := &LiveProvider{
		jina:          jinaClient,
		claude:        claudeClient,
		limiter:       rate.NewLimiter(rate.Limit(2), 4),
		retry:         resilience.DefaultRetryConfig(),
		searchBreaker: resilience.NewCircuitBreaker(cbCfg),
		scrapeBreaker: resilience.NewCircuitBreaker(cbCfg),
		synthBreaker:  resilience.NewCircuitBreaker(cbCfg),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *LiveProvider) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "enrich: rate limit wait")
	}

	retry := p.retry
	retry.OnRetry = resilience.RetryLogger("jina", "search")

	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*jina.SearchResponse, error) {
		return resilience.ExecuteVal(ctx, p.searchBreaker, func(ctx context.Context) (*jina.SearchResponse, error) {
			return p.jina.Search(ctx, query)
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "enrich: search")
	}

	results := make([]SearchResult, 0, len(resp.Data))
	for _, r := range resp.Data {
		snippet := r.Description
		if snippet == "" {
			snippet = r.Content
		}
		results = append(results, SearchResult{
			URL:     r.URL,
			Title:   r.Title,
			Snippet: snippet,
		})
	}
	return results, nil
}

func (p *LiveProvider) Scrape(ctx context.Context, url string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "enrich: rate limit wait")
	}

	retry := p.retry
	retry.OnRetry = resilience.RetryLogger("jina", "read")

	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*jina.ReadResponse, error) {
		return resilience.ExecuteVal(ctx, p.scrapeBreaker, func(ctx context.Context) (*jina.ReadResponse, error) {
			return p.jina.Read(ctx, url)
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: scrape")
	}
	return resp.Data.Content, nil
}

func (p *LiveProvider) Synthesize(ctx context.Context, prompt string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "enrich: rate limit wait")
	}

	retry := p.retry
	retry.OnRetry = resilience.RetryLogger("claude", "complete")

	text, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (string, error) {
		return resilience.ExecuteVal(ctx, p.synthBreaker, func(ctx context.Context) (string, error) {
			return p.claude.Complete(ctx, prompt)
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "enrich: synthesize")
	}
	return text, nil
}
