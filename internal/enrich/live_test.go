package enrich

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/pkg/jina"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeJina struct {
	searchResp *jina.SearchResponse
	searchErr  error
	readResp   *jina.ReadResponse
	readErr    error
	calls      int
}

func (f *fakeJina) Search(context.Context, string) (*jina.SearchResponse, error) {
	f.calls++
	return f.searchResp, f.searchErr
}

func (f *fakeJina) Read(context.Context, string) (*jina.ReadResponse, error) {
	f.calls++
	return f.readResp, f.readErr
}

type fakeClaude struct {
	text string
	err  error
}

func (f *fakeClaude) Complete(context.Context, string) (string, error) {
	return f.text, f.err
}

func noRetry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = 1
	return cfg
}

func TestLiveProvider_Search(t *testing.T) {
	j := &fakeJina{
		searchResp: &jina.SearchResponse{
			Code: 200,
			Data: []jina.SearchResult{
				{Title: "Smith Dermatology", URL: "https://smithderm.com", Description: "Dermatology clinic"},
				{Title: "Directory", URL: "https://dir.example.com", Content: "fallback snippet"},
			},
		},
	}
	p := NewLiveProvider(j, &fakeClaude{}, WithRetryConfig(noRetry()), WithRateLimit(1000, 1000))

	results, err := p.Search(context.Background(), "Dr. Jane Smith")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Dermatology clinic", results[0].Snippet)
	// Content backfills an empty description.
	assert.Equal(t, "fallback snippet", results[1].Snippet)
}

func TestLiveProvider_SearchEmpty(t *testing.T) {
	j := &fakeJina{searchResp: &jina.SearchResponse{Code: 422}}
	p := NewLiveProvider(j, &fakeClaude{}, WithRetryConfig(noRetry()), WithRateLimit(1000, 1000))

	results, err := p.Search(context.Background(), "no hits")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLiveProvider_Scrape(t *testing.T) {
	j := &fakeJina{
		readResp: &jina.ReadResponse{
			Code: 200,
			Data: jina.ReadData{Content: "# About\n\nWe treat skin."},
		},
	}
	p := NewLiveProvider(j, &fakeClaude{}, WithRetryConfig(noRetry()), WithRateLimit(1000, 1000))

	content, err := p.Scrape(context.Background(), "https://smithderm.com")
	require.NoError(t, err)
	assert.Contains(t, content, "We treat skin")
}

func TestLiveProvider_Synthesize(t *testing.T) {
	p := NewLiveProvider(&fakeJina{}, &fakeClaude{text: "A strong dermatology lead."},
		WithRetryConfig(noRetry()), WithRateLimit(1000, 1000))

	text, err := p.Synthesize(context.Background(), "profile this practice")
	require.NoError(t, err)
	assert.Equal(t, "A strong dermatology lead.", text)
}

func TestLiveProvider_ErrorsPropagate(t *testing.T) {
	j := &fakeJina{searchErr: eris.New("upstream down")}
	p := NewLiveProvider(j, &fakeClaude{err: eris.New("api error")},
		WithRetryConfig(noRetry()), WithRateLimit(1000, 1000))

	_, err := p.Search(context.Background(), "query")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")

	_, err = p.Synthesize(context.Background(), "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api error")
}

func TestLiveProvider_CircuitBreakersAreIndependent(t *testing.T) {
	// Drive the search breaker open; scraping keeps working.
	j := &fakeJina{
		searchErr: eris.New("search down"),
		readResp:  &jina.ReadResponse{Data: jina.ReadData{Content: "fine"}},
	}
	p := NewLiveProvider(j, &fakeClaude{}, WithRetryConfig(noRetry()), WithRateLimit(1000, 1000))

	for i := 0; i < 6; i++ {
		_, _ = p.Search(context.Background(), "query")
	}
	_, err := p.Search(context.Background(), "query")
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)

	content, err := p.Scrape(context.Background(), "https://smithderm.com")
	require.NoError(t, err)
	assert.Equal(t, "fine", content)
}

func TestStubProvider_Deterministic(t *testing.T) {
	stub := &StubProvider{}
	ctx := context.Background()

	a, err := stub.Search(ctx, "Dr. Jane Smith dermatology")
	require.NoError(t, err)
	b, err := stub.Search(ctx, "Dr. Jane Smith dermatology")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	require.NotEmpty(t, a)
	assert.Contains(t, a[0].URL, "https://www.")

	content, err := stub.Scrape(ctx, "https://example.com")
	require.NoError(t, err)
	assert.Contains(t, content, "example.com")

	text, err := stub.Synthesize(ctx, "Profile the practice of Dr. Jane Smith\nmore")
	require.NoError(t, err)
	assert.Contains(t, text, "Summary:")
}
