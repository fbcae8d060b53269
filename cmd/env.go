package main

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/enrich"
	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/resilience"
	"github.com/sells-group/prospect-cli/internal/scheduler"
	"github.com/sells-group/prospect-cli/internal/store"
	"github.com/sells-group/prospect-cli/pkg/claude"
	"github.com/sells-group/prospect-cli/pkg/jina"
)

// buildProvider wires the enrichment provider: stubs when offline,
// otherwise real Jina and Anthropic clients behind rate limiting and
// retries.
func buildProvider(offline bool) (enrich.Provider, error) {
	if offline {
		return &enrich.StubProvider{}, nil
	}

	var missing []string
	if cfg.Jina.Key == "" {
		missing = append(missing, "PROSPECT_JINA_KEY (search + scraping)")
	}
	if cfg.Anthropic.Key == "" {
		missing = append(missing, "PROSPECT_ANTHROPIC_KEY (synthesis)")
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("missing required API keys:\n  %s\n\nSet these env vars or use --offline for stub mode", strings.Join(missing, "\n  "))
	}

	jinaClient := jina.NewClient(cfg.Jina.Key,
		jina.WithBaseURL(cfg.Jina.BaseURL),
		jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL),
	)
	claudeClient := claude.NewClient(cfg.Anthropic.Key, cfg.Anthropic.Model)

	retry := resilience.DefaultRetryConfig()
	if cfg.Provider.RetryMaxAttempts > 0 {
		retry.MaxAttempts = cfg.Provider.RetryMaxAttempts
	}

	return enrich.NewLiveProvider(jinaClient, claudeClient,
		enrich.WithRateLimit(cfg.Provider.RateLimitPerSecond, cfg.Provider.RateLimitBurst),
		enrich.WithRetryConfig(retry),
	), nil
}

// buildScheduler assembles the staged pipeline from config.
func buildScheduler(provider enrich.Provider) (*scheduler.Scheduler, error) {
	plan := scheduler.DefaultPlan()
	if cfg.Scheduler.PlanPath != "" {
		loaded, err := scheduler.LoadPlan(cfg.Scheduler.PlanPath)
		if err != nil {
			return nil, err
		}
		plan = loaded
	}

	opts := []scheduler.Option{scheduler.WithPlan(plan)}
	if cfg.Scheduler.CallTimeoutSecs > 0 {
		opts = append(opts, scheduler.WithCallTimeout(time.Duration(cfg.Scheduler.CallTimeoutSecs)*time.Second))
	}

	return scheduler.New(provider, opts...), nil
}

// configuredMaxDepth resolves the stage depth from config, defaulting
// to the full pipeline on unknown values.
func configuredMaxDepth() model.Stage {
	stage := model.Stage(cfg.Scheduler.MaxDepth)
	if stage.Index() < 0 {
		return model.StageComplete
	}
	return stage
}

// openStore opens the configured batch history backend.
func openStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	var err error
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// saveBatchHistory records a settled batch, logging rather than
// failing on store errors.
func saveBatchHistory(ctx context.Context, st store.Store, rec store.BatchRecord, items []model.BatchItem) {
	if st == nil {
		return
	}
	if err := st.SaveBatch(ctx, rec, items); err != nil {
		zap.L().Warn("failed to save batch history", zap.Error(err))
	}
}
