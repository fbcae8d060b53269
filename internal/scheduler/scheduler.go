// Package scheduler drives one subject through the ordered enrichment
// stages, accumulating confidence and emitting progress snapshots.
package scheduler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/confidence"
	"github.com/sells-group/prospect-cli/internal/enrich"
	"github.com/sells-group/prospect-cli/internal/model"
)

// EmitFunc receives every progress transition, in order.
type EmitFunc func(model.ProgressSnapshot)

// Scheduler runs the staged enrichment pipeline for single subjects.
// It is stateless across runs and safe for concurrent use.
type Scheduler struct {
	provider    enrich.Provider
	plan        Plan
	clock       Clock
	callTimeout time.Duration
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPlan overrides the default stage budgets.
func WithPlan(plan Plan) Option {
	return func(s *Scheduler) {
		s.plan = plan
	}
}

// WithClock injects a clock, used by tests to avoid real pacing sleeps.
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// WithCallTimeout bounds each individual provider call.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.callTimeout = d
	}
}

// New creates a Scheduler.
func New(provider enrich.Provider, opts ...Option) *Scheduler {
	s := &Scheduler{
		provider:    provider,
		plan:        DefaultPlan(),
		clock:       RealClock(),
		callTimeout: 20 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// runState carries mutable state for one run.
type runState struct {
	subject     model.Subject
	acc         *confidence.Accumulator
	result      *model.EnrichmentResult
	emit        EmitFunc
	start       time.Time
	totalBudget time.Duration
}

// stageCall is one provider call planned for a stage.
type stageCall struct {
	action string
	run    func(ctx context.Context, st *runState) (*confidence.Evidence, *model.SourceRef, error)
}

// Run drives the subject through the stage sequence, truncated at
// maxDepth. Provider failures degrade confidence growth but never fail
// the run; the only error returned is for invalid input. Cancellation
// via ctx is cooperative: it is observed at stage boundaries and
// between calls, an in-flight call is allowed to finish, and one final
// snapshot is emitted before returning.
func (s *Scheduler) Run(ctx context.Context, subject model.Subject, maxDepth model.Stage, emit EmitFunc) (*model.EnrichmentResult, error) {
	if strings.TrimSpace(subject.Name) == "" {
		return nil, eris.New("scheduler: subject has no name")
	}
	if maxDepth.Index() < 0 {
		maxDepth = model.StageComplete
	}
	if emit == nil {
		emit = func(model.ProgressSnapshot) {}
	}

	log := zap.L().With(zap.String("subject", subject.Name), zap.String("subject_id", subject.ID))

	st := &runState{
		subject: subject,
		acc:     confidence.NewAccumulator(subject),
		result: &model.EnrichmentResult{
			SubjectID: subject.ID,
			Subject:   subject,
			Website:   subject.Website,
		},
		emit:        emit,
		start:       s.clock.Now(),
		totalBudget: s.plan.TotalMinDuration(maxDepth),
	}

	startPercent := 0
	for _, stage := range model.Stages {
		if ctx.Err() != nil {
			return s.finishCancelled(st, startPercent, log), nil
		}

		s.runStage(ctx, st, stage, startPercent, log)
		startPercent = stage.EndPercent()

		if stage == maxDepth {
			break
		}
	}

	st.result.Confidence = st.acc.Score()
	st.result.Elapsed = s.clock.Now().Sub(st.start)
	log.Info("scheduler: run complete",
		zap.Float64("confidence", st.result.Confidence),
		zap.Int("provider_calls", st.result.ProviderCalls),
		zap.Int("failed_calls", st.result.FailedCalls),
		zap.Duration("elapsed", st.result.Elapsed),
	)
	return st.result, nil
}

// runStage executes one stage: active snapshot, provider calls, pacing
// sleep, stage-complete snapshot. A partially executed stage is never
// rolled back.
func (s *Scheduler) runStage(ctx context.Context, st *runState, stage model.Stage, startPercent int, log *zap.Logger) {
	budget := s.plan.Budget(stage)
	stageStart := s.clock.Now()

	st.emit(s.snapshot(st, stage, startPercent, fmt.Sprintf("stage %s: starting", stage)))

	calls := s.stageCalls(stage, st.subject)
	if budget.MaxCalls > 0 && len(calls) > budget.MaxCalls {
		calls = calls[:budget.MaxCalls]
	}

	for _, call := range calls {
		if ctx.Err() != nil {
			break
		}

		st.emit(s.snapshot(st, stage, startPercent, call.action))

		// The call runs on a detached context so a cooperative cancel
		// lets the in-flight call finish and still have its result
		// applied. Only the per-call timeout bounds it.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.callTimeout)
		ev, src, err := call.run(callCtx, st)
		cancel()

		st.result.ProviderCalls++
		if err != nil {
			// Failed or timed-out calls contribute no evidence and
			// never abort the stage.
			st.result.FailedCalls++
			log.Warn("scheduler: provider call failed",
				zap.String("stage", string(stage)),
				zap.String("action", call.action),
				zap.Error(err),
			)
			continue
		}
		if ev != nil {
			st.acc.Add(*ev)
		}
		if src != nil {
			st.result.Sources = append(st.result.Sources, *src)
		}
	}

	// Pace out the remainder of the stage's minimum budget.
	if ctx.Err() == nil {
		if remaining := budget.MinDuration - s.clock.Now().Sub(stageStart); remaining > 0 {
			_ = s.clock.Sleep(ctx, remaining)
		}
	}

	st.result.StagesRun = append(st.result.StagesRun, stage)
	st.result.FinalStage = stage
	st.result.Confidence = st.acc.Score()

	st.emit(s.snapshot(st, stage, stage.EndPercent(), fmt.Sprintf("stage %s: complete", stage)))
}

// finishCancelled emits the final snapshot for a cancelled run and
// returns whatever data exists.
func (s *Scheduler) finishCancelled(st *runState, percent int, log *zap.Logger) *model.EnrichmentResult {
	st.result.Cancelled = true
	st.result.Confidence = st.acc.Score()
	st.result.Elapsed = s.clock.Now().Sub(st.start)

	snap := s.snapshot(st, st.result.FinalStage, percent, "cancelled")
	snap.EstimatedRemaining = 0
	st.emit(snap)

	log.Info("scheduler: run cancelled",
		zap.Float64("confidence", st.result.Confidence),
		zap.Int("stages_run", len(st.result.StagesRun)),
	)
	return st.result
}

func (s *Scheduler) snapshot(st *runState, stage model.Stage, percent int, action string) model.ProgressSnapshot {
	elapsed := s.clock.Now().Sub(st.start)
	remaining := st.totalBudget - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return model.ProgressSnapshot{
		SubjectID:            st.subject.ID,
		Stage:                stage,
		PercentComplete:      percent,
		CurrentAction:        action,
		Confidence:           st.acc.Score(),
		Elapsed:              elapsed,
		EstimatedRemaining:   remaining,
		UnlockedCapabilities: model.UnlockedCapabilities(percent),
	}
}

// stageCalls plans the provider calls for a stage. The instant stage
// does a single directory lookup; later stages add website discovery,
// scraping, social lookups, and AI synthesis.
func (s *Scheduler) stageCalls(stage model.Stage, subject model.Subject) []stageCall {
	switch stage {
	case model.StageInstant:
		return []stageCall{
			{action: "searching provider directories", run: s.callDirectorySearch},
		}
	case model.StageBasic:
		return []stageCall{
			{action: "locating official website", run: s.callWebsiteSearch},
			{action: "reading website homepage", run: s.callScrapeWebsite},
		}
	case model.StageEnhanced:
		return []stageCall{
			{action: "reading practice pages", run: s.callScrapeAbout},
			{action: "searching professional profiles", run: s.callSocialSearch},
		}
	case model.StageDeep:
		return []stageCall{
			{action: "researching competitive landscape", run: s.callCompetitorSearch},
			{action: "synthesizing practice profile", run: s.callSynthesizeProfile},
		}
	case model.StageComplete:
		return []stageCall{
			{action: "writing final summary", run: s.callSummarize},
		}
	default:
		return nil
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
