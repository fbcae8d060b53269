// Package batch fans the single-subject scheduler out over many
// subjects under a bounded-concurrency, backpressure-controlled policy.
package batch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
	"github.com/sells-group/prospect-cli/internal/scheduler"
)

// Runner runs the enrichment pipeline for one subject. Satisfied by
// *scheduler.Scheduler; tests substitute their own.
type Runner interface {
	Run(ctx context.Context, subject model.Subject, maxDepth model.Stage, emit scheduler.EmitFunc) (*model.EnrichmentResult, error)
}

// Callbacks deliver progress during a batch run. Any field may be nil.
type Callbacks struct {
	// OnProgress fires after every per-subject settlement.
	OnProgress func(model.BatchProgress)
	// OnItemSettled fires once per subject as it completes or fails.
	OnItemSettled func(model.BatchItem)
	// OnSnapshot receives every per-subject progress snapshot.
	OnSnapshot func(model.ProgressSnapshot)
}

// Orchestrator runs batches of subjects through a Runner.
type Orchestrator struct {
	runner Runner
	clock  scheduler.Clock
	opts   Options
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock injects a clock for the inter-window backpressure sleep.
func WithClock(clock scheduler.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// New creates an Orchestrator. Options are validated on Run.
func New(runner Runner, opts Options, os ...Option) *Orchestrator {
	o := &Orchestrator{
		runner: runner,
		clock:  scheduler.RealClock(),
		opts:   opts,
	}
	for _, opt := range os {
		opt(o)
	}
	return o
}

// settlement is a worker's report back to the coordinating goroutine.
// Workers never touch BatchItems directly; the coordinator is the
// single writer.
type settlement struct {
	idx      int
	result   *model.EnrichmentResult
	err      error
	finished time.Time
}

// Run processes every subject and returns one BatchItem per subject,
// in processing order. Per-subject failures are isolated in their
// items; the only error returned is an invalid configuration.
// Cancellation stops new windows from starting; subjects already
// processing settle naturally and their results are kept.
func (o *Orchestrator) Run(ctx context.Context, subjects []model.Subject, cb Callbacks) ([]model.BatchItem, error) {
	if err := o.opts.Validate(); err != nil {
		return nil, err
	}

	ordered := orderSubjects(subjects, o.opts)

	// Every item starts pending so the total is known and ordering is
	// deterministic before any concurrency begins.
	items := make([]model.BatchItem, len(ordered))
	for i, subject := range ordered {
		items[i] = model.BatchItem{Subject: subject, Status: model.StatusPending}
	}

	zap.L().Info("batch: starting",
		zap.Int("subjects", len(items)),
		zap.Int("max_concurrent", o.opts.MaxConcurrent),
		zap.Bool("prioritized", o.opts.PrioritizeHighValue),
	)

	progress := model.BatchProgress{Total: len(items)}
	var totalProcessing time.Duration
	settled := 0

	settle := make(chan settlement)

	for windowStart := 0; windowStart < len(items); windowStart += o.opts.MaxConcurrent {
		if ctx.Err() != nil {
			zap.L().Info("batch: cancellation observed, not starting next window",
				zap.Int("settled", settled),
				zap.Int("remaining", len(items)-settled),
			)
			break
		}

		windowEnd := min(windowStart+o.opts.MaxConcurrent, len(items))

		// Mark and launch the whole window, then wait for every member
		// to settle before the next window starts.
		for i := windowStart; i < windowEnd; i++ {
			now := o.clock.Now()
			items[i].Status = model.StatusProcessing
			items[i].StartedAt = &now
			go o.process(ctx, i, items[i].Subject, cb, settle)
		}

		for pending := windowEnd - windowStart; pending > 0; pending-- {
			s := <-settle
			item := &items[s.idx]
			item.CompletedAt = &s.finished

			if s.err != nil {
				item.Status = model.StatusFailed
				item.Error = s.err.Error()
				progress.Failed++
				zap.L().Error("batch: subject failed",
					zap.String("subject", item.Subject.Name),
					zap.Error(s.err),
				)
			} else {
				item.Status = model.StatusCompleted
				item.Result = s.result
				if o.opts.SkipLowConfidence && s.result.Confidence < o.opts.ConfidenceThreshold {
					item.LowConfidence = true
				}
				progress.Completed++
			}

			settled++
			totalProcessing += item.ProcessingTime()
			progress.CurrentSubject = item.Subject.Name
			progress.EstimatedRemaining = estimateRemaining(totalProcessing, settled, len(items), o.opts.MaxConcurrent)

			if cb.OnItemSettled != nil {
				cb.OnItemSettled(*item)
			}
			if cb.OnProgress != nil {
				cb.OnProgress(progress)
			}
		}

		// Backpressure pause between windows, skipped after the last
		// window and once cancellation is requested.
		if windowEnd < len(items) && ctx.Err() == nil && o.opts.DelayBetweenBatches > 0 {
			_ = o.clock.Sleep(ctx, o.opts.DelayBetweenBatches)
		}
	}

	zap.L().Info("batch: complete",
		zap.Int("total", progress.Total),
		zap.Int("completed", progress.Completed),
		zap.Int("failed", progress.Failed),
	)
	return items, nil
}

// process runs one subject and reports the outcome. Runs on its own
// goroutine; it communicates only through the settle channel.
func (o *Orchestrator) process(ctx context.Context, idx int, subject model.Subject, cb Callbacks, settle chan<- settlement) {
	var emit scheduler.EmitFunc
	if cb.OnSnapshot != nil {
		emit = cb.OnSnapshot
	}

	result, err := o.runner.Run(ctx, subject, o.opts.MaxDepth, emit)
	settle <- settlement{
		idx:      idx,
		result:   result,
		err:      err,
		finished: o.clock.Now(),
	}
}

// estimateRemaining projects time left from the running average
// processing time and the concurrency bound.
func estimateRemaining(totalProcessing time.Duration, settled, total, maxConcurrent int) time.Duration {
	if settled == 0 || total <= settled {
		return 0
	}
	avg := totalProcessing / time.Duration(settled)
	remaining := total - settled
	windows := (remaining + maxConcurrent - 1) / maxConcurrent
	return avg * time.Duration(windows)
}
