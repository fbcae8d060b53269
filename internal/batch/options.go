package batch

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Options control batch concurrency, ordering, and backpressure.
type Options struct {
	// MaxConcurrent bounds how many subjects are processing at once.
	MaxConcurrent int

	// DelayBetweenBatches is the backpressure pause between successive
	// concurrency windows.
	DelayBetweenBatches time.Duration

	// PrioritizeHighValue reorders subjects before windowing: high-value
	// specialties first, then by known contact fields, then by name.
	PrioritizeHighValue bool

	// HighValueSpecialties is the specialty set treated as high-value
	// by the priority sort.
	HighValueSpecialties []string

	// SkipLowConfidence flags results below ConfidenceThreshold so
	// downstream consumers know not to act on them. Flagged items are
	// still completed, never failed.
	SkipLowConfidence   bool
	ConfidenceThreshold float64

	// MaxDepth truncates each subject's stage pipeline.
	MaxDepth model.Stage
}

// Validate rejects configurations that would make the batch unrunnable.
// Unlike per-subject failures, an invalid configuration is fatal.
func (o Options) Validate() error {
	if o.MaxConcurrent <= 0 {
		return eris.Errorf("batch: max_concurrent must be positive, got %d", o.MaxConcurrent)
	}
	if o.DelayBetweenBatches < 0 {
		return eris.New("batch: delay_between_batches must not be negative")
	}
	if o.SkipLowConfidence && (o.ConfidenceThreshold < 0 || o.ConfidenceThreshold > 100) {
		return eris.Errorf("batch: confidence_threshold must be in [0,100], got %g", o.ConfidenceThreshold)
	}
	return nil
}

// DefaultOptions returns the standard batch configuration.
func DefaultOptions() Options {
	return Options{
		MaxConcurrent:       3,
		DelayBetweenBatches: 500 * time.Millisecond,
		ConfidenceThreshold: 50,
		MaxDepth:            model.StageComplete,
	}
}
