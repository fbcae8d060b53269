package model

import "time"

// SourceRef records one piece of external evidence that contributed to
// a result.
type SourceRef struct {
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
	Kind  string `json:"kind"`
}

// EnrichmentResult is the final output of a scheduler run. All fields
// are declared upfront; stages that did not run leave their fields at
// zero values.
type EnrichmentResult struct {
	SubjectID     string        `json:"subject_id"`
	Subject       Subject       `json:"subject"`
	Confidence    float64       `json:"confidence"`
	Website       string        `json:"website,omitempty"`
	Summary       string        `json:"summary,omitempty"`
	Sources       []SourceRef   `json:"sources,omitempty"`
	StagesRun     []Stage       `json:"stages_run"`
	FinalStage    Stage         `json:"final_stage"`
	Cancelled     bool          `json:"cancelled,omitempty"`
	ProviderCalls int           `json:"provider_calls"`
	FailedCalls   int           `json:"failed_calls"`
	Elapsed       time.Duration `json:"elapsed_ms"`
}

// ItemStatus is the lifecycle state of a BatchItem.
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusProcessing ItemStatus = "processing"
	StatusCompleted  ItemStatus = "completed"
	StatusFailed     ItemStatus = "failed"
)

// BatchItem tracks one subject through a batch run. Exactly one
// goroutine writes a given item at any time: the orchestrator's
// coordinating loop.
type BatchItem struct {
	Subject       Subject           `json:"subject"`
	Status        ItemStatus        `json:"status"`
	Result        *EnrichmentResult `json:"result,omitempty"`
	Error         string            `json:"error,omitempty"`
	LowConfidence bool              `json:"low_confidence,omitempty"`
	StartedAt     *time.Time        `json:"started_at,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// ProcessingTime returns the wall time the item spent processing, or 0
// if it never settled.
func (b BatchItem) ProcessingTime() time.Duration {
	if b.StartedAt == nil || b.CompletedAt == nil {
		return 0
	}
	return b.CompletedAt.Sub(*b.StartedAt)
}
