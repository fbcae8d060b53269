package model

import "time"

// ProgressSnapshot is one point-in-time view of a single subject's
// enrichment run. Consumers only need the latest snapshot but must
// receive every transition in order.
type ProgressSnapshot struct {
	SubjectID            string        `json:"subject_id"`
	Stage                Stage         `json:"stage"`
	PercentComplete      int           `json:"percent_complete"`
	CurrentAction        string        `json:"current_action"`
	Confidence           float64       `json:"confidence"`
	Elapsed              time.Duration `json:"elapsed_ms"`
	EstimatedRemaining   time.Duration `json:"estimated_remaining_ms"`
	UnlockedCapabilities []Capability  `json:"unlocked_capabilities,omitempty"`
}

// BatchProgress is the orchestrator's aggregate view, recomputed after
// every per-subject settlement.
type BatchProgress struct {
	Total              int           `json:"total"`
	Completed          int           `json:"completed"`
	Failed             int           `json:"failed"`
	CurrentSubject     string        `json:"current_subject,omitempty"`
	EstimatedRemaining time.Duration `json:"estimated_remaining_ms"`
}
