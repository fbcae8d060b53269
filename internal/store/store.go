// Package store records finished batch runs for later review. The
// orchestration itself is in-memory; the store is written only after
// items settle.
package store

import (
	"context"
	"time"

	"github.com/sells-group/prospect-cli/internal/model"
)

// BatchRecord is the stored header for one batch run.
type BatchRecord struct {
	ID             string    `json:"id"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	Total          int       `json:"total"`
	Completed      int       `json:"completed"`
	Failed         int       `json:"failed"`
	MeanConfidence float64   `json:"mean_confidence"`
}

// Store persists batch history.
type Store interface {
	SaveBatch(ctx context.Context, rec BatchRecord, items []model.BatchItem) error
	ListBatches(ctx context.Context, limit int) ([]BatchRecord, error)
	Migrate(ctx context.Context) error
	Close() error
}
