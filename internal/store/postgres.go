package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool (used by tests).
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS batches (
	id              TEXT PRIMARY KEY,
	started_at      TIMESTAMPTZ NOT NULL,
	finished_at     TIMESTAMPTZ NOT NULL,
	total           INTEGER NOT NULL,
	completed       INTEGER NOT NULL,
	failed          INTEGER NOT NULL,
	mean_confidence DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_items (
	batch_id   TEXT NOT NULL REFERENCES batches(id),
	subject_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	status     TEXT NOT NULL,
	confidence DOUBLE PRECISION,
	item       JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_batch_items_batch_id ON batch_items(batch_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) SaveBatch(ctx context.Context, rec BatchRecord, items []model.BatchItem) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO batches (id, started_at, finished_at, total, completed, failed, mean_confidence)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.StartedAt, rec.FinishedAt, rec.Total, rec.Completed, rec.Failed, rec.MeanConfidence,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert batch")
	}

	for _, item := range items {
		blob, mErr := json.Marshal(item)
		if mErr != nil {
			return eris.Wrap(mErr, "postgres: marshal item")
		}
		var conf *float64
		if item.Result != nil {
			conf = &item.Result.Confidence
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO batch_items (batch_id, subject_id, name, status, confidence, item)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.ID, item.Subject.ID, item.Subject.Name, string(item.Status), conf, blob,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert item")
		}
	}

	return nil
}

func (s *PostgresStore) ListBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, started_at, finished_at, total, completed, failed, mean_confidence
		 FROM batches ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list batches")
	}
	defer rows.Close()

	var recs []BatchRecord
	for rows.Next() {
		var rec BatchRecord
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.FinishedAt, &rec.Total, &rec.Completed, &rec.Failed, &rec.MeanConfidence); err != nil {
			return nil, eris.Wrap(err, "postgres: scan batch")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: iterate batches")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
