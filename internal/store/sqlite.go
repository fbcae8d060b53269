package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospect-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures
// WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS batches (
	id              TEXT PRIMARY KEY,
	started_at      DATETIME NOT NULL,
	finished_at     DATETIME NOT NULL,
	total           INTEGER NOT NULL,
	completed       INTEGER NOT NULL,
	failed          INTEGER NOT NULL,
	mean_confidence REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_items (
	batch_id   TEXT NOT NULL REFERENCES batches(id),
	subject_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	status     TEXT NOT NULL,
	confidence REAL,
	item       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_batch_items_batch_id ON batch_items(batch_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) SaveBatch(ctx context.Context, rec BatchRecord, items []model.BatchItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, started_at, finished_at, total, completed, failed, mean_confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StartedAt, rec.FinishedAt, rec.Total, rec.Completed, rec.Failed, rec.MeanConfidence,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert batch")
	}

	for _, item := range items {
		blob, mErr := json.Marshal(item)
		if mErr != nil {
			return eris.Wrap(mErr, "sqlite: marshal item")
		}
		var conf *float64
		if item.Result != nil {
			conf = &item.Result.Confidence
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO batch_items (batch_id, subject_id, name, status, confidence, item)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.ID, item.Subject.ID, item.Subject.Name, string(item.Status), conf, string(blob),
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert item")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteStore) ListBatches(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, total, completed, failed, mean_confidence
		 FROM batches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list batches")
	}
	defer rows.Close()

	var recs []BatchRecord
	for rows.Next() {
		var rec BatchRecord
		if err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.FinishedAt, &rec.Total, &rec.Completed, &rec.Failed, &rec.MeanConfidence); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan batch")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: iterate batches")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
