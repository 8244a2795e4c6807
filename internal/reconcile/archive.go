package reconcile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const createRunsTable = `
CREATE TABLE IF NOT EXISTS reconcile_runs (
	id BIGSERIAL PRIMARY KEY,
	run_id UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	generated_at TIMESTAMPTZ NOT NULL,
	dataset_fingerprint TEXT NOT NULL,
	total_checks INT NOT NULL,
	discrepancies INT NOT NULL,
	accuracy_rate DOUBLE PRECISION NOT NULL,
	report JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS reconcile_runs_created_at_idx ON reconcile_runs (created_at DESC);
`

// Archive stores one run in Postgres so accuracy can be tracked across
// dataset refreshes. The table is created on first use.
func Archive(ctx context.Context, dsn string, report *Report) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open archive database: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("archive database unreachable: %w", err)
	}

	if _, err := db.ExecContext(ctx, createRunsTable); err != nil {
		return fmt.Errorf("failed to ensure reconcile_runs table: %w", err)
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report for archive: %w", err)
	}

	const insert = `
INSERT INTO reconcile_runs (run_id, generated_at, dataset_fingerprint, total_checks, discrepancies, accuracy_rate, report)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	if _, err := db.ExecContext(ctx, insert,
		report.RunID, report.GeneratedAt, report.DatasetFingerprint,
		report.Summary.TotalChecks, report.Summary.Discrepancies,
		report.Summary.AccuracyRate, payload); err != nil {
		return fmt.Errorf("failed to insert reconcile run: %w", err)
	}
	return nil
}
