package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun records a finished ingestion run.
func (s *runStore) SaveRun(ctx context.Context, run domain.IngestRun) error {
	r := run.Report
	var lastError sql.NullString
	if run.Error != "" {
		lastError = sql.NullString{String: run.Error, Valid: true}
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, source_file, author, units, inserted, skipped, failed, replaced,
			last_error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			units = excluded.units,
			inserted = excluded.inserted,
			skipped = excluded.skipped,
			failed = excluded.failed,
			replaced = excluded.replaced,
			last_error = excluded.last_error,
			finished_at = excluded.finished_at
	`, r.RunID, r.SourceFile, string(r.Author), r.Units, r.Inserted, r.Skipped, r.Failed, r.Replaced,
		lastError, run.StartedAt.UTC(), run.FinishedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving ingest run %s: %w", r.RunID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source_file, author, units, inserted, skipped, failed, replaced,
			last_error, started_at, finished_at
		FROM ingest_runs ORDER BY started_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IngestRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanIngestRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ingest runs: %w", err)
	}
	return runs, nil
}

func scanIngestRun(rows *sql.Rows) (*domain.IngestRun, error) {
	var run domain.IngestRun
	var author string
	var lastError sql.NullString
	r := &run.Report

	if err := rows.Scan(&r.RunID, &r.SourceFile, &author, &r.Units, &r.Inserted, &r.Skipped,
		&r.Failed, &r.Replaced, &lastError, &run.StartedAt, &run.FinishedAt); err != nil {
		return nil, fmt.Errorf("scanning ingest run: %w", err)
	}
	r.Author = domain.AuthorTag(author)
	if lastError.Valid {
		run.Error = lastError.String
	}
	return &run, nil
}
