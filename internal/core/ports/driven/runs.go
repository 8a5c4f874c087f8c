package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// RunStore persists the history of ingestion runs.
type RunStore interface {
	// SaveRun records a finished run.
	SaveRun(ctx context.Context, run domain.IngestRun) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.IngestRun, error)
}
