package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// IngestService adds corpus documents to the index.
// Only one ingestion runs at a time.
type IngestService interface {
	// Ingest merges, embeds and inserts the paragraphs of one document.
	// Returns domain.ErrIngestInProgress if another run holds the writer.
	Ingest(ctx context.Context, req domain.IngestRequest, opts domain.IngestOptions) (*domain.IngestReport, error)

	// IngestFile reads a corpus file and ingests it. A nil author means the
	// tag is derived from the filename.
	IngestFile(ctx context.Context, path string, author *domain.AuthorTag, opts domain.IngestOptions) (*domain.IngestReport, error)

	// Status returns the state of the current or last run.
	Status() IngestStatus
}

// IngestStatus represents the current state of the ingestion writer.
type IngestStatus struct {
	// Running indicates if an ingestion is currently in progress.
	Running bool

	// RunID identifies the current or last run.
	RunID string

	// SourceFile is the document being ingested.
	SourceFile string

	// Processed is the count of units handled so far.
	Processed int

	// Total is the number of units in the run.
	Total int
}

// WatchService keeps the index in step with a corpus directory.
type WatchService interface {
	// Watch blocks until ctx is done, ingesting created and updated files
	// and removing deleted ones.
	Watch(ctx context.Context, root string, opts domain.IngestOptions) error
}

// IndexService manages the index as a whole.
type IndexService interface {
	// Import seeds an empty index from a bundle. A populated index is left
	// untouched and the report is marked skipped.
	Import(ctx context.Context, r io.Reader) (*domain.ImportReport, error)

	// ImportFile imports a bundle file. A missing file is a skip, not an error.
	ImportFile(ctx context.Context, path string) (*domain.ImportReport, error)

	// Export writes every record as a bundle and returns the record count.
	Export(ctx context.Context, w io.Writer) (int, error)

	// Stats returns index totals.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// DeleteSource removes all records of a source file.
	DeleteSource(ctx context.Context, sourceFile string) (int, error)

	// DeleteAll clears the index.
	DeleteAll(ctx context.Context) (int, error)
}
