package driven

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// ParagraphStore persists paragraph records and their embeddings.
// Backed by SQLite.
type ParagraphStore interface {
	// Insert stores a record unless its DocumentID already exists.
	// It reports whether the record was written; an existing ID is not an error.
	Insert(ctx context.Context, rec domain.ParagraphRecord) (bool, error)

	// Exists reports whether a DocumentID is stored.
	Exists(ctx context.Context, documentID string) (bool, error)

	// Each calls fn for every record in insertion order. Stops on the first error.
	Each(ctx context.Context, fn func(domain.ParagraphRecord) error) error

	// DeleteBySource removes all records of a source file and returns their IDs.
	DeleteBySource(ctx context.Context, sourceFile string) ([]string, error)

	// DeleteAll removes every record and returns how many were removed.
	DeleteAll(ctx context.Context) (int, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// CountByAuthor returns the number of records per author tag.
	CountByAuthor(ctx context.Context) (map[domain.AuthorTag]int, error)

	// GetMeta reads an index metadata value.
	GetMeta(ctx context.Context, key string) (string, bool, error)

	// SetMeta writes an index metadata value.
	SetMeta(ctx context.Context, key, value string) error

	// Close releases resources.
	Close() error
}

// Index metadata keys.
const (
	MetaDimension = "dimension"
	MetaModel     = "model"
)

// VectorIndex provides durable nearest-neighbour search over paragraphs.
type VectorIndex interface {
	// Insert adds a record. It reports inserted=false when the DocumentID
	// already exists, atomically with the write.
	Insert(ctx context.Context, rec domain.ParagraphRecord) (bool, error)

	// InsertBatch adds records and returns the IDs that were newly written.
	InsertBatch(ctx context.Context, recs []domain.ParagraphRecord) ([]string, error)

	// Exists reports whether a DocumentID is indexed.
	Exists(ctx context.Context, documentID string) (bool, error)

	// Each calls fn for every record in insertion order. Stops on the first error.
	Each(ctx context.Context, fn func(domain.ParagraphRecord) error) error

	// Search returns at most limit records ordered by descending cosine
	// similarity, ties broken by insertion order. The filter is applied
	// before truncation.
	Search(ctx context.Context, query []float32, limit int, filter domain.AuthorFilter) ([]domain.ScoredParagraph, error)

	// DeleteBySource removes all records of a source file.
	DeleteBySource(ctx context.Context, sourceFile string) (int, error)

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) (int, error)

	// Count returns the number of indexed records.
	Count(ctx context.Context) (int, error)

	// Stats returns totals per author.
	Stats(ctx context.Context) (domain.IndexStats, error)

	// Dimensions returns the configured vector size.
	Dimensions() int

	// Close releases resources.
	Close() error
}
