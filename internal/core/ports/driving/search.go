package driving

import (
	"context"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// SearchService provides semantic search to external actors.
type SearchService interface {
	// Search embeds the query and returns the closest passages.
	// Returns domain.ErrNotReady before the embedder is prepared and
	// domain.ErrInvalidInput for blank queries or out-of-range limits.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)

	// Ready reports whether searches can run.
	Ready() bool
}

// JournalService provides journal-mode search: a free-form entry is
// rephrased, then searched like a normal query.
type JournalService interface {
	// Reflect rephrases the entry and searches with the result.
	Reflect(ctx context.Context, entry string, opts domain.SearchOptions) (*domain.JournalResult, error)

	// Available reports whether a rephraser is configured.
	Available() bool
}
