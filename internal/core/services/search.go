package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService embeds queries and ranks indexed passages against them.
// It holds no mutable state and is safe for concurrent use.
type SearchService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	recorder driven.Recorder
}

// NewSearchService creates a new search service. The recorder is optional.
func NewSearchService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	recorder driven.Recorder,
) *SearchService {
	if recorder == nil {
		recorder = driven.NopRecorder{}
	}
	return &SearchService{
		embedder: embedder,
		index:    index,
		recorder: recorder,
	}
}

// Ready reports whether the embedder has been prepared.
func (s *SearchService) Ready() bool {
	return s.embedder != nil && s.embedder.Ready()
}

// Search embeds the query and returns the closest passages, best first.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	start := time.Now()
	results, err := s.search(ctx, query, opts)
	s.recorder.ObserveSearch(time.Since(start), len(results), !opts.Authors.IsEmpty(), err)
	return results, err
}

func (s *SearchService) search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	if !s.Ready() {
		return nil, domain.ErrNotReady
	}
	if err := domain.ValidateQuery(query); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	limit := opts.EffectiveLimit()
	logger.Debug("Limit: %d, authors: %s", limit, opts.Authors)

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := s.index.Search(ctx, vec, limit, opts.Authors)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(scored))
	for _, sp := range scored {
		results = append(results, domain.NewSearchResult(sp))
	}

	logger.Debug("Returning %d results", len(results))
	return results, nil
}
