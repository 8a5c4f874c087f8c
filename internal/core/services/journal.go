package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
	"github.com/custodia-labs/insight/internal/logger"
)

// Ensure JournalService implements the interface.
var _ driving.JournalService = (*JournalService)(nil)

// JournalService restates a journal entry and searches with the restatement.
type JournalService struct {
	rephraser driven.Rephraser
	search    driving.SearchService
}

// NewJournalService creates a journal service. A nil rephraser disables it.
func NewJournalService(rephraser driven.Rephraser, search driving.SearchService) *JournalService {
	return &JournalService{
		rephraser: rephraser,
		search:    search,
	}
}

// Available reports whether a rephraser is configured.
func (s *JournalService) Available() bool {
	return s.rephraser != nil
}

// Reflect rephrases the entry and returns the passages closest to it.
func (s *JournalService) Reflect(
	ctx context.Context, entry string, opts domain.SearchOptions,
) (*domain.JournalResult, error) {
	logger.Section("Journal Reflection")

	if s.rephraser == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if strings.TrimSpace(entry) == "" {
		return nil, fmt.Errorf("%w: journal entry is empty", domain.ErrInvalidInput)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	// Fail before paying for a rephrase the search cannot use.
	if !s.search.Ready() {
		return nil, domain.ErrNotReady
	}

	logger.Debug("Rephrasing %d characters with %s", len(entry), s.rephraser.ModelName())
	rephrased, err := s.rephraser.Rephrase(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("rephrase entry: %w", err)
	}
	rephrased = strings.TrimSpace(rephrased)
	if rephrased == "" {
		return nil, fmt.Errorf("%w: rephraser returned no text", domain.ErrInvalidInput)
	}
	logger.Debug("Rephrased: %q", rephrased)

	results, err := s.search.Search(ctx, rephrased, opts)
	if err != nil {
		return nil, err
	}

	return &domain.JournalResult{
		Rephrased: rephrased,
		Results:   results,
	}, nil
}
