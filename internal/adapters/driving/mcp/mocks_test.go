package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	notReady bool
	query    string
	opts     domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

func (m *mockSearchService) Ready() bool { return !m.notReady }

// mockJournalService is a mock implementation of driving.JournalService.
type mockJournalService struct {
	result      *domain.JournalResult
	err         error
	unavailable bool
	entry       string
}

func (m *mockJournalService) Reflect(
	_ context.Context,
	entry string,
	_ domain.SearchOptions,
) (*domain.JournalResult, error) {
	m.entry = entry
	return m.result, m.err
}

func (m *mockJournalService) Available() bool { return !m.unavailable }

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats *domain.IndexStats
	err   error
}

func (m *mockIndexService) Import(context.Context, io.Reader) (*domain.ImportReport, error) {
	return &domain.ImportReport{}, m.err
}

func (m *mockIndexService) ImportFile(context.Context, string) (*domain.ImportReport, error) {
	return &domain.ImportReport{}, m.err
}

func (m *mockIndexService) Export(context.Context, io.Writer) (int, error) { return 0, m.err }

func (m *mockIndexService) Stats(context.Context) (*domain.IndexStats, error) {
	return m.stats, m.err
}

func (m *mockIndexService) DeleteSource(context.Context, string) (int, error) { return 0, m.err }

func (m *mockIndexService) DeleteAll(context.Context) (int, error) { return 0, m.err }
