package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query   string   `json:"query" jsonschema:"the passage or question to find related writings for"`
	Limit   int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (1-20, default 10)"`
	Authors []string `json:"authors,omitempty" jsonschema:"restrict results to these authors (codes such as bahaullah or abdul-baha)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	SourceFile string  `json:"source_file"`
	Author     string  `json:"author"`
	Score      float64 `json:"score"`
	LibraryURL string  `json:"library_url"`
}

// JournalInput is the input schema for the journal tool.
type JournalInput struct {
	Entry   string   `json:"entry" jsonschema:"the journal entry to reflect on"`
	Limit   int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (1-20, default 10)"`
	Authors []string `json:"authors,omitempty" jsonschema:"restrict results to these authors"`
}

// JournalOutput is the output schema for the journal tool.
type JournalOutput struct {
	Rephrased string               `json:"rephrased"`
	Results   []SearchResultOutput `json:"results"`
	Count     int                  `json:"count"`
}

// StatsInput is the empty input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	Total     int            `json:"total"`
	PerAuthor map[string]int `json:"per_author"`
	Dimension int            `json:"dimension"`
	Strategy  string         `json:"strategy"`
	Model     string         `json:"model,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find passages in the indexed writings that are semantically close to a query",
	}, s.handleSearch)

	if s.ports.Journal != nil && s.ports.Journal.Available() {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "journal",
			Description: "Restate a journal entry by its spiritual themes and find related passages",
		}, s.handleJournal)
	}

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "stats",
			Description: "Report how many passages are indexed, per author",
		}, s.handleStats)
	}
}

// searchOptions clamps the limit into range and parses the author filter.
func searchOptions(limit int, authors []string) (domain.SearchOptions, error) {
	switch {
	case limit <= 0:
		limit = domain.DefaultSearchLimit
	case limit > domain.MaxSearchLimit:
		limit = domain.MaxSearchLimit
	}
	filter, err := domain.ParseAuthorFilter(authors)
	if err != nil {
		return domain.SearchOptions{}, err
	}
	return domain.SearchOptions{Limit: limit, Authors: filter}, nil
}

func toOutputs(results []domain.SearchResult) []SearchResultOutput {
	out := make([]SearchResultOutput, len(results))
	for i := range results {
		out[i] = SearchResultOutput{
			DocumentID: results[i].DocumentID,
			Text:       results[i].Text,
			SourceFile: results[i].SourceFile,
			Author:     results[i].AuthorLabel,
			Score:      results[i].Score,
			LibraryURL: results[i].LibraryURL,
		}
	}
	return out
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts, err := searchOptions(input.Limit, input.Authors)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{
		Results: toOutputs(results),
		Count:   len(results),
	}, nil
}

// handleJournal handles the journal tool invocation.
func (s *Server) handleJournal(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input JournalInput,
) (*mcp.CallToolResult, JournalOutput, error) {
	opts, err := searchOptions(input.Limit, input.Authors)
	if err != nil {
		return nil, JournalOutput{}, err
	}

	res, err := s.ports.Journal.Reflect(ctx, input.Entry, opts)
	if err != nil {
		return nil, JournalOutput{}, err
	}

	return nil, JournalOutput{
		Rephrased: res.Rephrased,
		Results:   toOutputs(res.Results),
		Count:     len(res.Results),
	}, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Index.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, fmt.Errorf("reading index stats: %w", err)
	}

	perAuthor := make(map[string]int, len(stats.PerAuthor))
	for tag, n := range stats.PerAuthor {
		perAuthor[tag.String()] = n
	}

	return nil, StatsOutput{
		Total:     stats.Total,
		PerAuthor: perAuthor,
		Dimension: stats.Dimension,
		Strategy:  stats.Strategy,
		Model:     stats.Model,
	}, nil
}
