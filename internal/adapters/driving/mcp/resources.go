package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/insight/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Insight resources.
	uriScheme = "insight://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "authors",
		Name:        "authors",
		Description: "Author categories usable as search filters",
		MIMEType:    "application/json",
	}, s.handleAuthorsResource)

	if s.ports.Index != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "stats",
			Name:        "stats",
			Description: "Index statistics",
			MIMEType:    "application/json",
		}, s.handleStatsResource)
	}

	// Template for source file classification and library links.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{sourceFile}",
		Name:        "source",
		Description: "Author classification and reference library link for a source file name",
		MIMEType:    "application/json",
	}, s.handleSourceResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

type authorInfo struct {
	Code     string   `json:"code"`
	Label    string   `json:"label"`
	Keywords []string `json:"keywords,omitempty"`
}

// handleAuthorsResource lists every author tag in classification order.
func (s *Server) handleAuthorsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	tags := domain.AllAuthorTags()
	infos := make([]authorInfo, len(tags))
	for i, tag := range tags {
		infos[i] = authorInfo{
			Code:     tag.String(),
			Label:    tag.Label(),
			Keywords: domain.AuthorKeywords(tag),
		}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleStatsResource returns index statistics.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Index.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

// handleSourceResource classifies a source file name.
func (s *Server) handleSourceResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractSourceFile(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	tag := domain.ClassifyAuthor(name)
	return jsonResource(req.Params.URI, struct {
		SourceFile string `json:"source_file"`
		Author     string `json:"author"`
		Label      string `json:"author_label"`
		LibraryURL string `json:"library_url"`
	}{
		SourceFile: name,
		Author:     tag.String(),
		Label:      tag.Label(),
		LibraryURL: domain.LibraryURL(name),
	})
}

// extractSourceFile extracts the file name from a URI like insight://sources/{sourceFile}.
func extractSourceFile(uri string) string {
	const prefix = uriScheme + "sources/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
