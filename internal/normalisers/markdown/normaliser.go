package markdown

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
	"github.com/custodia-labs/insight/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic format normaliser, higher than plaintext
}

// Paragraphs splits a markdown document into paragraphs with formatting
// removed. Headings become paragraphs of their own; code blocks are dropped.
func (n *Normaliser) Paragraphs(_ context.Context, content []byte) ([]string, error) {
	if !utf8.Valid(content) {
		return nil, domain.ErrInvalidInput
	}

	text := stripBlocks(string(content))

	var paragraphs []string
	for _, p := range plaintext.Split(text) {
		p = stripInline(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs, nil
}

// Pre-compiled regular expressions for markdown parsing.
var (
	codeBlock    = regexp.MustCompile("(?s)```.*?```")
	headings     = regexp.MustCompile(`(?m)^[ \t]{0,3}#{1,6}[ \t]+(.*?)[ \t]*#*[ \t]*$`)
	hr           = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	blockquote   = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	listMarkers  = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberedList = regexp.MustCompile(`(?m)^[ \t]*\d+\.[ \t]+`)
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	multiSpaces  = regexp.MustCompile(`\s{2,}`)
)

// stripBlocks removes block-level markup, keeping line structure.
func stripBlocks(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = codeBlock.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = headings.ReplaceAllString(content, "\n$1\n")
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	return content
}

// stripInline removes inline markup from a single paragraph.
func stripInline(p string) string {
	p = images.ReplaceAllString(p, "")
	p = links.ReplaceAllString(p, "$1")
	p = inlineCode.ReplaceAllString(p, "$1")
	p = strings.ReplaceAll(p, "**", "")
	p = strings.ReplaceAll(p, "__", "")
	p = strings.ReplaceAll(p, "*", "")
	p = multiSpaces.ReplaceAllString(p, " ")
	return strings.TrimSpace(p)
}
