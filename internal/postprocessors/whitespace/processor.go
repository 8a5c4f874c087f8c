// Package whitespace provides a processor that normalises spacing inside
// paragraph units.
package whitespace

import (
	"context"
	"strings"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// Processor collapses runs of spaces and tabs within each line and trims
// every line. Line breaks are kept. It implements the PostProcessor interface.
type Processor struct{}

// New creates a new whitespace processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "whitespace"
}

// Process rewrites each unit's text in place. Units keep their index.
func (p *Processor) Process(_ context.Context, units []domain.ParagraphUnit) ([]domain.ParagraphUnit, error) {
	out := make([]domain.ParagraphUnit, 0, len(units))
	for _, u := range units {
		out = append(out, domain.ParagraphUnit{Index: u.Index, Text: normalise(u.Text)})
	}
	return out, nil
}

func normalise(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
