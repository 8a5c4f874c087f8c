// Package merger provides a processor that joins short consecutive
// paragraphs into units of a minimum word count.
package merger

import (
	"context"
	"strings"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// Separator joins merged paragraphs.
const Separator = "\n\n"

// Processor greedily merges consecutive paragraphs until each unit holds at
// least threshold words. It implements the PostProcessor interface.
type Processor struct {
	threshold int
}

// Option configures the merger processor.
type Option func(*Processor)

// WithThreshold sets the minimum word count of a merged unit.
func WithThreshold(words int) Option {
	return func(p *Processor) {
		if words > 0 {
			p.threshold = words
		}
	}
}

// New creates a new merger processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		threshold: domain.DefaultMergeThreshold,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "merger"
}

// Threshold returns the minimum word count of a merged unit.
func (p *Processor) Threshold() int {
	return p.threshold
}

// Process merges units. Blank units are dropped first. A unit takes the
// index of its first paragraph; a trailing unit below the threshold is
// still emitted.
func (p *Processor) Process(ctx context.Context, units []domain.ParagraphUnit) ([]domain.ParagraphUnit, error) {
	var (
		merged []domain.ParagraphUnit
		parts  []string
		first  int
		words  int
	)

	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := strings.TrimSpace(u.Text)
		if text == "" {
			continue
		}

		if len(parts) == 0 {
			first = u.Index
		}
		parts = append(parts, text)
		words += WordCount(text)

		if words >= p.threshold {
			merged = append(merged, domain.ParagraphUnit{Index: first, Text: strings.Join(parts, Separator)})
			parts = parts[:0]
			words = 0
		}
	}

	if len(parts) > 0 {
		merged = append(merged, domain.ParagraphUnit{Index: first, Text: strings.Join(parts, Separator)})
	}

	return merged, nil
}

// WordCount returns the number of whitespace-separated words in s.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
