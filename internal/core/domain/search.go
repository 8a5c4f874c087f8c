package domain

import (
	"fmt"
	"strings"
)

// Result limit bounds.
const (
	DefaultSearchLimit = 10
	MinSearchLimit     = 1
	MaxSearchLimit     = 20
)

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results (1-20). Zero means DefaultSearchLimit.
	Limit int

	// Authors restricts results to the selected authors. Empty matches all.
	Authors AuthorFilter
}

// EffectiveLimit returns the limit to use, applying the default for zero.
func (o SearchOptions) EffectiveLimit() int {
	if o.Limit == 0 {
		return DefaultSearchLimit
	}
	return o.Limit
}

// Validate rejects out-of-range limits. Callers clamp; the core does not coerce.
func (o SearchOptions) Validate() error {
	limit := o.EffectiveLimit()
	if limit < MinSearchLimit || limit > MaxSearchLimit {
		return fmt.Errorf("%w: limit %d out of range [%d, %d]",
			ErrInvalidInput, o.Limit, MinSearchLimit, MaxSearchLimit)
	}
	return nil
}

// ValidateQuery rejects empty or whitespace-only query text.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is empty", ErrInvalidInput)
	}
	return nil
}

// JournalResult is the outcome of a journal-mode search.
type JournalResult struct {
	// Rephrased is the restated entry that was embedded and searched.
	Rephrased string `json:"rephrased"`

	// Results are the passages matching the rephrased entry.
	Results []SearchResult `json:"results"`
}
