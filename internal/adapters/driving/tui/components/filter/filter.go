// Package filter provides the author filter selector shared by the search
// and journal views.
package filter

import "github.com/custodia-labs/insight/internal/core/domain"

// Cycle steps through "all authors" followed by each author tag.
type Cycle struct {
	tags []domain.AuthorTag
	pos  int // 0 selects all authors
}

// NewCycle creates a selector positioned on all authors.
func NewCycle() *Cycle {
	return &Cycle{tags: domain.AllAuthorTags()}
}

// Next advances to the following option, wrapping back to all authors.
func (c *Cycle) Next() {
	c.pos = (c.pos + 1) % (len(c.tags) + 1)
}

// Reset returns to all authors.
func (c *Cycle) Reset() {
	c.pos = 0
}

// Filter returns the search filter for the current option.
func (c *Cycle) Filter() domain.AuthorFilter {
	if c.pos == 0 {
		return domain.AuthorFilter{}
	}
	return domain.NewAuthorFilter(c.tags[c.pos-1])
}

// Label returns the display name of the current option.
func (c *Cycle) Label() string {
	if c.pos == 0 {
		return "All authors"
	}
	return c.tags[c.pos-1].Label()
}
