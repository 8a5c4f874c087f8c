// Package tui is the interactive terminal interface: a menu, search,
// journal, passage and stats views built on bubbletea.
package tui

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

var (
	// ErrMissingSearchService is returned when no search service is given.
	ErrMissingSearchService = errors.New("tui: search service is required")

	// ErrInvalidPorts is returned for a nil Ports.
	ErrInvalidPorts = errors.New("tui: invalid ports configuration")
)

// Ports aggregates the driving port interfaces used by the TUI.
type Ports struct {
	// Search provides search capabilities (required).
	Search driving.SearchService

	// Journal provides journal reflections. The journal view is hidden
	// when nil or unavailable.
	Journal driving.JournalService

	// Index provides index statistics.
	Index driving.IndexService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(search driving.SearchService, journal driving.JournalService, index driving.IndexService) *Ports {
	return &Ports{
		Search:  search,
		Journal: journal,
		Index:   index,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: ports are nil", ErrInvalidPorts)
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

// journalAvailable reports whether the journal view should be offered.
func (p *Ports) journalAvailable() bool {
	return p.Journal != nil && p.Journal.Available()
}
