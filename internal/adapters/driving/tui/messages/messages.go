// Package messages defines the bubbletea messages exchanged between views.
package messages

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// SearchCompleted carries search results back to the search view. Seq
// matches the request that produced it; older replies are dropped.
type SearchCompleted struct {
	Seq     int
	Query   string
	Results []domain.SearchResult
	Err     error
}

// JournalCompleted carries a journal reflection back to the journal view.
type JournalCompleted struct {
	Result *domain.JournalResult
	Err    error
}

// StatsLoaded carries index statistics.
type StatsLoaded struct {
	Stats *domain.IndexStats
	Err   error
}

// PassageSelected opens a result in the passage view. From is the view esc
// returns to.
type PassageSelected struct {
	Result domain.SearchResult
	From   ViewType
}

// Open returns a command that opens r in the passage view.
func Open(r domain.SearchResult, from ViewType) tea.Cmd {
	return func() tea.Msg {
		return PassageSelected{Result: r, From: from}
	}
}

// ViewChanged switches the active view.
type ViewChanged struct {
	View ViewType
}

// Navigate returns a command that switches to view.
func Navigate(view ViewType) tea.Cmd {
	return func() tea.Msg {
		return ViewChanged{View: view}
	}
}

// ViewType identifies a view.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewSearch
	ViewJournal
	ViewPassage
	ViewStats
	ViewHelp
)

var viewNames = [...]string{
	ViewMenu:    "menu",
	ViewSearch:  "search",
	ViewJournal: "journal",
	ViewPassage: "passage",
	ViewStats:   "stats",
	ViewHelp:    "help",
}

func (v ViewType) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// ErrorOccurred reports a failure outside a search or reflection.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
