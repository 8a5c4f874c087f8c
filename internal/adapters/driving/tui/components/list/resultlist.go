// Package list provides the passage list shown under search and journal
// results.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
)

// linesPerResult is the heading, the preview and a blank separator.
const linesPerResult = 3

// ResultList is a scrolling, selectable list of passages ranked by score.
type ResultList struct {
	results  []domain.SearchResult
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewResultList creates an empty list.
func NewResultList(s *styles.Styles) *ResultList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ResultList{styles: s, width: 80, height: 10}
}

// Init implements tea.Model.
func (r *ResultList) Init() tea.Cmd {
	return nil
}

// Update moves the selection with arrows, j/k, and g/G for first and last.
func (r *ResultList) Update(msg tea.Msg) (*ResultList, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return r, nil
	}
	switch key.String() {
	case "up", "k":
		r.MoveUp()
	case "down", "j":
		r.MoveDown()
	case "home", "g":
		r.SetSelected(0)
	case "end", "G":
		r.SetSelected(len(r.results) - 1)
	}
	return r, nil
}

// View renders the visible window of results.
func (r *ResultList) View() string {
	if len(r.results) == 0 {
		return r.styles.Muted.Render("No passages")
	}

	header := r.styles.Subtitle.Render(fmt.Sprintf("Passages (%d)", len(r.results)))
	start, end := r.window()
	if start > 0 || end < len(r.results) {
		header += r.styles.Muted.Render(fmt.Sprintf("  %d of %d", r.selected+1, len(r.results)))
	}

	lines := []string{header, ""}
	for i := start; i < end; i++ {
		lines = append(lines, r.renderResult(i))
	}
	return strings.Join(lines, "\n")
}

// window returns the half-open range of results that fit, keeping the
// selection visible.
func (r *ResultList) window() (start, end int) {
	visible := max((r.height-4)/linesPerResult, 1)
	if r.selected >= visible {
		start = r.selected - visible + 1
	}
	return start, min(start+visible, len(r.results))
}

// renderResult formats rank, author and source with the score, then a
// one-line preview.
func (r *ResultList) renderResult(i int) string {
	res := &r.results[i]

	author := res.AuthorLabel
	if author == "" {
		author = res.Author.Label()
	}
	rank := fmt.Sprintf("%2d. ", i+1)
	score := fmt.Sprintf("%.2f", res.Score)

	room := max(r.width-len(rank)-len(score)-4, 10)
	heading := Truncate(author+" · "+res.SourceFile, room)
	if res.SourceFile == "" {
		heading = Truncate(author, room)
	}
	pad := strings.Repeat(" ", max(room-len([]rune(heading)), 0)+2)

	var line string
	if i == r.selected {
		line = r.styles.Selected.Render(rank + heading + pad + score)
	} else {
		line = r.styles.Muted.Render(rank) +
			r.styles.ForAuthor(res.Author).Render(heading) + pad +
			r.styles.ForScore(res.Score).Render(score)
	}

	text := Truncate(strings.Join(strings.Fields(res.Text), " "), max(r.width-6, 20))
	return line + "\n" + r.styles.Muted.Render("    "+text) + "\n"
}

// Truncate shortens s to at most n runes, ending with "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// SetResults replaces the results and selects the first.
func (r *ResultList) SetResults(results []domain.SearchResult) {
	r.results = results
	r.selected = 0
}

// Results returns the current results.
func (r *ResultList) Results() []domain.SearchResult {
	return r.results
}

// Selected returns the selected index.
func (r *ResultList) Selected() int {
	return r.selected
}

// SetSelected selects index if it is in range.
func (r *ResultList) SetSelected(index int) {
	if index >= 0 && index < len(r.results) {
		r.selected = index
	}
}

// SelectedResult returns the selected result, or nil when empty.
func (r *ResultList) SelectedResult() *domain.SearchResult {
	if r.selected < 0 || r.selected >= len(r.results) {
		return nil
	}
	return &r.results[r.selected]
}

// MoveUp selects the previous result.
func (r *ResultList) MoveUp() {
	r.SetSelected(r.selected - 1)
}

// MoveDown selects the next result.
func (r *ResultList) MoveDown() {
	r.SetSelected(r.selected + 1)
}

// SetDimensions sets the space available to the list.
func (r *ResultList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the width.
func (r *ResultList) Width() int {
	return r.width
}

// Height returns the height.
func (r *ResultList) Height() int {
	return r.height
}

// Count returns the number of results.
func (r *ResultList) Count() int {
	return len(r.results)
}

// IsEmpty reports whether there are no results.
func (r *ResultList) IsEmpty() bool {
	return len(r.results) == 0
}
