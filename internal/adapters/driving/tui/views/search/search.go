// Package search provides the search view for the TUI.
package search

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/components/filter"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// ErrNoSearchService is reported when the view has no search service.
var ErrNoSearchService = errors.New("search service is required")

// chromeLines is the height taken by the title, input and status bar.
const chromeLines = 10

type focus int

const (
	focusQuery focus = iota
	focusResults
)

// View pairs a query input with the passages found for it.
//
// Each submitted query gets a sequence number; a reply carrying an older
// number is discarded so a slow search never overwrites a newer one.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.ResultList
	statusbar *status.Bar
	authors   *filter.Cycle

	searchService driving.SearchService
	ctx           context.Context

	focus  focus
	seq    int
	err    error
	width  int
	height int
	ready  bool
}

// NewView creates a search view. Nil styles and keymap use the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchInput(s),
		list:          list.NewResultList(s),
		statusbar:     status.NewBar(s, km),
		authors:       filter.NewCycle(),
		searchService: searchService,
		ctx:           context.Background(),
		width:         80,
		height:        24,
	}
	v.statusbar.SetFilter(v.authors.Label())
	return v
}

// WithContext sets the context searches run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the input.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		return v, v.onKey(msg)
	case messages.SearchCompleted:
		v.onResults(msg)
		return v, nil
	case messages.ErrorOccurred:
		v.fail(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) onKey(msg tea.KeyMsg) tea.Cmd {
	km := v.keymap
	switch {
	case key.Matches(msg, km.Back):
		return messages.Navigate(messages.ViewMenu)
	case key.Matches(msg, km.Filter):
		v.authors.Next()
		v.statusbar.SetFilter(v.authors.Label())
		return nil
	}

	if v.focus == focusQuery {
		if key.Matches(msg, km.Search) {
			return v.submit()
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, km.Open):
		if r := v.list.SelectedResult(); r != nil {
			return messages.Open(*r, messages.ViewSearch)
		}
		return nil
	case key.Matches(msg, km.NewSearch):
		v.input.SetValue("")
		return v.focusQuery()
	}
	v.list, _ = v.list.Update(msg)
	return nil
}

// submit searches for the current input. A blank query does nothing, and
// so does a search before the model has loaded.
func (v *View) submit() tea.Cmd {
	query := v.input.Value()
	if query == "" {
		return nil
	}
	svc := v.searchService
	if svc != nil && !svc.Ready() {
		v.statusbar.SetState(status.StateLoading)
		return nil
	}

	v.input.Remember(query)
	v.err = nil
	v.seq++
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateSearching)
	v.focusResults()

	ctx, seq := v.ctx, v.seq
	opts := domain.SearchOptions{Authors: v.authors.Filter()}
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		results, err := svc.Search(ctx, query, opts)
		return messages.SearchCompleted{Seq: seq, Query: query, Results: results, Err: err}
	}
}

func (v *View) onResults(msg messages.SearchCompleted) {
	if msg.Seq != v.seq {
		return
	}
	if msg.Err != nil {
		v.list.SetResults(nil)
		v.fail(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Results))
	v.focusResults()
}

// fail shows err and hands focus back to the input.
func (v *View) fail(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.focusQuery()
}

func (v *View) focusQuery() tea.Cmd {
	v.focus = focusQuery
	return v.input.Focus()
}

func (v *View) focusResults() {
	v.focus = focusResults
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	parts := []string{v.styles.Title.Render("Insight"), "", v.input.View(), ""}
	if v.err != nil {
		parts = append(parts, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	parts = append(parts, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// SetDimensions sizes the view and its components.
func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.ready = true
	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-chromeLines)
	v.statusbar.SetWidth(width)
}

// Reset clears the query and results and focuses the input. The author
// filter is kept.
func (v *View) Reset() {
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.err = nil
	v.statusbar.Clear()
	v.focusQuery()
}

// Width returns the view width.
func (v *View) Width() int { return v.width }

// Height returns the view height.
func (v *View) Height() int { return v.height }

// Ready reports whether the view has been sized.
func (v *View) Ready() bool { return v.ready }

// Query returns the current input.
func (v *View) Query() string { return v.input.Value() }

// SetQuery replaces the input.
func (v *View) SetQuery(query string) { v.input.SetValue(query) }

// Results returns the passages shown.
func (v *View) Results() []domain.SearchResult { return v.list.Results() }

// SelectedIndex returns the selected result.
func (v *View) SelectedIndex() int { return v.list.Selected() }

// Authors returns the active author filter.
func (v *View) Authors() domain.AuthorFilter { return v.authors.Filter() }

// Err returns the last error, if any.
func (v *View) Err() error { return v.err }

// InputFocused reports whether keys go to the input.
func (v *View) InputFocused() bool { return v.focus == focusQuery }
