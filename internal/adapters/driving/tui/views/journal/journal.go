// Package journal provides the journal reflection view for the TUI.
package journal

import (
	"context"
	"errors"
	"strings"

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

// ErrNoJournalService indicates that journal mode is not configured.
var ErrNoJournalService = errors.New("journal service is required")

// View lets the user write an entry and read passages chosen for it.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	entry     *input.EntryInput
	list      *list.ResultList
	statusbar *status.Bar
	authors   *filter.Cycle

	journalService driving.JournalService
	ctx            context.Context

	rephrased string
	writing   bool
	width     int
	height    int
	ready     bool
	err       error
}

// NewView creates a new journal view.
func NewView(s *styles.Styles, km *keymap.KeyMap, journalService driving.JournalService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:         s,
		keymap:         km,
		entry:          input.NewEntryInput(s),
		list:           list.NewResultList(s),
		statusbar:      status.NewBar(s, km),
		authors:        filter.NewCycle(),
		journalService: journalService,
		ctx:            context.Background(),
		writing:        true,
		width:          80,
		height:         24,
	}
	v.statusbar.SetState(status.StateWriting)
	v.statusbar.SetFilter(v.authors.Label())
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.entry.Init()
}

// Update handles messages for the journal view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.JournalCompleted:
		v.handleCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.entry, cmd = v.entry.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	km := v.keymap
	switch {
	case key.Matches(msg, km.Back):
		return v, messages.Navigate(messages.ViewMenu)
	case key.Matches(msg, km.Filter):
		v.authors.Next()
		v.statusbar.SetFilter(v.authors.Label())
		return v, nil
	case key.Matches(msg, km.Submit):
		return v, v.submit()
	}

	// The editor takes every other key, j and k included.
	if v.writing {
		var cmd tea.Cmd
		v.entry, cmd = v.entry.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, km.Open):
		if r := v.list.SelectedResult(); r != nil {
			return v, messages.Open(*r, messages.ViewJournal)
		}
		return v, nil
	case key.Matches(msg, km.NewSearch):
		v.Reset()
		return v, v.entry.Focus()
	}

	v.list, _ = v.list.Update(msg)
	return v, nil
}

func (v *View) submit() tea.Cmd {
	entry := strings.TrimSpace(v.entry.Value())
	if entry == "" {
		return nil
	}
	v.err = nil
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateReflecting)
	v.entry.Blur()

	ctx := v.ctx
	svc := v.journalService
	opts := domain.SearchOptions{Authors: v.authors.Filter()}
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoJournalService}
		}
		result, err := svc.Reflect(ctx, entry, opts)
		return messages.JournalCompleted{Result: result, Err: err}
	}
}

func (v *View) handleCompleted(msg messages.JournalCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}
	if msg.Result == nil {
		v.setError(domain.ErrLLMUnavailable)
		return
	}

	v.err = nil
	v.writing = false
	v.rephrased = msg.Result.Rephrased
	v.list.SetResults(msg.Result.Results)
	v.statusbar.SetMessage("")
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetResultCount(len(msg.Result.Results))
}

// setError reports err and returns to writing so the entry can be retried.
func (v *View) setError(err error) {
	v.err = err
	v.writing = true
	v.entry.Focus()
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

// View renders the journal view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, v.styles.Title.Render("Journal"), "")

	if v.writing {
		sections = append(sections, v.entry.View(), "")
	} else if v.rephrased != "" {
		sections = append(sections,
			v.styles.Muted.Render("Reflecting on:"),
			v.styles.Passage.Render(v.rephrased),
			"",
		)
	}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if !v.writing {
		sections = append(sections, v.list.View(), "")
	}

	sections = append(sections, v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.entry.SetWidth(width - 4)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Reset clears the entry and results. The author filter is kept.
func (v *View) Reset() {
	v.entry.Reset()
	v.entry.Focus()
	v.list.SetResults(nil)
	v.rephrased = ""
	v.writing = true
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetState(status.StateWriting)
}

// SetEntry replaces the entry text.
func (v *View) SetEntry(entry string) {
	v.entry.SetValue(entry)
}

// Entry returns the entry text.
func (v *View) Entry() string {
	return v.entry.Value()
}

// Rephrased returns the restatement used for the last search.
func (v *View) Rephrased() string {
	return v.rephrased
}

// Results returns the passages found for the last entry.
func (v *View) Results() []domain.SearchResult {
	return v.list.Results()
}

// Writing reports whether the entry has focus.
func (v *View) Writing() bool {
	return v.writing
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
