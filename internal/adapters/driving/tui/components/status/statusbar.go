// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
)

// State is what the bar reports on its left side.
type State string

const (
	StateReady      State = "ready"
	StateLoading    State = "loading"
	StateSearching  State = "searching"
	StateReflecting State = "reflecting"
	StateError      State = "error"
	StateResults    State = "results"
	StateWriting    State = "writing"
)

// busy states show a fixed label regardless of the message.
var busy = map[State]string{
	StateLoading:    "Loading model...",
	StateSearching:  "Searching...",
	StateReflecting: "Reflecting...",
}

// Bar shows the state, the author filter and key hints on one line.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	filter      string
	resultCount int
	width       int
}

// NewBar creates a status bar. Nil arguments use the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{styles: s, keymap: km, state: StateReady, width: 80}
}

// Init implements the component contract; the bar has no startup work.
func (s *Bar) Init() tea.Cmd { return nil }

// Update is a no-op; views drive the bar through its setters.
func (s *Bar) Update(tea.Msg) (*Bar, tea.Cmd) { return s, nil }

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left := s.status()
	if s.filter != "" {
		left += s.styles.Muted.Render("  [" + s.filter + "]")
	}
	right := s.hints()

	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *Bar) status() string {
	if label, ok := busy[s.state]; ok {
		return s.styles.Muted.Render(label)
	}
	if s.state == StateError {
		if s.message == "" {
			return s.styles.Error.Render("Error")
		}
		return s.styles.Error.Render("Error: " + s.message)
	}

	switch {
	case s.message != "":
		return s.styles.Normal.Render(s.message)
	case s.resultCount == 1:
		return s.styles.Normal.Render("1 passage")
	case s.resultCount > 1:
		return s.styles.Normal.Render(fmt.Sprintf("%d passages", s.resultCount))
	}
	return s.styles.Muted.Render("Ready")
}

func (s *Bar) context() keymap.Context {
	switch {
	case s.state == StateWriting:
		return keymap.Writing
	case s.state == StateResults && s.resultCount > 0:
		return keymap.Results
	}
	return keymap.Query
}

func (s *Bar) hints() string {
	bindings := s.keymap.HelpFor(s.context())
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + ": " + h.Desc
	}
	return s.styles.Muted.Render(strings.Join(parts, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) { s.state = state }

// State returns the current state.
func (s *Bar) State() State { return s.state }

// SetMessage sets a message shown in place of the passage count.
func (s *Bar) SetMessage(message string) { s.message = message }

// Message returns the current message.
func (s *Bar) Message() string { return s.message }

// SetFilter sets the author filter description. Empty hides it.
func (s *Bar) SetFilter(filter string) { s.filter = filter }

// Filter returns the author filter description.
func (s *Bar) Filter() string { return s.filter }

// SetResultCount sets the number of passages shown.
func (s *Bar) SetResultCount(count int) { s.resultCount = count }

// ResultCount returns the number of passages shown.
func (s *Bar) ResultCount() int { return s.resultCount }

// SetWidth sets the bar width.
func (s *Bar) SetWidth(width int) { s.width = width }

// Width returns the bar width.
func (s *Bar) Width() int { return s.width }

// Clear returns the bar to ready. The filter is kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
}
