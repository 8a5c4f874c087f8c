// Package input provides the query and journal entry inputs for the TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
)

// maxHistory bounds the remembered queries.
const maxHistory = 50

// SearchInput is a single-line query input that remembers submitted
// queries. Up and down recall them while the input is focused.
type SearchInput struct {
	field  textinput.Model
	styles *styles.Styles
	label  string
	width  int

	history []string
	// cursor indexes history while recalling; len(history) means the draft.
	cursor int
	draft  string
}

// NewSearchInput creates a focused query input.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Placeholder = "A word, a phrase, a question..."
	field.CharLimit = 512
	field.Width = 50
	field.Focus()

	return &SearchInput{
		field:  field,
		styles: s,
		label:  "Search: ",
		width:  50,
	}
}

// Init starts the cursor blinking.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses, including history recall.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && s.field.Focused() {
		switch key.Type {
		case tea.KeyUp:
			s.recall(-1)
			return s, nil
		case tea.KeyDown:
			s.recall(1)
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.field, cmd = s.field.Update(msg)
	return s, cmd
}

// recall moves through history by step, restoring the draft past the end.
func (s *SearchInput) recall(step int) {
	if len(s.history) == 0 {
		return
	}
	if s.cursor == len(s.history) {
		s.draft = s.field.Value()
	}

	s.cursor = min(max(s.cursor+step, 0), len(s.history))
	if s.cursor == len(s.history) {
		s.field.SetValue(s.draft)
	} else {
		s.field.SetValue(s.history[s.cursor])
	}
	s.field.CursorEnd()
}

// Remember records a submitted query. Blank queries and immediate repeats
// are ignored.
func (s *SearchInput) Remember(query string) {
	query = strings.TrimSpace(query)
	if query != "" && (len(s.history) == 0 || s.history[len(s.history)-1] != query) {
		s.history = append(s.history, query)
		if len(s.history) > maxHistory {
			s.history = s.history[len(s.history)-maxHistory:]
		}
	}
	s.cursor = len(s.history)
	s.draft = ""
}

// History returns the remembered queries, oldest first.
func (s *SearchInput) History() []string {
	return append([]string(nil), s.history...)
}

// View renders the label and the input.
func (s *SearchInput) View() string {
	label := s.styles.Title.Render(s.label)
	field := s.styles.InputField.Render(s.field.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the query with surrounding whitespace removed.
func (s *SearchInput) Value() string {
	return strings.TrimSpace(s.field.Value())
}

// SetValue replaces the input text.
func (s *SearchInput) SetValue(value string) {
	s.field.SetValue(value)
}

// SetLabel sets the label rendered before the input.
func (s *SearchInput) SetLabel(label string) {
	s.label = label
}

// Focus focuses the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.field.Focus()
}

// Blur removes focus.
func (s *SearchInput) Blur() {
	s.field.Blur()
}

// Focused reports whether the input has focus.
func (s *SearchInput) Focused() bool {
	return s.field.Focused()
}

// SetWidth fits the input, less its label, into width columns.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	s.field.Width = max(width-lipgloss.Width(s.label)-6, 20)
}

// Width returns the width set by SetWidth.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the text and leaves history intact.
func (s *SearchInput) Reset() {
	s.field.Reset()
	s.cursor = len(s.history)
	s.draft = ""
}
