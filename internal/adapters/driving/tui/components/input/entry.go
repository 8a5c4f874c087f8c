package input

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
)

// EntryInput is a multi-line input for journal entries.
type EntryInput struct {
	textarea textarea.Model
	styles   *styles.Styles
	width    int
}

// NewEntryInput creates a new journal entry input.
func NewEntryInput(s *styles.Styles) *EntryInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ta := textarea.New()
	ta.Placeholder = "Write what is on your mind..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetWidth(60)
	ta.SetHeight(6)
	ta.Focus()

	return &EntryInput{
		textarea: ta,
		styles:   s,
		width:    60,
	}
}

// Init initialises the entry input.
func (e *EntryInput) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles input messages.
func (e *EntryInput) Update(msg tea.Msg) (*EntryInput, tea.Cmd) {
	var cmd tea.Cmd
	e.textarea, cmd = e.textarea.Update(msg)
	return e, cmd
}

// View renders the entry input.
func (e *EntryInput) View() string {
	return e.styles.InputField.Render(e.textarea.View())
}

// Value returns the current entry text.
func (e *EntryInput) Value() string {
	return e.textarea.Value()
}

// SetValue sets the entry text.
func (e *EntryInput) SetValue(value string) {
	e.textarea.SetValue(value)
}

// Focus sets focus on the input.
func (e *EntryInput) Focus() tea.Cmd {
	return e.textarea.Focus()
}

// Blur removes focus from the input.
func (e *EntryInput) Blur() {
	e.textarea.Blur()
}

// Focused returns whether the input is focused.
func (e *EntryInput) Focused() bool {
	return e.textarea.Focused()
}

// SetWidth sets the width of the input.
func (e *EntryInput) SetWidth(width int) {
	e.width = width
	inner := width - 4
	if inner < 20 {
		inner = 20
	}
	e.textarea.SetWidth(inner)
}

// Width returns the current width.
func (e *EntryInput) Width() int {
	return e.width
}

// Reset clears the input.
func (e *EntryInput) Reset() {
	e.textarea.Reset()
}
