// Package passage provides the full passage reading view for the TUI.
package passage

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
)

// chromeLines is the height taken by the attribution, rule, position,
// link and help lines around the text.
const chromeLines = 9

// View shows one passage with its attribution.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	result *domain.SearchResult
	from   messages.ViewType
	lines  []string
	offset int
	width  int
	height int
}

// NewView creates a passage view. Nil styles or keymap use the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keymap: km,
		from:   messages.ViewSearch,
		width:  80,
		height: 24,
	}
}

// SetPassage shows a result from the top. Back returns to from.
func (v *View) SetPassage(result domain.SearchResult, from messages.ViewType) {
	v.result = &result
	v.from = from
	v.offset = 0
	v.rewrap()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the passage view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.onKey(msg)
	}
	return v, nil
}

func (v *View) onKey(msg tea.KeyMsg) tea.Cmd {
	page := v.page()
	switch {
	case key.Matches(msg, v.keymap.Back):
		return messages.Navigate(v.from)
	case key.Matches(msg, v.keymap.Up):
		v.scrollTo(v.offset - 1)
	case key.Matches(msg, v.keymap.Down):
		v.scrollTo(v.offset + 1)
	case key.Matches(msg, v.keymap.PageUp):
		v.scrollTo(v.offset - page)
	case key.Matches(msg, v.keymap.PageDown):
		v.scrollTo(v.offset + page)
	case key.Matches(msg, v.keymap.Top):
		v.scrollTo(0)
	case key.Matches(msg, v.keymap.Bottom):
		v.scrollTo(v.bottom())
	}
	return nil
}

// scrollTo moves the first visible line to n, kept within the text.
func (v *View) scrollTo(n int) {
	v.offset = min(max(n, 0), v.bottom())
}

// page returns the number of text lines that fit.
func (v *View) page() int {
	return max(v.height-chromeLines, 1)
}

// bottom returns the largest offset that still fills the page.
func (v *View) bottom() int {
	return max(len(v.lines)-v.page(), 0)
}

// rewrap lays the text out for the current width, keeping the offset in
// range.
func (v *View) rewrap() {
	v.lines = v.lines[:0]
	if v.result != nil {
		width := max(v.width-4, 20)
		for _, para := range strings.Split(v.result.Text, "\n") {
			v.lines = append(v.lines, wrap(para, width)...)
		}
	}
	v.scrollTo(v.offset)
}

// wrap splits text into lines of at most width runes. Words longer than
// width are placed on their own line.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	line, n := words[0], utf8.RuneCountInString(words[0])
	for _, w := range words[1:] {
		wn := utf8.RuneCountInString(w)
		if n+1+wn > width {
			lines = append(lines, line)
			line, n = w, wn
			continue
		}
		line += " " + w
		n += 1 + wn
	}
	return append(lines, line)
}

// View renders the passage.
func (v *View) View() string {
	var b strings.Builder

	if v.result == nil {
		b.WriteString(v.styles.Title.Render("Passage"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Muted.Render("(No passage selected)"))
		b.WriteString("\n\n")
		b.WriteString(v.help())
		return b.String()
	}

	r := v.result
	b.WriteString(v.styles.Author.Render(authorLabel(r)))
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  %s  ¶%d  score %.3f", r.SourceFile, r.ParagraphIndex, r.Score)))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(v.width-4, 60)))
	b.WriteString("\n\n")

	end := min(v.offset+v.page(), len(v.lines))
	for _, line := range v.lines[v.offset:end] {
		b.WriteString(v.styles.Passage.Render(line))
		b.WriteString("\n")
	}

	if len(v.lines) > v.page() {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d (%d%%)",
			v.offset+1, end, len(v.lines), end*100/len(v.lines))))
	}

	if r.LibraryURL != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render("Read more: " + r.LibraryURL))
	}

	b.WriteString("\n\n")
	b.WriteString(v.help())
	return b.String()
}

func authorLabel(r *domain.SearchResult) string {
	if r.AuthorLabel != "" {
		return r.AuthorLabel
	}
	return r.Author.Label()
}

func (v *View) help() string {
	parts := make([]string, 0, 4)
	for _, b := range v.keymap.HelpFor(keymap.Reading) {
		h := b.Help()
		parts = append(parts, fmt.Sprintf("[%s] %s", h.Key, h.Desc))
	}
	return v.styles.Help.Render(strings.Join(parts, "  "))
}

// SetDimensions sets the view dimensions and rewraps the text.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.rewrap()
}

// Passage returns the passage being shown.
func (v *View) Passage() *domain.SearchResult {
	return v.result
}

// From returns the view Back returns to.
func (v *View) From() messages.ViewType {
	return v.from
}
