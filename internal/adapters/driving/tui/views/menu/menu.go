// Package menu provides the main navigation menu view for the TUI.
package menu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. An entry either opens View or quits.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

func (i Item) activate() tea.Cmd {
	if i.Quit {
		return tea.Quit
	}
	return messages.Navigate(i.View)
}

// View is the landing menu. Entries are numbered and a digit opens the
// matching entry directly.
type View struct {
	styles   *styles.Styles
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu. Journal is listed only when journal mode is
// available.
func NewView(s *styles.Styles, journal bool) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	items := make([]Item, 0, 5)
	items = append(items, Item{Label: "Search", Hint: "find passages by meaning", View: messages.ViewSearch})
	if journal {
		items = append(items, Item{Label: "Journal", Hint: "reflect on an entry", View: messages.ViewJournal})
	}
	items = append(items,
		Item{Label: "Stats", Hint: "what the index holds", View: messages.ViewStats},
		Item{Label: "Help", Hint: "keys for every view", View: messages.ViewHelp},
		Item{Label: "Quit", Quit: true},
	)

	return &View{styles: s, items: items, width: 80, height: 24}
}

// Init implements the view contract.
func (v *View) Init() tea.Cmd { return nil }

// Update moves the cursor and opens entries.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		k := msg.String()
		switch k {
		case "up", "k":
			v.selected = max(v.selected-1, 0)
		case "down", "j":
			v.selected = min(v.selected+1, len(v.items)-1)
		case "enter":
			return v, v.items[v.selected].activate()
		case "q":
			return v, tea.Quit
		default:
			if n, ok := digit(k); ok && n <= len(v.items) {
				v.selected = n - 1
				return v, v.items[v.selected].activate()
			}
		}
	}
	return v, nil
}

func digit(k string) (int, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '9' {
		return 0, false
	}
	return int(k[0] - '0'), true
}

// View renders the menu with hints aligned in one column.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	width := 0
	for _, item := range v.items {
		width = max(width, len(item.Label))
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Insight") + "\n")
	b.WriteString(v.styles.Muted.Render("Semantic search of the Bahá'í writings") + "\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d %-*s", i+1, width, item.Label)
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		if item.Hint != "" {
			b.WriteString("  " + v.styles.Muted.Render(item.Hint))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + v.styles.Help.Render("[j/k] move  [1-9/enter] open  [q] quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int { return v.selected }

// Items returns the menu entries.
func (v *View) Items() []Item { return v.items }
