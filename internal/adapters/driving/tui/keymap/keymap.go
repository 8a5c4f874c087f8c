// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds every binding the views react to.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	// Search submits a query; Open reads the selected passage. Both are
	// bound to enter and told apart by which pane has focus.
	Search key.Binding
	Open   key.Binding

	// Submit reflects on a multi-line journal entry.
	Submit key.Binding

	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// History recalls earlier queries while the input has focus.
	History key.Binding

	// Filter cycles the author filter.
	Filter key.Binding

	// NewSearch clears the input and focuses it again.
	NewSearch key.Binding

	// Refresh reloads index statistics.
	Refresh key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	bind := func(help, desc string, keys ...string) key.Binding {
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
	}
	return &KeyMap{
		Quit:      bind("q", "quit", "q", "ctrl+c"),
		Help:      bind("?", "help", "?"),
		Back:      bind("esc", "back", "esc"),
		Search:    bind("enter", "search", "enter"),
		Open:      bind("enter", "read", "enter"),
		Submit:    bind("ctrl+s", "reflect", "ctrl+s"),
		Up:        bind("↑/k", "up", "up", "k"),
		Down:      bind("↓/j", "down", "down", "j"),
		PageUp:    bind("pgup", "page up", "pgup", "ctrl+u"),
		PageDown:  bind("pgdn", "page down", "pgdown", "ctrl+d"),
		Top:       bind("g", "top", "home", "g"),
		Bottom:    bind("G", "bottom", "end", "G"),
		History:   bind("↑/↓", "history", "up", "down"),
		Filter:    bind("tab", "author", "tab"),
		NewSearch: bind("n", "new", "n"),
		Refresh:   bind("r", "refresh", "r"),
	}
}

// Context names the situation a set of hints is shown for.
type Context int

const (
	// Query is the search input with focus.
	Query Context = iota
	// Results is a results list with focus.
	Results
	// Writing is the journal editor.
	Writing
	// Reading is the passage view.
	Reading
	// Stats is the statistics view.
	Stats
)

// HelpFor returns the short hints for the status bar in c.
func (k *KeyMap) HelpFor(c Context) []key.Binding {
	switch c {
	case Results:
		return []key.Binding{k.NewSearch, k.Up, k.Open, k.Back}
	case Writing:
		return []key.Binding{k.Submit, k.Filter, k.Back}
	case Reading:
		return []key.Binding{k.Up, k.Top, k.Bottom, k.Back}
	case Stats:
		return []key.Binding{k.Refresh, k.Back}
	default:
		return []key.Binding{k.Filter, k.Back}
	}
}

// Section is a titled group of bindings on the help screen.
type Section struct {
	Title    string
	Bindings []key.Binding
}

// Sections returns the help screen, one section per view.
func (k *KeyMap) Sections() []Section {
	return []Section{
		{"General", []key.Binding{k.Back, k.Help, k.Quit}},
		{"Search", []key.Binding{k.Search, k.Filter, k.History, k.Open, k.NewSearch}},
		{"Journal", []key.Binding{k.Submit, k.Filter, k.NewSearch}},
		{"Passage", []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom}},
		{"Stats", []key.Binding{k.Refresh}},
	}
}
