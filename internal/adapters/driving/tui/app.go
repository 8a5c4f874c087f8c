package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/views/journal"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/views/passage"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/views/stats"
	"github.com/custodia-labs/insight/internal/core/domain"
)

// App is the root tea.Model. It owns one instance of every view and routes
// messages to the active one.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView    *menu.View
	searchView  *search.View
	journalView *journal.View
	passageView *passage.View
	statsView   *stats.View

	currentView messages.ViewType

	// err is the last error reported by any view.
	err error

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// NewApp creates the application for ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		menuView:    menu.NewView(s, ports.journalAvailable()),
		searchView:  search.NewView(s, km, ports.Search),
		journalView: journal.NewView(s, km, ports.Journal),
		passageView: passage.NewView(s, km),
		statsView:   stats.NewView(s, ports.Index),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context searches and reflections run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.journalView.WithContext(ctx)
	a.statsView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tea.SetWindowTitle("insight"))
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if key.Matches(msg, a.keymap.Back) {
				a.currentView = messages.ViewMenu
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.PassageSelected:
		a.passageView.SetPassage(msg.Result, msg.From)
		a.currentView = messages.ViewPassage
		return a, nil

	// Replies go to the view that asked, whichever view is active now.
	case messages.SearchCompleted:
		a.err = msg.Err
		var cmd tea.Cmd
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd
	case messages.JournalCompleted:
		a.err = msg.Err
		var cmd tea.Cmd
		a.journalView, cmd = a.journalView.Update(msg)
		return a, cmd
	case messages.StatsLoaded:
		a.err = msg.Err
		var cmd tea.Cmd
		a.statsView, cmd = a.statsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// switchTo activates view. Search and journal start fresh unless the user
// is coming back from a passage they opened there.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	if view == messages.ViewJournal && !a.ports.journalAvailable() {
		a.err = fmt.Errorf("journal mode: %w", domain.ErrLLMUnavailable)
		return nil
	}

	returning := a.currentView == messages.ViewPassage
	a.currentView = view

	switch view {
	case messages.ViewSearch:
		if returning {
			return nil
		}
		a.searchView.Reset()
		return a.searchView.Init()
	case messages.ViewJournal:
		if returning {
			return nil
		}
		a.journalView.Reset()
		return a.journalView.Init()
	case messages.ViewStats:
		return a.statsView.Init()
	default:
		return nil
	}
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewJournal:
		a.journalView, cmd = a.journalView.Update(msg)
	case messages.ViewPassage:
		a.passageView, cmd = a.passageView.Update(msg)
	case messages.ViewStats:
		a.statsView, cmd = a.statsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewJournal:
		return a.journalView.View()
	case messages.ViewPassage:
		return a.passageView.View()
	case messages.ViewStats:
		return a.statsView.View()
	case messages.ViewHelp:
		return a.help()
	default:
		return a.menuView.View()
	}
}

// help lists the bindings of every view, one section each.
func (a *App) help() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help") + "\n")
	for _, section := range a.keymap.Sections() {
		b.WriteString("\n" + a.styles.Normal.Render(section.Title+":") + "\n")
		for _, binding := range section.Bindings {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\n" + a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the program on the terminal and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType { return a.currentView }

// Query returns the search input.
func (a *App) Query() string { return a.searchView.Query() }

// Results returns the passages in the search view.
func (a *App) Results() []domain.SearchResult { return a.searchView.Results() }

// Err returns the last error reported by any view.
func (a *App) Err() error { return a.err }

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool { return a.ready }

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width, a.height = width, height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.journalView.SetDimensions(width, height)
	a.passageView.SetDimensions(width, height)
	a.statsView.SetDimensions(width, height)
}
