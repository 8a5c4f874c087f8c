package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/core/domain"
)

func newTestPorts() *Ports {
	return &Ports{
		Search: &MockSearchService{
			SearchFunc: func(_ context.Context, query string, _ domain.SearchOptions) ([]domain.SearchResult, error) {
				return []domain.SearchResult{
					{DocumentID: "p1", Text: "passage about " + query, SourceFile: "gleanings.txt", Author: domain.AuthorBahaullah},
				}, nil
			},
		},
		Journal: &MockJournalService{Result: &domain.JournalResult{Rephrased: "themes"}},
		Index:   &MockIndexService{StatsResult: &domain.IndexStats{Total: 3}},
	}
}

func newReadyApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 40)
	return app
}

func typeText(app *App, text string) {
	for _, r := range text {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// run executes cmd and feeds the resulting message back into the app.
func run(app *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	app.Update(cmd())
}

func TestNewApp_Success(t *testing.T) {
	app, err := NewApp(newTestPorts())

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
	assert.NotNil(t, app.Init())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Index: &MockIndexService{}})

	assert.ErrorIs(t, err, ErrMissingSearchService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(newTestPorts())
	require.NoError(t, err)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "Insight")
}

func TestApp_SearchAndReadPassage(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	app.Update(messages.ViewChanged{View: messages.ViewSearch})
	assert.Equal(t, messages.ViewSearch, app.CurrentView())

	typeText(app, "unity")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(app, cmd)

	require.Len(t, app.Results(), 1)
	assert.Equal(t, "passage about unity", app.Results()[0].Text)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(app, cmd)
	assert.Equal(t, messages.ViewPassage, app.CurrentView())
	assert.Contains(t, app.View(), "passage about unity")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	run(app, cmd)
	assert.Equal(t, messages.ViewSearch, app.CurrentView())
	assert.Len(t, app.Results(), 1, "results survive reading a passage")
}

func TestApp_MenuToSearchResets(t *testing.T) {
	app := newReadyApp(t, newTestPorts())
	app.Update(messages.ViewChanged{View: messages.ViewSearch})
	app.Update(messages.SearchCompleted{Query: "q", Results: []domain.SearchResult{{DocumentID: "x"}}})

	app.Update(messages.ViewChanged{View: messages.ViewMenu})
	app.Update(messages.ViewChanged{View: messages.ViewSearch})

	assert.Empty(t, app.Results())
}

func TestApp_Journal(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	app.Update(messages.ViewChanged{View: messages.ViewJournal})
	assert.Equal(t, messages.ViewJournal, app.CurrentView())

	app.journalView.SetEntry("a hard day")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	run(app, cmd)

	assert.Equal(t, "themes", app.journalView.Rephrased())
	assert.NoError(t, app.Err())
}

func TestApp_JournalUnavailable(t *testing.T) {
	ports := newTestPorts()
	ports.Journal = &MockJournalService{Unavailable: true}
	app := newReadyApp(t, ports)

	app.Update(messages.ViewChanged{View: messages.ViewJournal})

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.ErrorIs(t, app.Err(), domain.ErrLLMUnavailable)
	assert.NotContains(t, app.View(), "Journal")
}

func TestApp_Stats(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewStats})
	run(app, cmd)

	assert.Equal(t, messages.ViewStats, app.CurrentView())
	assert.Contains(t, app.View(), "Passages:")
}

func TestApp_Help(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	app.Update(messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "ctrl+s")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_Quit(t *testing.T) {
	app := newReadyApp(t, newTestPorts())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
