package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Bindings(t *testing.T) {
	km := DefaultKeyMap()
	require.NotNil(t, km)

	tests := []struct {
		name    string
		binding key.Binding
		keys    []string
	}{
		{"quit", km.Quit, []string{"q", "ctrl+c"}},
		{"back", km.Back, []string{"esc"}},
		{"search", km.Search, []string{"enter"}},
		{"open", km.Open, []string{"enter"}},
		{"submit", km.Submit, []string{"ctrl+s"}},
		{"up", km.Up, []string{"up", "k"}},
		{"down", km.Down, []string{"down", "j"}},
		{"top", km.Top, []string{"home", "g"}},
		{"bottom", km.Bottom, []string{"end", "G"}},
		{"filter", km.Filter, []string{"tab"}},
		{"refresh", km.Refresh, []string{"r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.keys, tt.binding.Keys())
			assert.NotEmpty(t, tt.binding.Help().Desc)
		})
	}
}

func TestKeyMap_MatchesKeyMsg(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, km.Up))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyUp}, km.Up))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyTab}, km.Filter))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlS}, km.Submit))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}}, km.Up))
}

func TestKeyMap_HelpFor(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.HelpFor(Query), 2)
	assert.Len(t, km.HelpFor(Results), 4)
	assert.Equal(t, "ctrl+s", km.HelpFor(Writing)[0].Help().Key)
	assert.Equal(t, "r", km.HelpFor(Stats)[0].Help().Key)
	assert.Equal(t, km.HelpFor(Query), km.HelpFor(Context(99)))
}

func TestKeyMap_Sections(t *testing.T) {
	sections := DefaultKeyMap().Sections()

	titles := make([]string, 0, len(sections))
	for _, s := range sections {
		titles = append(titles, s.Title)
		assert.NotEmpty(t, s.Bindings, s.Title)
	}
	assert.Equal(t, []string{"General", "Search", "Journal", "Passage", "Stats"}, titles)
}
