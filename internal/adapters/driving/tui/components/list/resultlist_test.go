package list

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
)

func sampleResults() []domain.SearchResult {
	return []domain.SearchResult{
		{
			DocumentID:  "hidden-words_para_0",
			Text:        "O Son of Spirit! My first counsel is this: Possess a pure, kindly and radiant heart.",
			SourceFile:  "hidden-words.txt",
			Author:      domain.AuthorBahaullah,
			AuthorLabel: "Bahá'u'lláh",
			Score:       0.95,
		},
		{
			DocumentID:  "paris-talks_para_3",
			Text:        "Thoughts of war bring destruction to all harmony.",
			SourceFile:  "paris-talks.txt",
			Author:      domain.AuthorAbdulBaha,
			AuthorLabel: "'Abdu'l-Bahá",
			Score:       0.85,
		},
		{
			DocumentID: "notes_para_0",
			Text:       "Other words.",
			SourceFile: "notes.txt",
			Author:     domain.AuthorOther,
			Score:      0.75,
		},
	}
}

func TestNewResultList(t *testing.T) {
	list := NewResultList(styles.DefaultStyles())

	require.NotNil(t, list)
	assert.Equal(t, 0, list.Selected())
	assert.True(t, list.IsEmpty())
	assert.Nil(t, list.SelectedResult())
	assert.Nil(t, list.Init())
}

func TestNewResultList_NilStyles(t *testing.T) {
	list := NewResultList(nil)

	require.NotNil(t, list)
	assert.NotNil(t, list.styles)
}

func TestResultList_SetResults(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())
	list.SetSelected(2)

	list.SetResults(sampleResults()[:2])

	assert.Equal(t, 2, list.Count())
	assert.False(t, list.IsEmpty())
	assert.Equal(t, 0, list.Selected(), "new results reset the selection")
}

func TestResultList_Navigation(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.MoveUp()
	assert.Equal(t, 0, list.Selected(), "cannot move above first")

	list.Update(tea.KeyMsg{Type: tea.KeyDown})
	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 2, list.Selected())

	list.MoveDown()
	assert.Equal(t, 2, list.Selected(), "cannot move below last")

	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	assert.Equal(t, 1, list.Selected())
	assert.Equal(t, "paris-talks_para_3", list.SelectedResult().DocumentID)
}

func TestResultList_FirstAndLast(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	assert.Equal(t, 2, list.Selected())
	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'g'}})
	assert.Equal(t, 0, list.Selected())
	list.Update(tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 2, list.Selected())
}

func TestResultList_EmptyIgnoresNavigation(t *testing.T) {
	list := NewResultList(nil)

	list.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	list.MoveDown()

	assert.Equal(t, 0, list.Selected())
	assert.Nil(t, list.SelectedResult())
}

func TestResultList_SetSelected_OutOfRange(t *testing.T) {
	list := NewResultList(nil)
	list.SetResults(sampleResults())

	list.SetSelected(5)
	assert.Equal(t, 0, list.Selected())
	list.SetSelected(-1)
	assert.Equal(t, 0, list.Selected())
}

func TestResultList_View(t *testing.T) {
	list := NewResultList(nil)
	assert.Contains(t, list.View(), "No passages")

	list.SetDimensions(100, 30)
	list.SetResults(sampleResults())
	view := list.View()

	assert.Contains(t, view, "Passages (3)")
	assert.NotContains(t, view, "of 3", "no position when everything fits")
	assert.Contains(t, view, " 1. Bahá'u'lláh · hidden-words.txt")
	assert.Contains(t, view, " 3. Other · notes.txt")
	assert.Contains(t, view, "0.95")
	assert.Contains(t, view, "Possess a pure")
	assert.Contains(t, view, "Other · notes.txt", "missing labels fall back to the tag label")
}

func TestResultList_View_ScrollsToSelection(t *testing.T) {
	list := NewResultList(nil)
	list.SetDimensions(80, 7) // room for one result
	list.SetResults(sampleResults())
	list.SetSelected(2)

	view := list.View()

	assert.Contains(t, view, "notes.txt")
	assert.NotContains(t, view, "hidden-words.txt")
	assert.Contains(t, view, "3 of 3")
}

func TestResultList_Dimensions(t *testing.T) {
	list := NewResultList(nil)
	assert.Equal(t, 80, list.Width())
	assert.Equal(t, 10, list.Height())

	list.SetDimensions(120, 40)
	assert.Equal(t, 120, list.Width())
	assert.Equal(t, 40, list.Height())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Bahá'...", Truncate("Bahá'u'lláh", 8))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
	assert.Equal(t, 8, len([]rune(Truncate(strings.Repeat("á", 20), 8))))
}
