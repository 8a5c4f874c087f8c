// Package styles provides the colour palette and lipgloss styles for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/insight/internal/core/domain"
)

// Similarity bands for colouring scores.
const (
	StrongScore = 0.6
	FairScore   = 0.4
)

// Theme is the colour palette.
type Theme struct {
	Primary    lipgloss.Color // gold accent, titles and selection
	Secondary  lipgloss.Color // author names without an accent of their own
	Background lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color // strong matches
	Warning    lipgloss.Color // fair matches
	Error      lipgloss.Color
	Border     lipgloss.Color

	// Authors gives each author a recognisable accent in result lists.
	Authors map[domain.AuthorTag]lipgloss.Color
}

// DefaultTheme returns the night-and-parchment palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#D4A24C"),
		Secondary:  lipgloss.Color("#7FB3D5"),
		Background: lipgloss.Color("#1C1B22"),
		Foreground: lipgloss.Color("#E8E3D9"),
		Muted:      lipgloss.Color("#7D7A73"),
		Success:    lipgloss.Color("#9CCB86"),
		Warning:    lipgloss.Color("#E9C46A"),
		Error:      lipgloss.Color("#E76F51"),
		Border:     lipgloss.Color("#4A4752"),
		Authors: map[domain.AuthorTag]lipgloss.Color{
			domain.AuthorBahaullah:               lipgloss.Color("#E0B860"),
			domain.AuthorTheBab:                  lipgloss.Color("#8FC9A8"),
			domain.AuthorAbdulBaha:               lipgloss.Color("#7FB3D5"),
			domain.AuthorShoghiEffendi:           lipgloss.Color("#B59AD6"),
			domain.AuthorUniversalHouseOfJustice: lipgloss.Color("#D98C8C"),
			domain.AuthorCompilations:            lipgloss.Color("#A9B7C6"),
		},
	}
}

// Styles are the lipgloss styles built from a Theme.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Author     lipgloss.Style
	Passage    lipgloss.Style // full passage text with a gold rule on the left
	Error      lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	authors map[domain.AuthorTag]lipgloss.Style
	strong  lipgloss.Style
	fair    lipgloss.Style
}

// NewStyles builds styles from theme; nil uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	s := &Styles{
		theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Normal:   lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Background).
			Background(theme.Primary),
		Author: lipgloss.NewStyle().Italic(true).Foreground(theme.Secondary),
		Passage: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Primary).
			PaddingLeft(1),
		Error: lipgloss.NewStyle().Foreground(theme.Error),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#141319")).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(theme.Muted),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		authors: make(map[domain.AuthorTag]lipgloss.Style, len(theme.Authors)),
		strong:  lipgloss.NewStyle().Bold(true).Foreground(theme.Success),
		fair:    lipgloss.NewStyle().Foreground(theme.Warning),
	}
	for tag, c := range theme.Authors {
		s.authors[tag] = lipgloss.NewStyle().Italic(true).Foreground(c)
	}
	return s
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// ForAuthor returns the author's accent style, or Author when it has none.
func (s *Styles) ForAuthor(tag domain.AuthorTag) lipgloss.Style {
	if st, ok := s.authors[tag]; ok {
		return st
	}
	return s.Author
}

// ForScore returns the style of a cosine similarity score.
func (s *Styles) ForScore(score float64) lipgloss.Style {
	switch {
	case score >= StrongScore:
		return s.strong
	case score >= FairScore:
		return s.fair
	default:
		return s.Muted
	}
}
