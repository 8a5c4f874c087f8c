// Package stats provides the index statistics view for the TUI.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/insight/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/insight/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driving"
)

// ErrNoIndexService indicates that no index service was provided.
var ErrNoIndexService = errors.New("index service is required")

// View shows how many passages the index holds per author.
type View struct {
	styles       *styles.Styles
	indexService driving.IndexService
	ctx          context.Context

	stats   *domain.IndexStats
	loading bool
	err     error
	width   int
	height  int
}

// NewView creates a new stats view.
func NewView(s *styles.Styles, indexService driving.IndexService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:       s,
		indexService: indexService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the statistics.
func (v *View) Init() tea.Cmd {
	v.loading = true
	ctx := v.ctx
	svc := v.indexService
	return func() tea.Msg {
		if svc == nil {
			return messages.StatsLoaded{Err: ErrNoIndexService}
		}
		stats, err := svc.Stats(ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

// Update handles messages for the stats view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.StatsLoaded:
		v.loading = false
		v.stats = msg.Stats
		v.err = msg.Err

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return v, messages.Navigate(messages.ViewMenu)
		case "r":
			return v, v.Init()
		}
	}
	return v, nil
}

// View renders the statistics.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Index"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case v.stats == nil:
		b.WriteString(v.styles.Muted.Render("(No statistics)"))
	default:
		v.renderStats(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[r] refresh  [esc] back"))
	return b.String()
}

func (v *View) renderStats(b *strings.Builder) {
	s := v.stats
	fmt.Fprintf(b, "%s %d\n", v.styles.Normal.Render("Passages:"), s.Total)
	fmt.Fprintf(b, "%s %s (%d dimensions)\n", v.styles.Normal.Render("Model:"), s.Model, s.Dimension)
	fmt.Fprintf(b, "%s %s\n\n", v.styles.Normal.Render("Strategy:"), s.Strategy)

	for _, tag := range domain.AllAuthorTags() {
		n, ok := s.PerAuthor[tag]
		if !ok {
			continue
		}
		b.WriteString(v.styles.Author.Render(fmt.Sprintf("  %-28s", tag.Label())))
		fmt.Fprintf(b, " %6d\n", n)
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Stats returns the loaded statistics.
func (v *View) Stats() *domain.IndexStats {
	return v.stats
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
