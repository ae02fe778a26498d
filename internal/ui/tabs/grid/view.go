package grid

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/syncgrid-tui/internal/ui/board"
	"github.com/j-veylop/syncgrid-tui/internal/ui/components"
	"github.com/j-veylop/syncgrid-tui/internal/ui/styles"
)

// View renders the grid tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderLoading(m.spinner, sourceDetail(m.state.DataSource()), m.width, m.height)
	}

	m.board.Sync()
	toolbar := m.board.Toolbar(m.width, m.state.LayoutMode())
	bodyHeight := max(m.height-board.ToolbarHeight, 0)

	if m.board.Len() == 0 {
		empty := styles.CenterBoth(styles.HelpStyle.Render("No charts loaded"), m.width, bodyHeight)
		return lipgloss.JoinVertical(lipgloss.Left, toolbar, empty)
	}

	if m.board.Inspecting() {
		return lipgloss.JoinVertical(lipgloss.Left, toolbar, m.board.InspectView(m.width, bodyHeight))
	}

	m.viewport.SetContent(m.renderCards())
	return lipgloss.JoinVertical(lipgloss.Left, toolbar, m.viewport.View())
}

// renderCards draws every card at its rectangle and paints the crosshair
// columns over the result.
func (m *Model) renderCards() string {
	cards := m.cards()
	ratio := m.state.HoverRatio()
	content := components.Canvas(m.width, m.contentHeight())

	for i, w := range m.board.Widgets() {
		if i >= len(cards) {
			break
		}
		c := cards[i]
		card := components.RenderChartCard(w, c.Width, c.Height, ratio, m.board.Active(i))
		content = components.PlaceAt(content, card, c.X, c.Y)
	}

	if len(m.overlay.Columns) == 0 {
		return content
	}

	targets := m.targets()
	top, bottom := targets[0].Plot.Y, 0
	for _, t := range targets {
		top = min(top, t.Plot.Y)
		bottom = max(bottom, t.Plot.Y+t.Plot.Height-1)
	}
	for _, x := range m.overlay.Columns {
		content = components.PaintColumn(content, int(math.Round(x)), top, bottom, styles.CrosshairStyle)
	}
	return content
}

func sourceDetail(source string) string {
	if source == "" {
		return ""
	}
	return "source: " + source
}
