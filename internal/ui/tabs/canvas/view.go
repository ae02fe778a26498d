package canvas

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/syncgrid-tui/internal/ui/board"
	"github.com/j-veylop/syncgrid-tui/internal/ui/components"
	"github.com/j-veylop/syncgrid-tui/internal/ui/styles"
)

// View renders the canvas tab.
func (m *Model) View() string {
	if m.waiting() {
		return components.RenderLoading(m.spinner, m.loadingDetail(), m.width, m.height)
	}

	m.sync()
	toolbar := m.board.Toolbar(m.width, m.state.LayoutMode())
	bodyHeight := max(m.height-board.ToolbarHeight, 0)

	if m.board.Len() == 0 {
		empty := styles.CenterBoth(styles.HelpStyle.Render("No charts loaded"), m.width, bodyHeight)
		return lipgloss.JoinVertical(lipgloss.Left, toolbar, empty)
	}

	if m.board.Inspecting() {
		return lipgloss.JoinVertical(lipgloss.Left, toolbar, m.board.InspectView(m.width, bodyHeight))
	}

	m.viewport.SetContent(m.renderFrames())
	return lipgloss.JoinVertical(lipgloss.Left, toolbar, m.viewport.View())
}

// renderFrames draws the frames bottom to top and paints the crosshair line
// over them.
func (m *Model) renderFrames() string {
	w, h := m.stack.Bounds()
	content := components.Canvas(w, h)
	ratio := m.state.HoverRatio()
	widgets := m.board.Widgets()
	dragging := m.stack.Active()

	for _, idx := range m.stack.Order() {
		if idx >= len(widgets) {
			continue
		}
		f := m.stack.Frames[idx]
		c := f.Content()
		body := components.RenderChartBody(widgets[idx], c.Width, c.Height, ratio)
		active := m.board.Active(idx) || dragging == idx
		content = components.PlaceAt(content, components.RenderFrame(f, body, active), f.X, f.Y)
	}

	if !m.overlay.HasLine {
		return content
	}
	line := m.overlay.Line
	top := int(math.Round(line.Top))
	bottom := int(math.Round(line.Bottom)) - 1
	return components.PaintColumn(content, int(math.Round(line.X)), top, bottom, styles.CrosshairStyle)
}

// loadingDetail names what the canvas is still waiting for.
func (m *Model) loadingDetail() string {
	if m.state.IsInitialLoading() {
		return "waiting for the series"
	}
	return "restoring saved frame positions"
}
