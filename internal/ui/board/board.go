// Package board holds what the grid and canvas tabs share: one chart widget
// per series, pointer routing into those widgets, keyboard hover, the
// toolbar with the date range trigger, chart inspection and PNG export.
package board

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/syncgrid-tui/internal/app"
	"github.com/j-veylop/syncgrid-tui/internal/chart"
	"github.com/j-veylop/syncgrid-tui/internal/events"
	"github.com/j-veylop/syncgrid-tui/internal/export"
	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/ui/components"
	"github.com/j-veylop/syncgrid-tui/internal/ui/styles"
)

// ToolbarHeight is the number of rows Toolbar renders.
const ToolbarHeight = 2

const toolbarTitle = "Synchronized Charts"

// Target is a chart's plot area in the coordinates of the mouse events
// handed to HandleMouse.
type Target struct {
	Index int
	Plot  models.Rect
}

// Board owns the chart widgets of one tab.
type Board struct {
	state     *app.State
	pub       chart.Publisher
	exportDir string

	widgets []*chart.Widget
	gen     uint64

	hovered    int
	focused    int
	cursor     int
	inspecting bool
}

// New creates a board over the charts in state. Drag selections are
// published on pub.
func New(state *app.State, pub chart.Publisher, exportDir string) *Board {
	b := &Board{
		state:     state,
		pub:       pub,
		exportDir: exportDir,
		hovered:   -1,
	}
	b.Sync()
	return b
}

// Sync rebuilds the widgets after a series reload and applies the shared
// range to each of them.
func (b *Board) Sync() {
	if gen := b.state.ChartsGeneration(); gen != b.gen || b.widgets == nil {
		charts := b.state.Charts()
		b.widgets = make([]*chart.Widget, len(charts))
		for i, c := range charts {
			b.widgets[i] = chart.New(i, c.Spec, c.Points, b.state, b.pub)
		}
		b.gen = gen
		b.hovered = -1
		b.focused = min(b.focused, max(len(charts)-1, 0))
	}

	r := b.state.DateRange()
	for _, w := range b.widgets {
		w.Apply(r)
	}
}

// Widgets returns the chart widgets in chart order.
func (b *Board) Widgets() []*chart.Widget {
	return b.widgets
}

// Len is the number of charts.
func (b *Board) Len() int {
	return len(b.widgets)
}

// Focused returns the index of the chart keyboard actions apply to.
func (b *Board) Focused() int {
	return b.focused
}

// Hovered returns the index of the chart under the pointer, or -1.
func (b *Board) Hovered() int {
	return b.hovered
}

// Active reports whether chart i should be drawn highlighted.
func (b *Board) Active(i int) bool {
	if b.hovered >= 0 {
		return i == b.hovered
	}
	return i == b.focused
}

// HandleMouse routes a mouse event to the chart whose plot contains it.
// Leaving a plot clears the hover and abandons any drag. It reports whether
// a chart consumed the event; wheel events are never consumed.
func (b *Board) HandleMouse(msg tea.MouseMsg, targets []Target) bool {
	hit := -1
	var plot models.Rect
	for _, t := range targets {
		if contains(t.Plot, msg.X, msg.Y) && t.Index < len(b.widgets) {
			hit, plot = t.Index, t.Plot
			break
		}
	}

	if hit != b.hovered {
		b.Leave()
		b.hovered = hit
	}
	if hit < 0 || tea.MouseEvent(msg).IsWheel() {
		return false
	}

	w := b.widgets[hit]
	idx := w.IndexAt(msg.X-plot.X, plot.Width)
	b.focused, b.cursor = hit, idx

	switch msg.Action {
	case tea.MouseActionMotion:
		w.PointerMove(idx)
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return false
		}
		w.PointerMove(idx)
		w.PointerDown(idx)
	case tea.MouseActionRelease:
		w.PointerMove(idx)
		w.PointerUp(idx)
	}
	return true
}

// Leave notifies the hovered chart that the pointer left it.
func (b *Board) Leave() {
	if b.hovered >= 0 && b.hovered < len(b.widgets) {
		b.widgets[b.hovered].PointerLeave()
	}
	b.hovered = -1
}

// Nudge moves the keyboard crosshair on the focused chart by delta points.
func (b *Board) Nudge(delta int) {
	w := b.focusedWidget()
	if w == nil || w.Len() == 0 {
		return
	}
	if b.state.HoverRatio() == nil && delta < 0 {
		b.cursor = w.Len()
	}
	b.cursor = min(max(b.cursor+delta, 0), w.Len()-1)
	w.PointerMove(b.cursor)
}

// Focus moves keyboard focus by delta charts, carrying the crosshair along.
func (b *Board) Focus(delta int) {
	if len(b.widgets) == 0 {
		return
	}
	if w := b.focusedWidget(); w != nil {
		w.CancelDrag()
	}
	b.focused = (b.focused + delta + len(b.widgets)) % len(b.widgets)

	w := b.widgets[b.focused]
	if idx, ok := w.ReadoutIndex(b.state.HoverRatio()); ok {
		b.cursor = idx
		w.PointerMove(idx)
	}
}

// ToggleSelect anchors a keyboard selection at the crosshair, or commits it
// when one is already anchored.
func (b *Board) ToggleSelect() {
	w := b.focusedWidget()
	if w == nil || w.Len() == 0 {
		return
	}
	b.cursor = min(b.cursor, w.Len()-1)
	if w.Dragging() {
		w.PointerUp(b.cursor)
		return
	}
	w.PointerDown(b.cursor)
}

// Cancel drops the keyboard crosshair and any selection in progress.
func (b *Board) Cancel() {
	if w := b.focusedWidget(); w != nil {
		w.PointerLeave()
	}
}

// ClearRange resets the shared range to the extent of the loaded data.
func (b *Board) ClearRange() {
	start, end := b.state.DataExtent()
	if start.IsZero() || end.IsZero() || b.pub == nil {
		return
	}
	b.pub.Publish(events.TopicProviderSetRange, events.SetRangeEvent{Range: models.NewDateRange(start, end)})
}

// Inspecting reports whether the focused chart is shown enlarged.
func (b *Board) Inspecting() bool {
	return b.inspecting
}

// ToggleInspect switches the enlarged view of the focused chart.
func (b *Board) ToggleInspect() {
	b.inspecting = !b.inspecting && b.focusedWidget() != nil
}

// InspectView draws the focused chart as a line plot with axes.
func (b *Board) InspectView(width, height int) string {
	w := b.focusedWidget()
	if w == nil {
		return ""
	}
	caption := fmt.Sprintf("%s · %s", w.Title, b.state.DateRange())
	if p, ok := w.Readout(b.state.HoverRatio()); ok {
		caption += " · " + chart.FormatReadout(p)
	}
	plot := components.RenderLineChart(models.Values(w.Visible()), width-12, height-4, caption)
	hint := styles.HelpStyle.Render("enter/esc close")
	return lipgloss.JoinVertical(lipgloss.Left, plot, "", hint)
}

// ExportCmd writes the focused chart's visible range to a PNG file.
func (b *Board) ExportCmd() tea.Cmd {
	i := b.focused
	charts := b.state.Charts()
	if i < 0 || i >= len(charts) {
		return nil
	}
	data, r, dir := charts[i], b.state.DateRange(), b.exportDir

	return func() tea.Msg {
		path, err := export.WriteFile(dir, data, r, export.Options{})
		return app.ExportResultMsg{Path: path, Success: err == nil, Error: err}
	}
}

// Toolbar renders the title with the range trigger on the right and a
// status line below it.
func (b *Board) Toolbar(width int, mode models.LayoutMode) string {
	trigger := renderTrigger(b.state.DateRange())
	title := styles.ChartTitleStyle.Render(toolbarTitle)

	gap := max(width-lipgloss.Width(title)-lipgloss.Width(trigger), 1)
	top := ansi.Truncate(title+strings.Repeat(" ", gap)+trigger, width, "")

	hover := "-"
	if r := b.state.HoverRatio(); r != nil {
		hover = fmt.Sprintf("%.0f%%", *r*100)
	}
	status := fmt.Sprintf("%s · %d charts · hover %s · drag across a chart to zoom", mode, len(b.widgets), hover)
	if w := b.focusedWidget(); w != nil && w.Dragging() {
		status = fmt.Sprintf("%s · selecting on %s, release to apply", mode, w.Title)
	}

	return top + "\n" + ansi.Truncate(styles.HelpStyle.Render(status), width, "…")
}

// TriggerHit reports whether (x, y), relative to the toolbar, is on the
// range trigger.
func (b *Board) TriggerHit(x, y, width int) bool {
	tw := lipgloss.Width(renderTrigger(b.state.DateRange()))
	return y == 0 && x >= width-tw && x < width
}

func renderTrigger(r models.DateRange) string {
	return styles.ToolbarButtonStyle.Render("▦ " + r.String())
}

func (b *Board) focusedWidget() *chart.Widget {
	if b.focused < 0 || b.focused >= len(b.widgets) {
		return nil
	}
	return b.widgets[b.focused]
}

func contains(r models.Rect, x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}
