// Package grid provides the tab that lays every chart out in a responsive
// grid, or a single column when responsive layout is off.
package grid

import (
	"math"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/syncgrid-tui/internal/app"
	"github.com/j-veylop/syncgrid-tui/internal/chart"
	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/overlay"
	"github.com/j-veylop/syncgrid-tui/internal/ui/board"
	"github.com/j-veylop/syncgrid-tui/internal/ui/components"
)

const (
	// CardHeight is the height of one chart card in rows.
	CardHeight = 12
	// CardGap is the number of columns between two cards in a row.
	CardGap = 1
)

// keyMap defines the key bindings specific to the grid tab.
type keyMap struct {
	CursorLeft  key.Binding
	CursorRight key.Binding
	NextChart   key.Binding
	PrevChart   key.Binding
	Select      key.Binding
	Inspect     key.Binding
	Cancel      key.Binding
	Export      key.Binding
	ClearRange  key.Binding
	Responsive  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		CursorLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "crosshair left"),
		),
		CursorRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "crosshair right"),
		),
		NextChart: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next chart"),
		),
		PrevChart: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "prev chart"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "start/apply selection"),
		),
		Inspect: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "inspect chart"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export png"),
		),
		ClearRange: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "show all dates"),
		),
		Responsive: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "toggle responsive"),
		),
	}
}

// Model represents the grid tab state.
type Model struct {
	state    *app.State
	board    *board.Board
	overlay  overlay.Overlay
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
}

// New creates a grid tab over the charts in state. Drag selections are
// published on pub; exports are written to exportDir.
func New(state *app.State, pub chart.Publisher, exportDir string) *Model {
	return &Model{
		state:    state,
		board:    board.New(state, pub, exportDir),
		spinner:  components.NewSpinner("Loading series..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Board returns the chart widgets shown by the tab.
func (m *Model) Board() *board.Board {
	return m.board
}

// Overlay returns the last computed crosshair.
func (m *Model) Overlay() overlay.Overlay {
	return m.overlay
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	m.board.Sync()

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyMsg(msg)

	case tea.MouseMsg:
		cmd = m.handleMouse(msg)

	case spinner.TickMsg:
		if m.state.IsInitialLoading() {
			m.spinner, cmd = m.spinner.Update(msg)
		}
	}

	m.recompute()
	return m, cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.board.Inspecting() {
		if key.Matches(msg, m.keys.Inspect, m.keys.Cancel) {
			m.board.ToggleInspect()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.CursorLeft):
		m.board.Nudge(-1)
	case key.Matches(msg, m.keys.CursorRight):
		m.board.Nudge(1)
	case key.Matches(msg, m.keys.NextChart):
		m.board.Focus(1)
		m.scrollToFocused()
	case key.Matches(msg, m.keys.PrevChart):
		m.board.Focus(-1)
		m.scrollToFocused()
	case key.Matches(msg, m.keys.Select):
		m.board.ToggleSelect()
	case key.Matches(msg, m.keys.Inspect):
		m.board.ToggleInspect()
	case key.Matches(msg, m.keys.Cancel):
		m.board.Cancel()
	case key.Matches(msg, m.keys.Export):
		return m.board.ExportCmd()
	case key.Matches(msg, m.keys.ClearRange):
		m.board.ClearRange()
	case key.Matches(msg, m.keys.Responsive):
		m.state.SetResponsive(!m.state.Responsive())
		m.board.Leave()
		m.resizeViewport()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.board.Inspecting() {
		return nil
	}

	if msg.Y >= 0 && msg.Y < board.ToolbarHeight &&
		msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft &&
		m.board.TriggerHit(msg.X, msg.Y, m.width) {
		m.board.Leave()
		return openPicker
	}

	local := msg
	local.Y = msg.Y - board.ToolbarHeight + m.viewport.YOffset
	if msg.Y < board.ToolbarHeight {
		local.Y = -1
	}
	if m.board.HandleMouse(local, m.targets()) {
		return nil
	}

	if tea.MouseEvent(msg).IsWheel() {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

func openPicker() tea.Msg {
	return app.OpenPickerMsg{}
}

// SetSize sets the available size for the grid.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.resizeViewport()
	m.recompute()
}

func (m *Model) resizeViewport() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-board.ToolbarHeight, 0)
	if maxOffset := max(m.contentHeight()-m.viewport.Height, 0); m.viewport.YOffset > maxOffset {
		m.viewport.SetYOffset(maxOffset)
	}
}

// cards returns the card rectangles in content coordinates.
func (m *Model) cards() []models.Rect {
	return CardRects(m.board.Len(), m.width, m.state.LayoutMode().Columns())
}

// CardRects lays n cards out in rows of cols, filling width.
func CardRects(n, width, cols int) []models.Rect {
	if n == 0 || width <= 0 {
		return nil
	}
	cols = max(cols, 1)
	cardWidth := max((width-(cols-1)*CardGap)/cols, 1)

	rects := make([]models.Rect, n)
	for i := range rects {
		col, row := i%cols, i/cols
		rects[i] = models.Rect{
			X:      col * (cardWidth + CardGap),
			Y:      row * CardHeight,
			Width:  cardWidth,
			Height: CardHeight,
		}
	}
	return rects
}

func (m *Model) contentHeight() int {
	cols := m.state.LayoutMode().Columns()
	rows := (m.board.Len() + cols - 1) / cols
	return rows * CardHeight
}

// targets returns each chart's plot area in content coordinates.
func (m *Model) targets() []board.Target {
	cards := m.cards()
	targets := make([]board.Target, len(cards))
	for i, c := range cards {
		p := components.CardPlot(c.Width, c.Height)
		p.X += c.X
		p.Y += c.Y
		targets[i] = board.Target{Index: i, Plot: p}
	}
	return targets
}

// recompute refreshes the crosshair after anything that moves the hover or
// the chart rectangles.
func (m *Model) recompute() {
	targets := m.targets()
	items := make([]overlay.Box, len(targets))
	for i, t := range targets {
		b := overlay.BoxFromRect(t.Plot)
		// The last column of the plot maps to the last point.
		b.Width = math.Max(b.Width-1, 0)
		items[i] = b
	}
	m.overlay.Recompute(m.state.HoverRatio(), overlay.Geometry{
		Mode:   m.state.LayoutMode(),
		Bounds: overlay.Box{Width: float64(m.width), Height: float64(m.contentHeight())},
		Items:  items,
	})
}

func (m *Model) scrollToFocused() {
	cards := m.cards()
	i := m.board.Focused()
	if i < 0 || i >= len(cards) {
		return
	}
	c := cards[i]
	switch {
	case c.Y < m.viewport.YOffset:
		m.viewport.SetYOffset(c.Y)
	case c.Y+c.Height > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(c.Y + c.Height - m.viewport.Height)
	}
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.CursorLeft,
		m.keys.CursorRight,
		m.keys.NextChart,
		m.keys.Select,
		m.keys.Inspect,
		m.keys.Export,
		m.keys.ClearRange,
		m.keys.Responsive,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.CursorLeft, m.keys.CursorRight},
		{m.keys.NextChart, m.keys.PrevChart},
		{m.keys.Select, m.keys.Cancel, m.keys.ClearRange},
		{m.keys.Inspect, m.keys.Export, m.keys.Responsive},
	}
}
