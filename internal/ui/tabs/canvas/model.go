// Package canvas provides the free layout tab: every chart sits in a frame
// that can be dragged by its header and resized from its corner grip. Frame
// rectangles are persisted through a LayoutStore.
package canvas

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/syncgrid-tui/internal/app"
	"github.com/j-veylop/syncgrid-tui/internal/chart"
	"github.com/j-veylop/syncgrid-tui/internal/logger"
	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/overlay"
	"github.com/j-veylop/syncgrid-tui/internal/ui/board"
	"github.com/j-veylop/syncgrid-tui/internal/ui/components"
)

// Persisted layouts are stored in pixels; the canvas draws in cells.
const (
	PixelsPerColumn = 8
	PixelsPerRow    = 16
)

// Default frame size in cells.
const (
	DefaultFrameColumns = models.DefaultLayoutWidth / PixelsPerColumn
	DefaultFrameRows    = models.DefaultLayoutHeight / PixelsPerRow
)

// frameGap separates default-tiled frames.
const frameGap = 1

// LayoutStore persists frame rectangles. *layout.Persistence implements it.
type LayoutStore interface {
	Loaded() bool
	Layouts() []models.ChartLayout
	Update(ctx context.Context, id string, patch models.LayoutPatch) (models.ChartLayout, error)
	Reset(ctx context.Context) error
}

type keyMap struct {
	CursorLeft  key.Binding
	CursorRight key.Binding
	NextChart   key.Binding
	PrevChart   key.Binding
	MoveLeft    key.Binding
	MoveRight   key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	Narrower    key.Binding
	Wider       key.Binding
	Shorter     key.Binding
	Taller      key.Binding
	Select      key.Binding
	Inspect     key.Binding
	Cancel      key.Binding
	Export      key.Binding
	ClearRange  key.Binding
	Reset       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		CursorLeft:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "crosshair left")),
		CursorRight: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "crosshair right")),
		NextChart:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next frame")),
		PrevChart:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev frame")),
		MoveLeft:    key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H", "move frame left")),
		MoveRight:   key.NewBinding(key.WithKeys("L", "shift+right"), key.WithHelp("L", "move frame right")),
		MoveUp:      key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "move frame up")),
		MoveDown:    key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "move frame down")),
		Narrower:    key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "narrower")),
		Wider:       key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "wider")),
		Shorter:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shorter")),
		Taller:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "taller")),
		Select:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/apply selection")),
		Inspect:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "inspect chart")),
		Cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export png")),
		ClearRange:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "show all dates")),
		Reset:       key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "reset layout")),
	}
}

type pendingSave struct {
	id    string
	patch models.LayoutPatch
}

// saveChain runs store commands one after another in the order they were
// issued, although bubbletea starts every command on its own goroutine.
type saveChain struct {
	last chan struct{}
}

// then wraps fn so it starts only after the previously chained command has
// finished.
func (c *saveChain) then(fn func() tea.Msg) tea.Cmd {
	prev := c.last
	done := make(chan struct{})
	c.last = done
	return func() tea.Msg {
		defer close(done)
		if prev != nil {
			<-prev
		}
		return fn()
	}
}

// Model represents the canvas tab state.
type Model struct {
	state    *app.State
	board    *board.Board
	store    LayoutStore
	stack    *components.FrameStack
	overlay  overlay.Overlay
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int

	gen      uint64
	loaded   bool
	built    bool
	tiledFor int
	pending  []pendingSave
	saves    saveChain
}

// New creates a canvas tab over the charts in state with frames restored
// from store.
func New(state *app.State, pub chart.Publisher, store LayoutStore, exportDir string) *Model {
	m := &Model{
		state:    state,
		board:    board.New(state, pub, exportDir),
		store:    store,
		stack:    components.NewFrameStack(),
		spinner:  components.NewSpinner("Loading layouts..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
	m.stack.OnSizeChange = func(id string, width, height int) {
		w, h := width*PixelsPerColumn, height*PixelsPerRow
		m.pending = append(m.pending, pendingSave{id: id, patch: models.LayoutPatch{Width: &w, Height: &h}})
		m.record(id)
	}
	m.stack.OnPositionChange = func(id string, x, y int) {
		px, py := x*PixelsPerColumn, y*PixelsPerRow
		m.pending = append(m.pending, pendingSave{id: id, patch: models.LayoutPatch{X: &px, Y: &py}})
		m.record(id)
	}
	return m
}

// record mirrors a settled frame rectangle into the shared state.
func (m *Model) record(id string) {
	for i, f := range m.stack.Frames {
		if f.ID == id {
			m.state.SetChartLayout(i, f.Rect())
			return
		}
	}
}

// Board returns the chart widgets shown by the tab.
func (m *Model) Board() *board.Board {
	return m.board
}

// Frames returns the frame stack.
func (m *Model) Frames() *components.FrameStack {
	return m.stack
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
	m.sync()

	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd = m.handleKeyMsg(msg)

	case tea.MouseMsg:
		cmd = m.handleMouse(msg)

	case app.LayoutsResetMsg:
		if msg.Error == nil {
			m.built = false
			m.sync()
		}

	case spinner.TickMsg:
		if m.waiting() {
			m.spinner, cmd = m.spinner.Update(msg)
		}
	}

	m.recompute()
	if save := m.flush(); save != nil {
		cmd = tea.Batch(cmd, save)
	}
	return m, cmd
}

func (m *Model) waiting() bool {
	return m.state.IsInitialLoading() || m.state.Loading.Layouts
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.board.Inspecting() {
		if key.Matches(msg, m.keys.Inspect, m.keys.Cancel) {
			m.board.ToggleInspect()
		}
		return nil
	}

	focused := m.board.Focused()
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
	case key.Matches(msg, m.keys.MoveLeft):
		m.stack.Move(focused, -2, 0)
	case key.Matches(msg, m.keys.MoveRight):
		m.stack.Move(focused, 2, 0)
	case key.Matches(msg, m.keys.MoveUp):
		m.stack.Move(focused, 0, -1)
	case key.Matches(msg, m.keys.MoveDown):
		m.stack.Move(focused, 0, 1)
	case key.Matches(msg, m.keys.Narrower):
		m.stack.Resize(focused, -2, 0)
	case key.Matches(msg, m.keys.Wider):
		m.stack.Resize(focused, 2, 0)
	case key.Matches(msg, m.keys.Shorter):
		m.stack.Resize(focused, 0, -1)
	case key.Matches(msg, m.keys.Taller):
		m.stack.Resize(focused, 0, 1)
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
	case key.Matches(msg, m.keys.Reset):
		return m.resetCmd()
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
	if msg.Y < board.ToolbarHeight && m.stack.Active() < 0 {
		local.Y = -1
	}

	if m.stack.HandleMouse(local) {
		m.board.Leave()
		return nil
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

// flush turns the move and resize reports gathered during this update into
// one command that saves them in order, after any earlier save or reset.
func (m *Model) flush() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	pending := m.pending
	m.pending = nil
	if m.store == nil {
		return nil
	}
	return m.saves.then(saveMsg(m.store, pending))
}

func saveMsg(store LayoutStore, pending []pendingSave) func() tea.Msg {
	return func() tea.Msg {
		var saved app.LayoutSavedMsg
		for _, p := range pending {
			l, err := store.Update(context.Background(), p.id, p.patch)
			if err != nil {
				logger.Warn("saving frame layout failed", "id", p.id, "error", err)
				return app.LayoutSavedMsg{Layout: l, Error: err}
			}
			saved = app.LayoutSavedMsg{Layout: l}
		}
		return saved
	}
}

func (m *Model) resetCmd() tea.Cmd {
	store := m.store
	if store == nil {
		return nil
	}
	return m.saves.then(func() tea.Msg {
		return app.LayoutsResetMsg{Error: store.Reset(context.Background())}
	})
}

// sync rebuilds the frames when the charts are reloaded or the persisted
// layouts arrive, and applies the shared range to every chart.
func (m *Model) sync() {
	m.board.Sync()

	loaded := m.store != nil && m.store.Loaded()
	gen := m.state.ChartsGeneration()
	if m.built && gen == m.gen && loaded == m.loaded && len(m.stack.Frames) == m.board.Len() {
		return
	}
	m.gen, m.loaded, m.built = gen, loaded, true

	var layouts []models.ChartLayout
	if loaded {
		layouts = m.store.Layouts()
	}
	m.stack.Frames = BuildFrames(m.board.Widgets(), layouts, m.width)
	m.tiledFor = m.width
	m.resizeCanvas()
}

// BuildFrames places one frame per chart. Charts with a persisted layout
// get its rectangle converted to cells; the rest are tiled left to right at
// the default size, wrapping at width.
func BuildFrames(widgets []*chart.Widget, layouts []models.ChartLayout, width int) []components.Frame {
	byID := make(map[string]models.ChartLayout, len(layouts))
	for _, l := range layouts {
		byID[l.ID] = l
	}

	perRow := max((width+frameGap)/(DefaultFrameColumns+frameGap), 1)
	def := defaultSize()

	frames := make([]components.Frame, len(widgets))
	for i, w := range widgets {
		id := models.ChartID(i)
		f := components.Frame{
			ID:     id,
			Title:  w.Title,
			X:      (i % perRow) * (DefaultFrameColumns + frameGap),
			Y:      (i / perRow) * DefaultFrameRows,
			Width:  DefaultFrameColumns,
			Height: DefaultFrameRows,
		}
		if l, ok := byID[id]; ok {
			f.X, f.Y = l.X/PixelsPerColumn, l.Y/PixelsPerRow
			f.Width, f.Height = l.Width/PixelsPerColumn, l.Height/PixelsPerRow
			f.Resized = overlay.Resized(&l, def)
		}
		frames[i] = f
	}
	return frames
}

func defaultSize() overlay.Size {
	return overlay.Size{Width: models.DefaultLayoutWidth, Height: models.DefaultLayoutHeight}
}

// SetSize sets the available size for the canvas.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-board.ToolbarHeight, 0)
	if width != m.tiledFor {
		// Default positions depend on how many frames fit in a row.
		m.built = false
		m.sync()
	}
	m.resizeCanvas()
	m.recompute()
}

// resizeCanvas sizes the canvas to the view, or taller when frames extend
// below it, leaving a frame's height of room to move into.
func (m *Model) resizeCanvas() {
	bottom := 0
	for _, f := range m.stack.Frames {
		bottom = max(bottom, f.Y+f.Height)
	}
	height := max(m.viewport.Height, bottom+DefaultFrameRows)
	m.stack.SetBounds(m.width, height)
}

// targets returns each chart's plot area in canvas coordinates, topmost
// frame first.
func (m *Model) targets() []board.Target {
	order := m.stack.Order()
	targets := make([]board.Target, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		idx := order[i]
		targets = append(targets, board.Target{Index: idx, Plot: plotRect(m.stack.Frames[idx])})
	}
	return targets
}

// plotRect is the bar area of a frame: its content minus the title row.
func plotRect(f components.Frame) models.Rect {
	c := f.Content()
	p := components.BodyPlot(c.Width, c.Height)
	p.X += c.X
	p.Y += c.Y
	return p
}

func (m *Model) recompute() {
	frames := make([]overlay.Frame, len(m.stack.Frames))
	for i, f := range m.stack.Frames {
		content := overlay.BoxFromRect(plotRect(f))
		content.Width = max(content.Width-1, 0)
		frames[i] = overlay.Frame{Box: overlay.BoxFromRect(f.Rect()), Content: content}
	}

	var layouts []models.ChartLayout
	if m.store != nil {
		layouts = m.store.Layouts()
	}
	w, h := m.stack.Bounds()
	m.overlay.Recompute(m.state.HoverRatio(), overlay.Geometry{
		Mode:    m.state.LayoutMode(),
		Bounds:  overlay.Box{Width: float64(w), Height: float64(h)},
		Frames:  frames,
		Layouts: layouts,
		Default: defaultSize(),
	})
}

func (m *Model) scrollToFocused() {
	i := m.board.Focused()
	if i < 0 || i >= len(m.stack.Frames) {
		return
	}
	f := m.stack.Frames[i]
	switch {
	case f.Y < m.viewport.YOffset:
		m.viewport.SetYOffset(f.Y)
	case f.Y+f.Height > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(f.Y + f.Height - m.viewport.Height)
	}
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.CursorLeft,
		m.keys.CursorRight,
		m.keys.NextChart,
		m.keys.MoveLeft,
		m.keys.Wider,
		m.keys.Taller,
		m.keys.Select,
		m.keys.Reset,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.CursorLeft, m.keys.CursorRight, m.keys.NextChart, m.keys.PrevChart},
		{m.keys.MoveLeft, m.keys.MoveRight, m.keys.MoveUp, m.keys.MoveDown},
		{m.keys.Narrower, m.keys.Wider, m.keys.Shorter, m.keys.Taller},
		{m.keys.Select, m.keys.Inspect, m.keys.Export, m.keys.Reset},
	}
}
