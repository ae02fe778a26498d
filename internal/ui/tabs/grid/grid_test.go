package grid

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/syncgrid-tui/internal/app"
	"github.com/j-veylop/syncgrid-tui/internal/events"
	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/series"
	"github.com/j-veylop/syncgrid-tui/internal/ui/board"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.Local)
}

// newGrid builds a 93-column grid of three ten-day charts. Each card is
// 30x12 with its plot at (1,2) sized 28x9.
func newGrid(t *testing.T) (*Model, *app.State) {
	t.Helper()
	bus := events.NewBus()
	events.Bridge(bus)
	state := app.NewState(app.WithBus(bus))
	t.Cleanup(state.Close)

	var charts []models.ChartData
	for i, title := range []string{"Users", "Sessions", "Revenue"} {
		spec := models.ChartSpec{Title: title, Color: "#3b82f6", Seed: uint32(i + 1)}
		charts = append(charts, models.ChartData{
			Spec:   spec,
			Points: series.GenerateDailySeries(day(1), day(10), series.DefaultOptions().WithSeed(spec.Seed)),
		})
	}
	state.SetCharts(charts, day(1), day(10), "generated")
	state.SetLoading("initial", false)

	m := New(state, bus, t.TempDir())
	m.SetSize(93, 40)
	return m, state
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion}
}

// plotRow is a tab row inside the first row of plots.
const plotRow = board.ToolbarHeight + 3

func TestCardRects(t *testing.T) {
	rects := CardRects(4, 93, 3)
	if len(rects) != 4 {
		t.Fatalf("len = %d", len(rects))
	}
	if rects[1] != (models.Rect{X: 31, Y: 0, Width: 30, Height: CardHeight}) {
		t.Errorf("rects[1] = %+v", rects[1])
	}
	if rects[3] != (models.Rect{X: 0, Y: CardHeight, Width: 30, Height: CardHeight}) {
		t.Errorf("rects[3] = %+v", rects[3])
	}

	single := CardRects(2, 80, 1)
	if single[1].Width != 80 || single[1].Y != CardHeight {
		t.Errorf("vertical rect = %+v", single[1])
	}

	if CardRects(0, 80, 3) != nil {
		t.Error("no cards should give nil")
	}
}

func TestGrid_HoverDrivesEveryChart(t *testing.T) {
	m, state := newGrid(t)

	m.Update(motion(1+27, plotRow))

	r := state.HoverRatio()
	if r == nil || *r != 1 {
		t.Fatalf("HoverRatio = %v, want 1", r)
	}
	if m.Board().Hovered() != 0 {
		t.Errorf("Hovered = %d, want 0", m.Board().Hovered())
	}

	cols := m.Overlay().Columns
	if len(cols) != 3 {
		t.Fatalf("columns = %v, want one per chart in the first row", cols)
	}
	if cols[0] != 28 || cols[1] != 59 {
		t.Errorf("columns = %v, want [28 59 90]", cols)
	}

	view := m.View()
	if strings.Count(view, "10 Jan 2024 |") != 3 {
		t.Error("every chart should show the readout for the last day")
	}
}

func TestGrid_LeavingClearsHover(t *testing.T) {
	m, state := newGrid(t)

	m.Update(motion(5, plotRow))
	m.Update(motion(5, 0))

	if m.Board().Hovered() != -1 {
		t.Error("moving onto the toolbar should leave the chart")
	}
	deadline := time.Now().Add(time.Second)
	for state.HoverRatio() != nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if state.HoverRatio() != nil {
		t.Error("hover should clear after the debounce delay")
	}
}

func TestGrid_DragSelectsRange(t *testing.T) {
	m, state := newGrid(t)

	m.Update(tea.MouseMsg{X: 1, Y: plotRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(motion(1+13, plotRow))
	if !m.Board().Widgets()[0].Dragging() {
		t.Fatal("press should start a drag")
	}
	if !strings.Contains(m.View(), "release to apply") {
		t.Error("toolbar should show the selection in progress")
	}
	m.Update(tea.MouseMsg{X: 1 + 13, Y: plotRow, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	want := models.NewDateRange(day(1), day(5))
	if !state.DateRange().Equal(want) {
		t.Fatalf("DateRange = %v, want %v", state.DateRange(), want)
	}

	m.Update(nil)
	for i, w := range m.Board().Widgets() {
		if w.Len() != 5 {
			t.Errorf("chart %d shows %d points, want 5", i, w.Len())
		}
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	if got := state.DateRange(); !got.Equal(models.NewDateRange(day(1), day(10))) {
		t.Errorf("clear should restore the data extent, got %v", got)
	}
}

func TestGrid_TriggerOpensPicker(t *testing.T) {
	m, _ := newGrid(t)

	_, cmd := m.Update(tea.MouseMsg{X: 91, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if cmd == nil {
		t.Fatal("clicking the range trigger should produce a command")
	}
	if _, ok := cmd().(app.OpenPickerMsg); !ok {
		t.Error("expected OpenPickerMsg")
	}
}

func TestGrid_KeyboardCrosshair(t *testing.T) {
	m, state := newGrid(t)

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	r := state.HoverRatio()
	if r == nil || *r != 1 {
		t.Fatalf("first left should land on the last point, got %v", r)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	r = state.HoverRatio()
	if r == nil || *r != 8.0/9.0 {
		t.Errorf("HoverRatio = %v, want 8/9", r)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if m.Board().Focused() != 1 {
		t.Errorf("Focused = %d, want 1", m.Board().Focused())
	}
}

func TestGrid_ResponsiveToggle(t *testing.T) {
	m, state := newGrid(t)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'R'}})
	if state.LayoutMode() != models.LayoutVertical {
		t.Fatalf("LayoutMode = %v, want vertical", state.LayoutMode())
	}
	cards := m.cards()
	if cards[0].Width != 93 || cards[2].Y != 2*CardHeight {
		t.Errorf("cards = %+v", cards)
	}

	m.Update(motion(10, plotRow))
	if len(m.Overlay().Columns) != 1 {
		t.Errorf("a single column layout has one crosshair, got %v", m.Overlay().Columns)
	}
}

func TestGrid_InspectAndExport(t *testing.T) {
	m, _ := newGrid(t)

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Board().Inspecting() {
		t.Fatal("enter should open the inspector")
	}
	if !strings.Contains(m.View(), "enter/esc close") {
		t.Error("inspector hint missing")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Board().Inspecting() {
		t.Error("esc should close the inspector")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	if cmd == nil {
		t.Fatal("export should return a command")
	}
	res, ok := cmd().(app.ExportResultMsg)
	if !ok || !res.Success {
		t.Fatalf("export failed: %+v", res)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestGrid_View(t *testing.T) {
	m, state := newGrid(t)

	view := m.View()
	for _, want := range []string{"Synchronized Charts", "Users", "Sessions", "Revenue"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	state.SetCharts(nil, time.Time{}, time.Time{}, "")
	if !strings.Contains(m.View(), "No charts loaded") {
		t.Error("empty state missing")
	}
}

func TestGrid_Loading(t *testing.T) {
	state := app.NewState()
	m := New(state, nil, t.TempDir())
	m.SetSize(80, 20)
	if m.Init() == nil {
		t.Error("Init should start the spinner")
	}
	if !strings.Contains(m.View(), "Loading series") {
		t.Error("loading view missing")
	}
}
