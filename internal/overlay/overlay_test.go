package overlay

import (
	"reflect"
	"testing"

	"github.com/j-veylop/syncgrid-tui/internal/models"
)

func ratio(v float64) *float64 { return &v }

// threeByTwo is a 3-column grid with a second row, offset from the origin.
func threeByTwo() (Box, []Box) {
	grid := Box{Left: 10, Top: 5, Width: 90, Height: 40}
	items := []Box{
		{Left: 10, Top: 5, Width: 30, Height: 20},
		{Left: 40, Top: 6, Width: 30, Height: 20},
		{Left: 70, Top: 5, Width: 30, Height: 20},
		{Left: 10, Top: 25, Width: 30, Height: 20},
		{Left: 40, Top: 25, Width: 30, Height: 20},
	}
	return grid, items
}

func TestGridLines_NilRatio(t *testing.T) {
	grid, items := threeByTwo()
	if got := GridLines(nil, grid, items); got != nil {
		t.Errorf("GridLines(nil) = %v, want nil", got)
	}
}

func TestGridLines_NoItems(t *testing.T) {
	if got := GridLines(ratio(0.5), Box{}, nil); got != nil {
		t.Errorf("GridLines without items = %v, want nil", got)
	}
}

func TestGridLines_OneLinePerFirstRowItem(t *testing.T) {
	grid, items := threeByTwo()

	got := GridLines(ratio(0.5), grid, items)
	want := []float64{15, 45, 75}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GridLines = %v, want %v", got, want)
	}
}

func TestGridLines_RowTolerance(t *testing.T) {
	grid := Box{}
	items := []Box{
		{Left: 0, Top: 0, Width: 10},
		{Left: 10, Top: 1.9, Width: 10},
		{Left: 20, Top: 2, Width: 10},
	}
	if got := GridLines(ratio(0), grid, items); len(got) != 2 {
		t.Errorf("got %d lines, want 2 (tolerance is exclusive)", len(got))
	}
}

func TestGridLines_ClampsRatio(t *testing.T) {
	grid := Box{Left: 0}
	items := []Box{{Left: 4, Width: 10}}

	if got := GridLines(ratio(-2), grid, items); got[0] != 4 {
		t.Errorf("negative ratio x = %v, want 4", got[0])
	}
	if got := GridLines(ratio(7), grid, items); got[0] != 14 {
		t.Errorf("large ratio x = %v, want 14", got[0])
	}
}

func TestGridLines_ZeroWidthUsesLeftEdge(t *testing.T) {
	got := GridLines(ratio(0.8), Box{Left: 2}, []Box{{Left: 12, Width: 0}})
	if len(got) != 1 || got[0] != 10 {
		t.Errorf("GridLines = %v, want [10]", got)
	}
}

func TestGridLines_SingleColumn(t *testing.T) {
	items := []Box{
		{Left: 0, Top: 0, Width: 80},
		{Left: 0, Top: 12, Width: 80},
		{Left: 0, Top: 24, Width: 80},
	}
	got := GridLines(ratio(0.25), Box{}, items)
	if !reflect.DeepEqual(got, []float64{20}) {
		t.Errorf("GridLines = %v, want [20]", got)
	}
}

func TestResized(t *testing.T) {
	def := Size{Width: 100, Height: 24}
	tests := []struct {
		name   string
		layout *models.ChartLayout
		want   bool
	}{
		{"NoLayout", nil, false},
		{"Default", &models.ChartLayout{Width: 100, Height: 24}, false},
		{"Wider", &models.ChartLayout{Width: 120, Height: 24}, true},
		{"Taller", &models.ChartLayout{Width: 100, Height: 30}, true},
		{"MovedOnly", &models.ChartLayout{X: 9, Y: 9, Width: 100, Height: 24}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resized(tt.layout, def); got != tt.want {
				t.Errorf("Resized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func freeFrames() []Frame {
	return []Frame{
		{Box: Box{Left: 2, Top: 1, Width: 40, Height: 12}, Content: Box{Left: 2, Top: 2, Width: 40, Height: 11}},
		{Box: Box{Left: 2, Top: 14, Width: 40, Height: 12}, Content: Box{Left: 2, Top: 15, Width: 40, Height: 11}},
		{Box: Box{Left: 50, Top: 30, Width: 20, Height: 10}, Content: Box{Left: 50, Top: 31, Width: 20, Height: 9}},
	}
}

func TestFreeLine_NilRatio(t *testing.T) {
	if _, ok := FreeLine(nil, Box{}, freeFrames(), nil, Size{Width: 40, Height: 12}); ok {
		t.Error("nil ratio should draw nothing")
	}
}

func TestFreeLine_SkipsResizedFrames(t *testing.T) {
	def := Size{Width: 40, Height: 12}
	layouts := []models.ChartLayout{
		{ID: "chart-0", X: 2, Y: 1, Width: 40, Height: 12},
		{ID: "chart-2", X: 50, Y: 30, Width: 20, Height: 10},
	}
	container := Box{Left: 1, Top: 1}

	line, ok := FreeLine(ratio(0.5), container, freeFrames(), layouts, def)
	if !ok {
		t.Fatal("expected a line")
	}

	// x from chart-0's content: 2 - 1 + 0.5*40.
	want := Line{X: 21, Top: 1, Bottom: 25}
	if line != want {
		t.Errorf("FreeLine = %+v, want %+v", line, want)
	}
	if line.Height() != 24 {
		t.Errorf("Height = %v, want 24", line.Height())
	}
}

func TestFreeLine_FirstParticipantSetsX(t *testing.T) {
	def := Size{Width: 40, Height: 12}
	layouts := []models.ChartLayout{{ID: "chart-0", Width: 10, Height: 5}}

	line, ok := FreeLine(ratio(1), Box{}, freeFrames(), layouts, def)
	if !ok {
		t.Fatal("expected a line")
	}
	if line.X != 42 {
		t.Errorf("X = %v, want 42 (from chart-1)", line.X)
	}
	if line.Top != 15 || line.Bottom != 40 {
		t.Errorf("span = %v..%v, want 15..40", line.Top, line.Bottom)
	}
}

func TestFreeLine_AllResized(t *testing.T) {
	layouts := []models.ChartLayout{
		{ID: "chart-0", Width: 1, Height: 1},
		{ID: "chart-1", Width: 1, Height: 1},
		{ID: "chart-2", Width: 1, Height: 1},
	}
	if _, ok := FreeLine(ratio(0.5), Box{}, freeFrames(), layouts, Size{Width: 40, Height: 12}); ok {
		t.Error("no participating frame should draw nothing")
	}
}

func TestFreeLine_ContentFallsBackToBox(t *testing.T) {
	frames := []Frame{{Box: Box{Left: 10, Top: 3, Width: 20, Height: 6}}}
	line, ok := FreeLine(ratio(0), Box{}, frames, nil, Size{})
	if !ok || line != (Line{X: 10, Top: 3, Bottom: 9}) {
		t.Errorf("FreeLine = %+v, %v", line, ok)
	}
}

func TestOverlay_Recompute(t *testing.T) {
	grid, items := threeByTwo()
	var o Overlay

	o.Recompute(ratio(0), Geometry{Mode: models.LayoutGrid, Bounds: grid, Items: items})
	if len(o.Columns) != 3 || o.HasLine {
		t.Errorf("grid recompute = %+v", o)
	}

	o.Recompute(nil, Geometry{Mode: models.LayoutGrid, Bounds: grid, Items: items})
	if !o.Empty() {
		t.Error("nil ratio should clear the overlay")
	}

	o.Recompute(ratio(0.5), Geometry{
		Mode:    models.LayoutFree,
		Frames:  freeFrames(),
		Default: Size{Width: 40, Height: 12},
	})
	if !o.HasLine || len(o.Columns) != 0 {
		t.Errorf("free recompute = %+v", o)
	}
}

func TestBoxFromRect(t *testing.T) {
	b := BoxFromRect(models.Rect{X: 1, Y: 2, Width: 3, Height: 4})
	if b.Right() != 4 || b.Bottom() != 6 {
		t.Errorf("BoxFromRect = %+v", b)
	}
}
