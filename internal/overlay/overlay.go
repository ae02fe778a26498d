// Package overlay computes where the shared crosshair is drawn over a set of
// chart rectangles. Every function is pure; callers pass in the geometry they
// measured and repaint from the result.
package overlay

import (
	"math"

	"github.com/j-veylop/syncgrid-tui/internal/models"
)

// RowTolerance is how far apart two tops may be while still counting as the
// same grid row.
const RowTolerance = 2.0

// Box is a rectangle in screen units.
type Box struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Right edge.
func (b Box) Right() float64 { return b.Left + b.Width }

// Bottom edge.
func (b Box) Bottom() float64 { return b.Top + b.Height }

// BoxFromRect converts an integer cell rectangle.
func BoxFromRect(r models.Rect) Box {
	return Box{Left: float64(r.X), Top: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// Frame is a free-canvas chart container. Content is the plotting region
// below the drag header; a zero Content falls back to Box.
type Frame struct {
	Box     Box
	Content Box
}

func (f Frame) contentBox() Box {
	if f.Content == (Box{}) {
		return f.Box
	}
	return f.Content
}

// Line is a vertical crosshair segment.
type Line struct {
	X      float64
	Top    float64
	Bottom float64
}

// Height of the segment.
func (l Line) Height() float64 { return l.Bottom - l.Top }

// Size is a width and height pair.
type Size struct {
	Width  float64
	Height float64
}

func clampRatio(r float64) float64 {
	if math.IsNaN(r) {
		return 0
	}
	return math.Max(0, math.Min(1, r))
}

// GridLines returns one x offset per chart in the first row of the grid,
// relative to the grid's left edge. The first row is every item whose top is
// within RowTolerance of the smallest top. A nil ratio or no items gives nil.
func GridLines(ratio *float64, grid Box, items []Box) []float64 {
	if ratio == nil || len(items) == 0 {
		return nil
	}

	minTop := math.Inf(1)
	for _, it := range items {
		minTop = math.Min(minTop, it.Top)
	}

	r := clampRatio(*ratio)
	var xs []float64
	for _, it := range items {
		if math.Abs(it.Top-minTop) >= RowTolerance {
			continue
		}
		within := 0.0
		if it.Width > 0 {
			within = r * it.Width
		}
		xs = append(xs, it.Left-grid.Left+within)
	}
	return xs
}

// Resized reports whether a persisted layout makes a frame count as resized:
// it exists and its size differs from the default.
func Resized(layout *models.ChartLayout, def Size) bool {
	if layout == nil {
		return false
	}
	return float64(layout.Width) != def.Width || float64(layout.Height) != def.Height
}

// FreeLine computes the single crosshair spanning every frame still at its
// default size. The x offset comes from the first such frame's content box;
// the vertical span is the union of their content boxes. Frames are matched
// to layouts by their position, as chart-{index}. It reports false when the
// ratio is nil or no frame qualifies.
func FreeLine(ratio *float64, container Box, frames []Frame, layouts []models.ChartLayout, def Size) (Line, bool) {
	if ratio == nil || len(frames) == 0 {
		return Line{}, false
	}

	byID := make(map[string]*models.ChartLayout, len(layouts))
	for i := range layouts {
		byID[layouts[i].ID] = &layouts[i]
	}

	r := clampRatio(*ratio)
	top, bottom := math.Inf(1), math.Inf(-1)
	var x float64
	found := false

	for i, f := range frames {
		if Resized(byID[models.ChartID(i)], def) {
			continue
		}

		c := f.contentBox()
		if !found {
			x = c.Left - container.Left + r*c.Width
			found = true
		}
		t := c.Top - container.Top
		top = math.Min(top, t)
		bottom = math.Max(bottom, t+c.Height)
	}

	if !found {
		return Line{}, false
	}
	return Line{X: x, Top: top, Bottom: bottom}, true
}

// Geometry is the measured layout handed to Recompute.
type Geometry struct {
	Mode    models.LayoutMode
	Bounds  Box
	Items   []Box
	Frames  []Frame
	Layouts []models.ChartLayout
	Default Size
}

// Overlay caches the last computed crosshair so the view can repaint it
// without re-measuring.
type Overlay struct {
	Columns []float64
	Line    Line
	HasLine bool
}

// Recompute derives the crosshair for g. It is idempotent; callers invoke it
// on hover changes, window resizes, scrolling and frame moves.
func (o *Overlay) Recompute(ratio *float64, g Geometry) {
	o.Columns = nil
	o.Line = Line{}
	o.HasLine = false

	if g.Mode == models.LayoutFree {
		o.Line, o.HasLine = FreeLine(ratio, g.Bounds, g.Frames, g.Layouts, g.Default)
		return
	}
	o.Columns = GridLines(ratio, g.Bounds, g.Items)
}

// Empty reports whether nothing should be drawn.
func (o *Overlay) Empty() bool {
	return len(o.Columns) == 0 && !o.HasLine
}
