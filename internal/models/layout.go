package models

import "fmt"

// LayoutMode selects how the chart collection is arranged.
type LayoutMode int

const (
	// LayoutVertical stacks charts in a single column.
	LayoutVertical LayoutMode = iota
	// LayoutGrid arranges charts in a three column grid.
	LayoutGrid
	// LayoutFree places charts in draggable, resizable frames.
	LayoutFree
)

// String returns the display name for a layout mode.
func (m LayoutMode) String() string {
	switch m {
	case LayoutVertical:
		return "vertical"
	case LayoutGrid:
		return "grid"
	case LayoutFree:
		return "free"
	default:
		return "unknown"
	}
}

// Columns returns the number of grid columns for the mode.
func (m LayoutMode) Columns() int {
	if m == LayoutGrid {
		return 3
	}
	return 1
}

// Rect is a chart rectangle in cells.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Default persisted frame geometry.
const (
	DefaultLayoutWidth  = 320
	DefaultLayoutHeight = 240
)

// ChartLayout is the persisted rectangle of a chart on the free canvas.
type ChartLayout struct {
	ID     string `json:"id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// LayoutPatch is a partial update; nil fields are left untouched.
type LayoutPatch struct {
	X      *int
	Y      *int
	Width  *int
	Height *int
}

// Apply merges the patch into l and reports whether anything changed.
func (p LayoutPatch) Apply(l *ChartLayout) bool {
	changed := false
	set := func(dst *int, v *int) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = true
		}
	}
	set(&l.X, p.X)
	set(&l.Y, p.Y)
	set(&l.Width, p.Width)
	set(&l.Height, p.Height)
	return changed
}

// ChartID returns the persistence id for the chart at index.
func ChartID(index int) string {
	return fmt.Sprintf("chart-%d", index)
}
