// Package chart holds the pointer logic of a single dashboard chart: range
// filtering, hover broadcast, drag selection and the crosshair readout.
package chart

import (
	"math"
	"strconv"

	"github.com/j-veylop/syncgrid-tui/internal/events"
	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/series"
)

// HoverSink receives the shared hover ratio.
type HoverSink interface {
	SetHoverRatio(r *float64)
}

// Publisher broadcasts committed drag selections.
type Publisher interface {
	Publish(topic events.Topic, e events.SetRangeEvent)
}

// Widget is one chart. Its series is immutable; the visible slice follows
// the shared date range.
type Widget struct {
	ID     int
	Title  string
	Color  string
	Height int

	points  []models.SeriesPoint
	visible []models.SeriesPoint
	applied models.DateRange

	hover HoverSink
	pub   Publisher

	dragStart   *int
	dragCurrent *int
}

// New creates a widget over points with the full series visible.
func New(id int, spec models.ChartSpec, points []models.SeriesPoint, hover HoverSink, pub Publisher) *Widget {
	return &Widget{
		ID:      id,
		Title:   spec.Title,
		Color:   spec.Color,
		points:  points,
		visible: points,
		hover:   hover,
		pub:     pub,
	}
}

// Apply filters the series to r. Calling it again with the same range is
// free.
func (w *Widget) Apply(r models.DateRange) {
	if r.Equal(w.applied) && w.visible != nil {
		return
	}
	w.applied = r
	w.visible = series.Filter(w.points, r)
}

// Points returns the full series.
func (w *Widget) Points() []models.SeriesPoint {
	return w.points
}

// Visible returns the filtered series.
func (w *Widget) Visible() []models.SeriesPoint {
	return w.visible
}

// Len is the number of visible points.
func (w *Widget) Len() int {
	return len(w.visible)
}

// Dragging reports whether a selection drag is in progress.
func (w *Widget) Dragging() bool {
	return w.dragStart != nil
}

// PointerMove handles the pointer over the data element at idx. With more
// than one visible point it broadcasts idx/(N-1) as the hover ratio.
func (w *Widget) PointerMove(idx int) {
	if w.dragStart != nil {
		cur := idx
		w.dragCurrent = &cur
	}

	n := len(w.visible)
	if n <= 1 || w.hover == nil {
		return
	}
	ratio := float64(w.clamp(idx)) / float64(n-1)
	w.hover.SetHoverRatio(&ratio)
}

// PointerLeave clears the hover ratio and abandons any drag without
// emitting a selection.
func (w *Widget) PointerLeave() {
	if w.hover != nil {
		w.hover.SetHoverRatio(nil)
	}
	w.CancelDrag()
}

// PointerDown anchors a drag selection at idx.
func (w *Widget) PointerDown(idx int) {
	if len(w.visible) == 0 {
		return
	}
	start, cur := idx, idx
	w.dragStart = &start
	w.dragCurrent = &cur
}

// PointerUp finishes a drag at idx and publishes the selected dates
// unnormalized on the chart topic. It returns the published range.
func (w *Widget) PointerUp(idx int) (models.DateRange, bool) {
	if w.dragStart == nil {
		return models.DateRange{}, false
	}
	start := *w.dragStart
	w.CancelDrag()

	if len(w.visible) == 0 {
		return models.DateRange{}, false
	}

	lo, hi := w.clamp(start), w.clamp(idx)
	if lo > hi {
		lo, hi = hi, lo
	}

	from, err := w.visible[lo].Time()
	if err != nil {
		return models.DateRange{}, false
	}
	to, err := w.visible[hi].Time()
	if err != nil {
		return models.DateRange{}, false
	}

	r := models.NewDateRange(from, to)
	if w.pub != nil {
		w.pub.Publish(events.TopicChartSetRange, events.SetRangeEvent{Range: r})
	}
	return r, true
}

// CancelDrag drops the provisional selection.
func (w *Widget) CancelDrag() {
	w.dragStart = nil
	w.dragCurrent = nil
}

// Selection returns the provisional band between the drag anchor and the
// current pointer, both inclusive.
func (w *Widget) Selection() (int, int, bool) {
	if w.dragStart == nil || w.dragCurrent == nil {
		return 0, 0, false
	}
	lo, hi := *w.dragStart, *w.dragCurrent
	if lo > hi {
		lo, hi = hi, lo
	}
	return w.clamp(lo), w.clamp(hi), true
}

// ReadoutIndex resolves the visible point nearest to ratio.
func (w *Widget) ReadoutIndex(ratio *float64) (int, bool) {
	n := len(w.visible)
	if ratio == nil || n == 0 {
		return 0, false
	}
	idx := int(math.Round(*ratio * float64(n-1)))
	return w.clamp(idx), true
}

// Readout returns the point under the shared crosshair.
func (w *Widget) Readout(ratio *float64) (models.SeriesPoint, bool) {
	idx, ok := w.ReadoutIndex(ratio)
	if !ok {
		return models.SeriesPoint{}, false
	}
	return w.visible[idx], true
}

// IndexAt maps a column of a plot area width cells wide to the data index
// drawn there. Bars are spread evenly across the width.
func (w *Widget) IndexAt(col, width int) int {
	return IndexAt(col, width, len(w.visible))
}

// IndexAt is the column-to-index mapping for n points over width cells.
func IndexAt(col, width, n int) int {
	if n <= 0 || width <= 0 {
		return 0
	}
	if col < 0 {
		col = 0
	}
	if col >= width {
		col = width - 1
	}
	return col * n / width
}

// FormatReadout renders a point the way the crosshair label shows it.
func FormatReadout(p models.SeriesPoint) string {
	t, err := p.Time()
	if err != nil {
		return p.Date
	}
	return t.Format("02 Jan 2006") + " | " + strconv.FormatFloat(p.Value, 'f', -1, 64)
}

func (w *Widget) clamp(idx int) int {
	n := len(w.visible)
	switch {
	case n == 0:
		return 0
	case idx < 0:
		return 0
	case idx > n-1:
		return n - 1
	default:
		return idx
	}
}
