package chart

import (
	"testing"
	"time"

	"github.com/j-veylop/syncgrid-tui/internal/events"
	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/series"
)

type hoverRecorder struct {
	calls  int
	latest *float64
}

func (h *hoverRecorder) SetHoverRatio(r *float64) {
	h.calls++
	h.latest = r
}

type publishRecorder struct {
	topics []events.Topic
	events []events.SetRangeEvent
}

func (p *publishRecorder) Publish(topic events.Topic, e events.SetRangeEvent) {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, e)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func januaryPoints(n int) []models.SeriesPoint {
	start := day(2024, time.January, 1)
	return series.GenerateDailySeries(start, start.AddDate(0, 0, n-1), series.DefaultOptions().WithSeed(3))
}

func newWidget(t *testing.T, n int) (*Widget, *hoverRecorder, *publishRecorder) {
	t.Helper()
	hover := &hoverRecorder{}
	pub := &publishRecorder{}
	w := New(0, models.ChartSpec{Title: "Sessions", Color: "#3b82f6"}, januaryPoints(n), hover, pub)
	return w, hover, pub
}

func TestWidget_ApplyFilters(t *testing.T) {
	w, _, _ := newWidget(t, 31)
	if w.Len() != 31 {
		t.Fatalf("Len = %d, want 31", w.Len())
	}

	w.Apply(models.NewDateRange(day(2024, time.January, 10), day(2024, time.January, 12)))
	if w.Len() != 3 {
		t.Errorf("Len = %d, want 3", w.Len())
	}

	w.Apply(models.DateRange{})
	if w.Len() != 31 {
		t.Errorf("incomplete range should show everything, got %d", w.Len())
	}
}

func TestWidget_PointerMoveBroadcastsRatio(t *testing.T) {
	w, hover, _ := newWidget(t, 5)

	tests := []struct {
		idx  int
		want float64
	}{
		{0, 0},
		{2, 0.5},
		{4, 1},
		{9, 1},
		{-3, 0},
	}
	for _, tt := range tests {
		w.PointerMove(tt.idx)
		if hover.latest == nil || *hover.latest != tt.want {
			t.Errorf("PointerMove(%d) ratio = %v, want %v", tt.idx, hover.latest, tt.want)
		}
	}
}

func TestWidget_SinglePointEmitsNoRatio(t *testing.T) {
	for _, n := range []int{0, 1} {
		hover := &hoverRecorder{}
		var points []models.SeriesPoint
		if n == 1 {
			points = januaryPoints(1)
		}
		w := New(0, models.ChartSpec{}, points, hover, nil)
		w.PointerMove(0)
		if hover.calls != 0 {
			t.Errorf("n=%d: SetHoverRatio called %d times", n, hover.calls)
		}
	}
}

func TestWidget_DragSelectionPublishes(t *testing.T) {
	w, _, pub := newWidget(t, 10)

	w.PointerDown(6)
	w.PointerMove(2)

	lo, hi, ok := w.Selection()
	if !ok || lo != 2 || hi != 6 {
		t.Errorf("Selection = %d..%d (%v), want 2..6", lo, hi, ok)
	}

	r, ok := w.PointerUp(2)
	if !ok {
		t.Fatal("PointerUp should publish")
	}
	if len(pub.topics) != 1 || pub.topics[0] != events.TopicChartSetRange {
		t.Fatalf("published %v", pub.topics)
	}
	want := models.NewDateRange(day(2024, time.January, 3), day(2024, time.January, 7))
	if !r.Equal(want) || !pub.events[0].Range.Equal(want) {
		t.Errorf("range = %v, want %v", r, want)
	}
	if w.Dragging() {
		t.Error("drag state should be cleared")
	}
	if _, _, ok := w.Selection(); ok {
		t.Error("selection band should be gone")
	}
}

func TestWidget_DragClampsIndices(t *testing.T) {
	w, _, pub := newWidget(t, 4)

	w.PointerDown(-5)
	w.PointerUp(40)

	want := models.NewDateRange(day(2024, time.January, 1), day(2024, time.January, 4))
	if len(pub.events) != 1 || !pub.events[0].Range.Equal(want) {
		t.Errorf("published %v, want %v", pub.events, want)
	}
}

func TestWidget_LeaveCancelsDrag(t *testing.T) {
	w, hover, pub := newWidget(t, 10)

	w.PointerDown(1)
	w.PointerMove(3)
	w.PointerLeave()

	if w.Dragging() {
		t.Error("leave should cancel the drag")
	}
	if hover.latest != nil {
		t.Error("leave should clear the hover ratio")
	}
	if _, ok := w.PointerUp(5); ok {
		t.Error("PointerUp after leave must not publish")
	}
	if len(pub.events) != 0 {
		t.Errorf("published %d events, want 0", len(pub.events))
	}
}

func TestWidget_Readout(t *testing.T) {
	w, _, _ := newWidget(t, 11)

	if _, ok := w.Readout(nil); ok {
		t.Error("nil ratio has no readout")
	}

	tests := []struct {
		ratio float64
		want  int
	}{
		{0, 0},
		{0.5, 5},
		{0.44, 4},
		{0.46, 5},
		{1, 10},
		{1.7, 10},
		{-1, 0},
	}
	for _, tt := range tests {
		r := tt.ratio
		idx, ok := w.ReadoutIndex(&r)
		if !ok || idx != tt.want {
			t.Errorf("ReadoutIndex(%v) = %d, want %d", tt.ratio, idx, tt.want)
		}
	}

	r := 1.0
	p, _ := w.Readout(&r)
	if p != w.Visible()[10] {
		t.Errorf("Readout = %+v", p)
	}
}

func TestWidget_SameRatioDifferentLengths(t *testing.T) {
	short, _, _ := newWidget(t, 5)
	long, _, _ := newWidget(t, 21)

	r := 0.5
	si, _ := short.ReadoutIndex(&r)
	li, _ := long.ReadoutIndex(&r)
	if si != 2 || li != 10 {
		t.Errorf("indices = %d, %d; want 2, 10", si, li)
	}
}

func TestIndexAt(t *testing.T) {
	tests := []struct {
		col, width, n int
		want          int
	}{
		{0, 10, 5, 0},
		{1, 10, 5, 0},
		{2, 10, 5, 1},
		{9, 10, 5, 4},
		{15, 10, 5, 4},
		{-1, 10, 5, 0},
		{3, 4, 100, 75},
		{0, 0, 5, 0},
		{3, 10, 0, 0},
	}
	for _, tt := range tests {
		if got := IndexAt(tt.col, tt.width, tt.n); got != tt.want {
			t.Errorf("IndexAt(%d, %d, %d) = %d, want %d", tt.col, tt.width, tt.n, got, tt.want)
		}
	}
}

func TestFormatReadout(t *testing.T) {
	got := FormatReadout(models.SeriesPoint{Date: "2024-01-05", Value: 212})
	if got != "05 Jan 2024 | 212" {
		t.Errorf("FormatReadout = %q", got)
	}
}
