package series

import (
	"time"

	"github.com/j-veylop/syncgrid-tui/internal/models"
)

// Filter keeps the points whose timestamp falls within the range, with From
// widened to the start of its day and To to the end of its day. An incomplete
// range keeps everything. Points with unparseable dates are dropped.
func Filter(points []models.SeriesPoint, r models.DateRange) []models.SeriesPoint {
	if !r.Complete() {
		return points
	}

	from := models.StartOfDay(*r.From)
	to := models.EndOfDay(*r.To)

	out := make([]models.SeriesPoint, 0, len(points))
	for _, p := range points {
		t, err := p.Time()
		if err != nil {
			continue
		}
		if !t.Before(from) && !t.After(to) {
			out = append(out, p)
		}
	}
	return out
}

// Extent returns the first and last timestamps of the series.
func Extent(points []models.SeriesPoint) (time.Time, time.Time, bool) {
	if len(points) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, err := points[0].Time()
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	last, err := points[len(points)-1].Time()
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return first, last, true
}
