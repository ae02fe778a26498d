package models

import (
	"strings"
	"time"
)

// SeriesPoint is a single observation. Date is either a calendar date
// (YYYY-MM-DD) or a full RFC3339 instant for densified points.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Time parses the point's date. Calendar dates resolve to local midnight.
func (p SeriesPoint) Time() (time.Time, error) {
	if len(p.Date) == len(DateLayout) && !strings.Contains(p.Date, "T") {
		return ParseDate(p.Date)
	}
	t, err := time.Parse(time.RFC3339Nano, p.Date)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(time.Local), nil
}

// ChartSpec describes one chart on the dashboard and the series it plots.
type ChartSpec struct {
	Title  string
	Color  string
	Seed   uint32
	Base   float64
	Spread float64
}

// ChartData is a chart definition together with its resolved points.
type ChartData struct {
	Spec   ChartSpec
	Points []SeriesPoint
}

// Values extracts the value column.
func Values(points []SeriesPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
