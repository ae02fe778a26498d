// Package series produces deterministic daily time series for the dashboard
// and densifies them for smoother bar rendering.
package series

import (
	"math"
	"time"

	"github.com/j-veylop/syncgrid-tui/internal/models"
)

// Default generator parameters.
const (
	DefaultSeed          uint32  = 1
	DefaultBase          float64 = 200
	DefaultSpread        float64 = 60
	DefaultDensifyFactor         = 5
)

const weekMillis = 1000 * 60 * 60 * 24 * 7

// instantLayout renders densified timestamps as UTC instants with milliseconds.
const instantLayout = "2006-01-02T15:04:05.000Z07:00"

// Options tunes GenerateDailySeries. Every field is used as given, so a zero
// seed, base or spread is honored; start from DefaultOptions for the stock
// parameters.
type Options struct {
	Seed   uint32
	Base   float64
	Spread float64
}

// DefaultOptions returns seed 1, base 200 and spread 60.
func DefaultOptions() Options {
	return Options{Seed: DefaultSeed, Base: DefaultBase, Spread: DefaultSpread}
}

// WithSeed returns a copy of o using seed.
func (o Options) WithSeed(seed uint32) Options {
	o.Seed = seed
	return o
}

// Mulberry32 returns a seeded generator of floats in [0,1).
func Mulberry32(seed uint32) func() float64 {
	a := seed
	return func() float64 {
		a += 0x6d2b79f5
		t := a
		t = (t ^ (t >> 15)) * (t | 1)
		t ^= t + (t^(t>>7))*(t|61)
		return float64(t^(t>>14)) / 4294967296
	}
}

// GenerateDailySeries yields one point per local calendar day in [start, end].
// Identical inputs always produce identical output.
func GenerateDailySeries(start, end time.Time, opts Options) []models.SeriesPoint {
	rand := Mulberry32(opts.Seed)

	last := models.StartOfDay(end)
	var out []models.SeriesPoint
	for cur := models.StartOfDay(start); !cur.After(last); cur = cur.AddDate(0, 0, 1) {
		noise := (rand() - 0.5) * 2
		wave := math.Sin(float64(cur.UnixMilli()) / weekMillis)
		value := math.Max(0, math.Round(opts.Base+wave*opts.Spread*0.8+noise*opts.Spread))
		out = append(out, models.SeriesPoint{Date: cur.Format(models.DateLayout), Value: value})
	}
	return out
}

// DensifySeries inserts factor-1 evenly spaced points between every pair of
// consecutive points. Original points are kept as they are; inserted points
// carry full instants and rounded values. Inputs with fewer than two points,
// unparseable dates, or factor <= 1 are returned unchanged.
func DensifySeries(points []models.SeriesPoint, factor int) []models.SeriesPoint {
	if len(points) <= 1 || factor <= 1 {
		return points
	}

	times := make([]time.Time, len(points))
	for i, p := range points {
		t, err := p.Time()
		if err != nil {
			return points
		}
		times[i] = t
	}

	out := make([]models.SeriesPoint, 0, 1+(len(points)-1)*factor)
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		delta := times[i+1].Sub(times[i])

		out = append(out, a)
		for k := 1; k < factor; k++ {
			at := times[i].Add(delta * time.Duration(k) / time.Duration(factor))
			v := a.Value + (b.Value-a.Value)*float64(k)/float64(factor)
			out = append(out, models.SeriesPoint{
				Date:  at.UTC().Format(instantLayout),
				Value: math.Round(v),
			})
		}
	}
	return append(out, points[len(points)-1])
}

// Build generates and densifies the series for one chart.
func Build(spec models.ChartSpec, start, end time.Time, factor int) []models.SeriesPoint {
	raw := GenerateDailySeries(start, end, Options{Seed: spec.Seed, Base: spec.Base, Spread: spec.Spread})
	return DensifySeries(raw, factor)
}
