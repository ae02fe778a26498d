// Package export renders a chart's visible series to a PNG image.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/series"
)

// Default image size in pixels.
const (
	DefaultWidth  = 1024
	DefaultHeight = 400
)

// ErrNoData is returned when the range leaves nothing to plot.
var ErrNoData = errors.New("no data points in range")

// Options controls the rendered image.
type Options struct {
	Width  int
	Height int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Render draws data filtered to r as a PNG into w.
func Render(w io.Writer, data models.ChartData, r models.DateRange, opts Options) error {
	opts = opts.withDefaults()

	points := series.Filter(data.Points, r)
	xs := make([]time.Time, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		t, err := p.Time()
		if err != nil {
			continue
		}
		xs = append(xs, t)
		ys = append(ys, p.Value)
	}
	if len(xs) == 0 {
		return ErrNoData
	}
	// A single timestamp gives the axis a zero range.
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}

	color := seriesColor(data.Spec.Color)
	ch := chart.Chart{
		Title:      title(data.Spec.Title, r),
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 02"),
		},
		YAxis: chart.YAxis{
			Name: "value",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    data.Spec.Title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: color,
					StrokeWidth: 2,
					FillColor:   color.WithAlpha(48),
				},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("failed to render %q: %w", data.Spec.Title, err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile renders into dir using FileName and returns the written path.
func WriteFile(dir string, data models.ChartData, r models.DateRange, opts Options) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, FileName(data.Spec.Title, r))
	var buf bytes.Buffer
	if err := Render(&buf, data, r, opts); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// FileName builds "<slug>_<from>_<to>.png", or "<slug>_all.png" without a
// complete range.
func FileName(chartTitle string, r models.DateRange) string {
	slug := slugify(chartTitle)
	if slug == "" {
		slug = "chart"
	}
	if !r.Complete() {
		return slug + "_all.png"
	}
	n := r.Normalized()
	return fmt.Sprintf("%s_%s_%s.png", slug, n.From.Format(models.DateLayout), n.To.Format(models.DateLayout))
}

func title(name string, r models.DateRange) string {
	if !r.Complete() {
		return name
	}
	return name + " (" + r.Normalized().String() + ")"
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, c := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteRune(c)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func seriesColor(hex string) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 && len(hex) != 3 {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(hex)
}
