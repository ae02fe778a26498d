package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/series"
)

// Dashboard describes the charts shown and the period their series cover.
type Dashboard struct {
	Start  time.Time
	End    time.Time
	Charts []models.ChartSpec
}

type dashboardFile struct {
	Start  string      `yaml:"start"`
	End    string      `yaml:"end"`
	Charts []chartFile `yaml:"charts"`
}

// Numeric chart fields are pointers so an explicit zero survives decoding.
type chartFile struct {
	Title  string   `yaml:"title"`
	Color  string   `yaml:"color"`
	Seed   *uint32  `yaml:"seed"`
	Base   *float64 `yaml:"base"`
	Spread *float64 `yaml:"spread"`
}

// Palette colors for the default rows.
const (
	ColorBlue  = "#0072db"
	ColorGreen = "#34d399"
	ColorRed   = "#f87171"
)

var defaultCharts = []models.ChartSpec{
	{Title: "Sessions", Color: ColorBlue, Seed: 1, Base: 220, Spread: 80},
	{Title: "Signups", Color: ColorBlue, Seed: 2, Base: 200, Spread: 70},
	{Title: "Page Views", Color: ColorBlue, Seed: 3, Base: 210, Spread: 75},
	{Title: "Orders", Color: ColorGreen, Seed: 4, Base: 230, Spread: 60},
	{Title: "Revenue", Color: ColorGreen, Seed: 5, Base: 215, Spread: 65},
	{Title: "Conversions", Color: ColorGreen, Seed: 6, Base: 225, Spread: 85},
	{Title: "Errors", Color: ColorRed, Seed: 7, Base: 190, Spread: 70},
	{Title: "Latency", Color: ColorRed, Seed: 8, Base: 200, Spread: 80},
	{Title: "Refunds", Color: ColorRed, Seed: 9, Base: 205, Spread: 75},
}

// DefaultDashboard returns the nine chart dashboard over Jan 1 to Sep 1 2024.
func DefaultDashboard() *Dashboard {
	charts := make([]models.ChartSpec, len(defaultCharts))
	copy(charts, defaultCharts)
	return &Dashboard{
		Start:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local),
		End:    time.Date(2024, 9, 1, 0, 0, 0, 0, time.Local),
		Charts: charts,
	}
}

// LoadDashboard reads a YAML dashboard definition.
func LoadDashboard(path string) (*Dashboard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dashboard file: %w", err)
	}
	return ParseDashboard(data)
}

// ParseDashboard decodes a YAML dashboard definition. Missing dates fall back
// to the default period and charts without a color use the default palette.
// A chart without a seed gets its 1-based position; a missing base or spread
// takes the generator default.
func ParseDashboard(data []byte) (*Dashboard, error) {
	var f dashboardFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse dashboard: %w", err)
	}

	d := DefaultDashboard()
	if f.Start != "" {
		t, err := models.ParseDate(f.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid dashboard start %q: %w", f.Start, err)
		}
		d.Start = t
	}
	if f.End != "" {
		t, err := models.ParseDate(f.End)
		if err != nil {
			return nil, fmt.Errorf("invalid dashboard end %q: %w", f.End, err)
		}
		d.End = t
	}
	if d.End.Before(d.Start) {
		return nil, fmt.Errorf("dashboard end %s is before start %s",
			d.End.Format(models.DateLayout), d.Start.Format(models.DateLayout))
	}

	if len(f.Charts) == 0 {
		return d, nil
	}

	palette := []string{ColorBlue, ColorGreen, ColorRed}
	d.Charts = make([]models.ChartSpec, len(f.Charts))
	for i, c := range f.Charts {
		spec := models.ChartSpec{
			Title:  c.Title,
			Color:  c.Color,
			Seed:   uint32(i + 1),
			Base:   series.DefaultBase,
			Spread: series.DefaultSpread,
		}
		if c.Seed != nil {
			spec.Seed = *c.Seed
		}
		if c.Base != nil {
			spec.Base = *c.Base
		}
		if c.Spread != nil {
			spec.Spread = *c.Spread
		}
		if spec.Title == "" {
			spec.Title = fmt.Sprintf("Chart %d", i+1)
		}
		if spec.Color == "" {
			spec.Color = palette[(i/3)%len(palette)]
		}
		d.Charts[i] = spec
	}
	return d, nil
}

// MarshalDashboard renders a dashboard back to YAML.
func MarshalDashboard(d *Dashboard) ([]byte, error) {
	f := dashboardFile{
		Start: d.Start.Format(models.DateLayout),
		End:   d.End.Format(models.DateLayout),
	}
	for _, c := range d.Charts {
		f.Charts = append(f.Charts, chartFile{
			Title:  c.Title,
			Color:  c.Color,
			Seed:   &c.Seed,
			Base:   &c.Base,
			Spread: &c.Spread,
		})
	}
	return yaml.Marshal(f)
}
