// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/syncgrid-tui/internal/chart"
	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/ui/styles"
)

// barBlocks are the eighth-height fills used by RenderBars, empty first.
var barBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Band is an inclusive range of data indices to highlight.
type Band struct {
	Lo, Hi int
}

// RenderBars draws values as a column chart filling width x height cells.
// Every column shows the value of the data index mapped to it by
// chart.IndexAt, so hit-testing a column gives back the index drawn there.
func RenderBars(values []float64, width, height int, color lipgloss.Color, band *Band) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if len(values) == 0 {
		return styles.CenterBoth(styles.HelpStyle.Render("No data in range"), width, height)
	}

	lo, hi := 0.0, 0.0
	for _, v := range values {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	levels := make([]int, width)
	selected := make([]bool, width)
	for col := range width {
		idx := chart.IndexAt(col, width, len(values))
		levels[col] = int((values[idx] - lo) / span * float64(height*8))
		if band != nil && idx >= band.Lo && idx <= band.Hi {
			selected[col] = true
		}
	}

	barStyle := lipgloss.NewStyle().Foreground(color)
	selStyle := barStyle.Inherit(styles.SelectionStyle)

	rows := make([]string, height)
	for r := range height {
		floor := (height - 1 - r) * 8

		var line, run strings.Builder
		runSelected := false
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runSelected {
				line.WriteString(selStyle.Render(run.String()))
			} else {
				line.WriteString(barStyle.Render(run.String()))
			}
			run.Reset()
		}

		for col := range width {
			if selected[col] != runSelected {
				flush()
				runSelected = selected[col]
			}
			fill := min(max(levels[col]-floor, 0), 8)
			run.WriteRune(barBlocks[fill])
		}
		flush()
		rows[r] = line.String()
	}

	return strings.Join(rows, "\n")
}

// BodyPlot is the plot rectangle inside a chart body of the given size.
func BodyPlot(width, height int) models.Rect {
	return models.Rect{X: 0, Y: 1, Width: width, Height: max(height-1, 0)}
}

// CardPlot is the plot rectangle inside a bordered chart card.
func CardPlot(width, height int) models.Rect {
	p := BodyPlot(width-2, height-2)
	p.X++
	p.Y++
	return p
}

// RenderChartBody draws the title row with the crosshair readout, then the
// bars. The drag selection, if any, is highlighted.
func RenderChartBody(w *chart.Widget, width, height int, ratio *float64) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	color := styles.ColorFor(w.Color)

	title := styles.ChartTitleStyle.Render(w.Title)
	if p, ok := w.Readout(ratio); ok {
		label := lipgloss.NewStyle().Foreground(color).Render(chart.FormatReadout(p))
		gap := width - lipgloss.Width(title) - lipgloss.Width(label)
		if gap >= 1 {
			title += strings.Repeat(" ", gap) + label
		}
	}
	title = ansi.Truncate(title, width, "…")

	var band *Band
	if lo, hi, ok := w.Selection(); ok {
		band = &Band{Lo: lo, Hi: hi}
	}

	plot := BodyPlot(width, height)
	if plot.Height == 0 {
		return title
	}
	bars := RenderBars(models.Values(w.Visible()), plot.Width, plot.Height, color, band)
	return lipgloss.JoinVertical(lipgloss.Left, title, bars)
}

// RenderChartCard draws a chart body inside a rounded border of the given
// outer size.
func RenderChartCard(w *chart.Widget, width, height int, ratio *float64, active bool) string {
	style := styles.ChartCardStyle
	if active {
		style = styles.ChartCardActiveStyle
	}
	return style.
		Width(width - 2).
		Height(height - 2).
		Render(RenderChartBody(w, width-2, height-2, ratio))
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)

	return graph
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sparkChars := barBlocks[1:]

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var result strings.Builder
	for col := 0; col < width && col < len(values); col++ {
		idx := chart.IndexAt(col, min(width, len(values)), len(values))
		normalized := int((values[idx] - lo) / span * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
