package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// PlaceAt draws fg over bg with its top-left corner at (x, y). Lines of bg
// shorter than x are padded; bg never grows taller.
func PlaceAt(bg, fg string, x, y int) string {
	if x < 0 {
		x = 0
	}
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")
	fgWidth := lipgloss.Width(fg)

	for i, fgLine := range fgLines {
		row := y + i
		if row < 0 {
			continue
		}
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], fgLine, x, fgWidth)
	}

	return strings.Join(bgLines, "\n")
}

// PaintColumn draws a vertical line at column x from row top to bottom,
// both inclusive.
func PaintColumn(bg string, x, top, bottom int, style lipgloss.Style) string {
	if x < 0 {
		return bg
	}
	lines := strings.Split(bg, "\n")
	cell := style.Render("│")
	for row := max(top, 0); row <= bottom && row < len(lines); row++ {
		lines[row] = splice(lines[row], cell, x, 1)
	}
	return strings.Join(lines, "\n")
}

// splice replaces width cells of line starting at x with s.
func splice(line, s string, x, width int) string {
	left := ansi.Truncate(line, x, "")
	if w := lipgloss.Width(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	right := ansi.TruncateLeft(line, x+width, "")
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return left + s + right
}

// Canvas returns a blank block of width x height cells.
func Canvas(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	row := strings.Repeat(" ", width)
	rows := make([]string, height)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}
