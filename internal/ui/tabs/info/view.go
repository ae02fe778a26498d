package info

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/ui/components"
	"github.com/j-veylop/syncgrid-tui/internal/ui/styles"
	"github.com/j-veylop/syncgrid-tui/internal/version"
)

const sparklineWidth = 24

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderDataCard(),
		m.renderChartsCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, data set and build information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) card(title string, rows ...string) string {
	body := append([]string{styles.CardTitleStyle.Render(title), ""}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, body...),
	)
}

// renderConfigCard renders the resolved configuration.
func (m *Model) renderConfigCard() string {
	if m.config == nil {
		return m.card("Configuration", styles.HelpStyle.Render("Configuration not loaded"))
	}

	c := m.config
	dashboard := c.DashboardPath
	if dashboard == "" {
		dashboard = "built-in"
	}
	data := c.DataPath
	if data == "" {
		data = "generated"
	}

	return m.card("Configuration",
		renderRow("Database", c.DatabasePath),
		renderRow("Log File", c.LogPath),
		renderRow("Data File", data),
		renderRow("Dashboard", dashboard),
		renderRow("Export Dir", c.ExportDir),
		renderRow("Hover Clear", c.HoverClearDelay.String()),
		renderRow("Densify", fmt.Sprintf("x%d", max(c.DensifyFactor, 1))),
		renderRow("Responsive", strconv.FormatBool(c.Responsive)),
	)
}

// renderDataCard summarizes the loaded series and the shared view state.
func (m *Model) renderDataCard() string {
	start, end := m.state.DataExtent()
	extent := "none"
	if !start.IsZero() {
		extent = models.NewDateRange(start, end).String()
	}

	hover := "none"
	if r := m.state.HoverRatio(); r != nil {
		hover = fmt.Sprintf("%.0f%%", *r*100)
	}

	layouts := "loading"
	if m.layouts == nil {
		layouts = "unavailable"
	} else if m.layouts.Loaded() {
		layouts = strconv.Itoa(len(m.layouts.Layouts()))
	}

	return m.card("Data",
		renderRow("Source", orDash(m.state.DataSource())),
		renderRow("Extent", extent),
		renderRow("Range", m.state.DateRange().String()),
		renderRow("Layout Mode", m.state.LayoutMode().String()),
		renderRow("Hover", hover),
		renderRow("Saved Layouts", layouts),
		"",
		fmt.Sprintf("Charts: %s", styles.InfoTextStyle.Render(strconv.Itoa(m.state.ChartCount()))),
	)
}

// renderChartsCard lists every chart with a sparkline of its full series.
func (m *Model) renderChartsCard() string {
	charts := m.state.Charts()
	if len(charts) == 0 {
		return m.card("Charts", styles.HelpStyle.Render("No charts loaded"))
	}

	items := make([]components.LegendItem, len(charts))
	rows := make([]string, 0, len(charts)+2)
	for i, c := range charts {
		color := lipgloss.Color(c.Spec.Color)
		items[i] = components.LegendItem{Label: c.Spec.Title, Color: color}

		spark := lipgloss.NewStyle().Foreground(color).
			Render(components.RenderSparkline(models.Values(c.Points), sparklineWidth))
		rows = append(rows, fmt.Sprintf("%s %s %s",
			labelStyle.Render(truncate(c.Spec.Title, labelWidth-1)),
			spark,
			styles.HelpStyle.Render(fmt.Sprintf("%d pts", len(c.Points)))))
	}

	legend := components.RenderLegend(items)
	return m.card("Charts", append([]string{legend, ""}, rows...)...)
}

// renderAboutCard renders the build information card.
func (m *Model) renderAboutCard() string {
	return m.card("About SyncGrid TUI",
		renderRow("Version", version.GetVersion()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	)
}

const labelWidth = 16

var (
	labelStyle = lipgloss.NewStyle().Width(labelWidth).Foreground(styles.TextMuted)
	valueStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
)

func renderRow(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:max(n-1, 0)]) + "…"
}
