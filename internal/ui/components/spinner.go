package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/syncgrid-tui/internal/ui/styles"
)

// LoadingSpinner is the placeholder a chart tab shows while the series or
// the saved frame layouts are still being read.
type LoadingSpinner struct {
	spinner spinner.Model
	label   string
}

// NewSpinner creates a spinner announcing label.
func NewSpinner(label string) LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)
	return LoadingSpinner{spinner: s, label: label}
}

// Init starts the animation.
func (l LoadingSpinner) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the animation on spinner ticks.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the spinner and its label on one line.
func (l LoadingSpinner) View() string {
	label := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(l.label)
	return l.spinner.View() + " " + label
}

// RenderLoading centers the spinner in a width x height pane. A non-empty
// detail, such as the data source being read, goes on a muted line below.
func RenderLoading(s LoadingSpinner, detail string, width, height int) string {
	content := s.View()
	if detail != "" {
		muted := lipgloss.NewStyle().Foreground(styles.TextMuted).Render(detail)
		content = lipgloss.JoinVertical(lipgloss.Center, content, muted)
	}
	return styles.CenterBoth(content, width, height)
}
