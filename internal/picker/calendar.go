package picker

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/ui/styles"
)

// Calendar geometry, in cells.
const (
	monthsShown = 2
	cellWidth   = 2
	monthWidth  = 7*(cellWidth+1) - 1
	monthGap    = 3
	weekRows    = 6

	// Rows inside the popover border: title, blank, month name, weekdays.
	headerRows = 4
	borderLeft = 2
	borderTop  = 1
)

// BlockedCloseMsg is sent when a dismissal was refused because only the
// start date has been picked.
type BlockedCloseMsg struct{}

// ClosedMsg is sent when the popover closes. Committed is true when the
// close followed a complete selection.
type ClosedMsg struct {
	Committed bool
}

type keyMap struct {
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	Pick      key.Binding
	Dismiss   key.Binding
	Cancel    key.Binding
	Preset    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev week"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next week"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev month"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next month"),
		),
		Pick: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "pick"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel"),
		),
		Preset: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "preset"),
		),
	}
}

// Calendar is the two-month popover view driving a Picker.
type Calendar struct {
	picker *Picker
	keys   keyMap
	month  time.Time
	cursor time.Time
	now    func() time.Time

	extent func() (time.Time, time.Time)
	preset models.RangePreset

	originX int
	originY int
}

// NewCalendar wraps p in a calendar view.
func NewCalendar(p *Picker) *Calendar {
	return &Calendar{
		picker: p,
		keys:   defaultKeyMap(),
		now:    time.Now,
	}
}

// Picker returns the underlying state machine.
func (c *Calendar) Picker() *Picker {
	return c.picker
}

// IsOpen reports whether the popover is visible.
func (c *Calendar) IsOpen() bool {
	return c.picker.IsOpen()
}

// Open shows the popover with the cursor on the start of the displayed range,
// or today when nothing is selected.
func (c *Calendar) Open() {
	c.picker.Open()
	c.cursor = models.StartOfDay(c.now())
	if sel := c.picker.Selected(); sel.From != nil {
		c.cursor = models.StartOfDay(*sel.From)
	}
	c.month = firstOfMonth(c.cursor)
}

// Cursor returns the highlighted day.
func (c *Calendar) Cursor() time.Time {
	return c.cursor
}

// Month returns the first day of the left-hand month.
func (c *Calendar) Month() time.Time {
	return c.month
}

// SetExtent supplies the data bounds that range presets resolve against.
// Presets are disabled until it is set.
func (c *Calendar) SetExtent(extent func() (time.Time, time.Time)) {
	c.extent = extent
}

// NextPreset returns the preset the next p press applies.
func (c *Calendar) NextPreset() models.RangePreset {
	return c.preset
}

// SetOrigin records where the host drew the popover, for mouse hit tests.
func (c *Calendar) SetOrigin(x, y int) {
	c.originX = x
	c.originY = y
}

// Size returns the rendered popover size.
func (c *Calendar) Size() (int, int) {
	v := c.View()
	return lipgloss.Width(v), lipgloss.Height(v)
}

// Update handles keys and mouse presses while the popover is open.
func (c *Calendar) Update(msg tea.Msg) tea.Cmd {
	if !c.picker.IsOpen() {
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return c.handleKey(msg)
	case tea.MouseMsg:
		return c.handleMouse(msg)
	}
	return nil
}

func (c *Calendar) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, c.keys.Left):
		c.moveCursor(c.cursor.AddDate(0, 0, -1))
	case key.Matches(msg, c.keys.Right):
		c.moveCursor(c.cursor.AddDate(0, 0, 1))
	case key.Matches(msg, c.keys.Up):
		c.moveCursor(c.cursor.AddDate(0, 0, -7))
	case key.Matches(msg, c.keys.Down):
		c.moveCursor(c.cursor.AddDate(0, 0, 7))
	case key.Matches(msg, c.keys.PrevMonth):
		c.shiftMonth(-1)
	case key.Matches(msg, c.keys.NextMonth):
		c.shiftMonth(1)
	case key.Matches(msg, c.keys.Pick):
		return c.pick(c.cursor)
	case key.Matches(msg, c.keys.Dismiss):
		return c.requestClose()
	case key.Matches(msg, c.keys.Cancel):
		c.picker.Close()
		return closedCmd(false)
	case key.Matches(msg, c.keys.Preset):
		return c.applyPreset()
	}
	return nil
}

// applyPreset commits the next quick range and advances the cycle.
func (c *Calendar) applyPreset() tea.Cmd {
	if c.extent == nil {
		return nil
	}
	start, end := c.extent()
	if start.IsZero() || end.IsZero() {
		return nil
	}

	r := c.preset.Within(start, end)
	c.preset = c.preset.Next()
	c.picker.HandleSelect(&r)
	if !c.picker.IsOpen() {
		return closedCmd(true)
	}
	return nil
}

func (c *Calendar) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		c.shiftMonth(-1)
		return nil
	case tea.MouseButtonWheelDown:
		c.shiftMonth(1)
		return nil
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	w, h := c.Size()
	x, y := msg.X-c.originX, msg.Y-c.originY
	if x < 0 || y < 0 || x >= w || y >= h {
		return c.requestClose()
	}

	if day, ok := c.DayAt(msg.X, msg.Y); ok {
		c.cursor = day
		return c.pick(day)
	}
	return nil
}

func (c *Calendar) pick(day time.Time) tea.Cmd {
	c.picker.Pick(day)
	if !c.picker.IsOpen() {
		return closedCmd(true)
	}
	return nil
}

func (c *Calendar) requestClose() tea.Cmd {
	if !c.picker.RequestClose() {
		return func() tea.Msg { return BlockedCloseMsg{} }
	}
	return closedCmd(false)
}

func closedCmd(committed bool) tea.Cmd {
	return func() tea.Msg { return ClosedMsg{Committed: committed} }
}

func (c *Calendar) moveCursor(day time.Time) {
	c.cursor = day
	first := c.month
	last := c.month.AddDate(0, monthsShown, 0)
	switch {
	case day.Before(first):
		c.month = firstOfMonth(day)
	case !day.Before(last):
		c.month = firstOfMonth(day).AddDate(0, -(monthsShown - 1), 0)
	}
}

func (c *Calendar) shiftMonth(delta int) {
	c.month = c.month.AddDate(0, delta, 0)
	cursor := c.cursor.AddDate(0, delta, 0)
	// Keep the cursor visible when the day does not exist in the new month.
	if !firstOfMonth(cursor).Equal(firstOfMonth(c.cursor).AddDate(0, delta, 0)) {
		cursor = firstOfMonth(c.cursor).AddDate(0, delta+1, -1)
	}
	c.cursor = cursor
}

// DayAt maps an absolute screen cell to the day drawn there.
func (c *Calendar) DayAt(x, y int) (time.Time, bool) {
	rx := x - c.originX - borderLeft
	ry := y - c.originY - borderTop - headerRows
	if rx < 0 || ry < 0 || ry >= weekRows {
		return time.Time{}, false
	}

	block := monthWidth + monthGap
	idx := rx / block
	inner := rx % block
	if idx >= monthsShown || inner >= monthWidth {
		return time.Time{}, false
	}

	month := c.month.AddDate(0, idx, 0)
	day := gridStart(month).AddDate(0, 0, ry*7+inner/(cellWidth+1))
	if day.Month() != month.Month() {
		return time.Time{}, false
	}
	return day, true
}

var (
	calendarStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Primary).
			Padding(0, 1)

	monthTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.Secondary)
	weekdayStyle    = lipgloss.NewStyle().Foreground(styles.TextMuted)
	dayStyle        = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	inRangeStyle    = lipgloss.NewStyle().Background(styles.BgAccent).Foreground(styles.TextPrimary)
	endpointStyle   = lipgloss.NewStyle().Background(styles.Primary).Foreground(lipgloss.Color("229")).Bold(true)
	cursorStyle     = lipgloss.NewStyle().Reverse(true)
	todayStyle      = lipgloss.NewStyle().Underline(true).Foreground(styles.Info)
)

// View renders the popover.
func (c *Calendar) View() string {
	var b strings.Builder

	title := styles.CardTitleStyle.UnsetMarginBottom().Render("Date range")
	status := styles.HelpDescStyle.Render("  " + c.picker.Selected().String())
	b.WriteString(title + status)
	b.WriteString("\n\n")

	months := make([][]string, monthsShown)
	for i := range months {
		months[i] = c.renderMonth(c.month.AddDate(0, i, 0))
	}
	gap := strings.Repeat(" ", monthGap)
	for row := 0; row < len(months[0]); row++ {
		parts := make([]string, monthsShown)
		for i := range months {
			parts[i] = months[i][row]
		}
		b.WriteString(strings.Join(parts, gap))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(c.helpLine())
	return calendarStyle.Render(b.String())
}

func (c *Calendar) helpLine() string {
	if c.picker.Status() == OpenPartialSelection {
		return styles.WarningTextStyle.Render("pick an end date · x cancel")
	}
	bindings := []key.Binding{c.keys.Pick, c.keys.PrevMonth, c.keys.NextMonth, c.keys.Dismiss}
	parts := make([]string, 0, len(bindings)+1)
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	if c.extent != nil {
		parts = append(parts, styles.HelpKeyStyle.Render(c.keys.Preset.Help().Key)+" "+
			styles.HelpDescStyle.Render(strings.ToLower(c.preset.String())))
	}
	return strings.Join(parts, styles.HelpSeparatorStyle.Render(" · "))
}

// renderMonth returns the name row, the weekday row and six week rows, each
// exactly monthWidth cells wide.
func (c *Calendar) renderMonth(month time.Time) []string {
	rows := make([]string, 0, 2+weekRows)
	rows = append(rows, lipgloss.PlaceHorizontal(monthWidth, lipgloss.Center, monthTitleStyle.Render(month.Format("January 2006"))))
	rows = append(rows, weekdayStyle.Render("Su Mo Tu We Th Fr Sa"))

	sel := c.picker.Selected().Normalized()
	today := models.StartOfDay(c.now())
	day := gridStart(month)

	for w := 0; w < weekRows; w++ {
		cells := make([]string, 7)
		for d := 0; d < 7; d++ {
			if day.Month() != month.Month() {
				cells[d] = strings.Repeat(" ", cellWidth)
			} else {
				cells[d] = c.styleFor(day, sel, today).Render(day.Format("_2"))
			}
			day = day.AddDate(0, 0, 1)
		}
		rows = append(rows, strings.Join(cells, " "))
	}
	return rows
}

func (c *Calendar) styleFor(day time.Time, sel models.DateRange, today time.Time) lipgloss.Style {
	switch {
	case day.Equal(c.cursor):
		return cursorStyle
	case sel.From != nil && day.Equal(*sel.From), sel.To != nil && day.Equal(*sel.To):
		return endpointStyle
	case sel.Complete() && day.After(*sel.From) && day.Before(*sel.To):
		return inRangeStyle
	case day.Equal(today):
		return todayStyle
	default:
		return dayStyle
	}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
}

// gridStart is the Sunday on or before the first of month.
func gridStart(month time.Time) time.Time {
	first := firstOfMonth(month)
	return first.AddDate(0, 0, -int(first.Weekday()))
}
