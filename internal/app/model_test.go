package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/syncgrid-tui/internal/config"
	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/picker"
	"github.com/j-veylop/syncgrid-tui/internal/services"
)

// recordingTab remembers the messages it receives.
type recordingTab struct {
	name   string
	msgs   []tea.Msg
	width  int
	height int
}

func (r *recordingTab) Init() tea.Cmd { return nil }

func (r *recordingTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	r.msgs = append(r.msgs, msg)
	return r, nil
}

func (r *recordingTab) View() string { return "content of " + r.name }

func (r *recordingTab) SetSize(width, height int) {
	r.width, r.height = width, height
}

func (r *recordingTab) ShortHelp() []key.Binding {
	return []key.Binding{key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "do "+r.name))}
}

func (r *recordingTab) FullHelp() [][]key.Binding { return nil }

func (r *recordingTab) lastMouse() (tea.MouseMsg, bool) {
	for i := len(r.msgs) - 1; i >= 0; i-- {
		if m, ok := r.msgs[i].(tea.MouseMsg); ok {
			return m, true
		}
	}
	return tea.MouseMsg{}, false
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func readyModel(t *testing.T) (*Model, []*recordingTab) {
	t.Helper()
	m := NewModel(nil)
	tabs := []*recordingTab{{name: "grid"}, {name: "canvas"}, {name: "info"}}
	m.SetTabs([]Tab{tabs[0], tabs[1], tabs[2]})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, tabs
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model == nil {
		t.Fatal("NewModel returned nil")
	}
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabGrid {
		t.Error("Default tab should be Grid")
	}
	if len(model.tabs) != 3 {
		t.Errorf("Should have 3 tabs placeholder, got %d", len(model.tabs))
	}
	if model.GetPicker() == nil || model.GetPicker().IsOpen() {
		t.Error("picker should exist and start closed")
	}
}

func TestModel_Init(t *testing.T) {
	model := NewModel(nil)
	cmd := model.Init()
	if cmd == nil {
		t.Error("Init returned nil command")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	m, tabs := readyModel(t)

	if m.width != 100 || m.height != 40 {
		t.Errorf("size = %dx%d, want 100x40", m.width, m.height)
	}
	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
	if tabs[1].width != 100 || tabs[1].height != 40-HeaderHeight {
		t.Errorf("tab size = %dx%d", tabs[1].width, tabs[1].height)
	}
}

func TestModel_Update_TabSwitch(t *testing.T) {
	m, _ := readyModel(t)

	m.Update(TabSwitchMsg{Tab: TabInfo})
	if m.activeTab != TabInfo {
		t.Errorf("ActiveTab = %v, want Info", m.activeTab)
	}

	m.Update(runeKey('2'))
	if m.activeTab != TabCanvas {
		t.Errorf("ActiveTab = %v, want Canvas", m.activeTab)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.activeTab != TabInfo {
		t.Errorf("ActiveTab after tab = %v, want Info", m.activeTab)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.activeTab != TabCanvas {
		t.Errorf("ActiveTab after shift+tab = %v, want Canvas", m.activeTab)
	}
}

func TestModel_TabSwitchSetsLayoutMode(t *testing.T) {
	m, _ := readyModel(t)

	m.Update(runeKey('2'))
	if got := m.state.LayoutMode(); got != models.LayoutFree {
		t.Errorf("canvas mode = %v, want free", got)
	}

	m.Update(runeKey('3'))
	if got := m.state.LayoutMode(); got != models.LayoutFree {
		t.Errorf("info should keep the last chart mode, got %v", got)
	}

	m.state.SetResponsive(false)
	m.Update(runeKey('1'))
	if got := m.state.LayoutMode(); got != models.LayoutVertical {
		t.Errorf("grid mode = %v, want vertical", got)
	}
}

func TestModel_SwitchTabLeavesCharts(t *testing.T) {
	m, tabs := readyModel(t)

	m.Update(runeKey('3'))
	last, ok := tabs[0].lastMouse()
	if !ok || last.X >= 0 || last.Y >= 0 {
		t.Errorf("old tab should see the pointer leave, got %+v", last)
	}
}

func TestModel_MouseIsTranslated(t *testing.T) {
	m, tabs := readyModel(t)

	m.Update(tea.MouseMsg{X: 10, Y: 7, Action: tea.MouseActionMotion})
	got, ok := tabs[0].lastMouse()
	if !ok {
		t.Fatal("tab did not receive the mouse event")
	}
	if got.X != 10 || got.Y != 7-HeaderHeight {
		t.Errorf("mouse = (%d,%d), want (10,%d)", got.X, got.Y, 7-HeaderHeight)
	}
}

func TestModel_UnhandledKeysReachTab(t *testing.T) {
	m, tabs := readyModel(t)

	m.Update(runeKey('e'))
	if len(tabs[0].msgs) == 0 {
		t.Fatal("tab got nothing")
	}
	if k, ok := tabs[0].msgs[len(tabs[0].msgs)-1].(tea.KeyMsg); !ok || k.String() != "e" {
		t.Errorf("last msg = %#v", tabs[0].msgs[len(tabs[0].msgs)-1])
	}
}

func TestModel_DatePickerIsModal(t *testing.T) {
	m, tabs := readyModel(t)

	m.Update(runeKey('d'))
	if !m.calendar.IsOpen() {
		t.Fatal("d should open the calendar")
	}
	if !strings.Contains(m.View(), "Su") {
		t.Error("calendar should be drawn over the tab")
	}

	before := len(tabs[0].msgs)
	m.Update(runeKey('2'))
	m.Update(tea.MouseMsg{X: 1, Y: 5, Action: tea.MouseActionMotion})
	if m.activeTab != TabGrid {
		t.Error("tab keys must not leak while the calendar is open")
	}
	if len(tabs[0].msgs) != before {
		t.Error("tab received input while the calendar was open")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.calendar.IsOpen() {
		t.Error("esc with no selection should close")
	}
	if cmd == nil {
		t.Fatal("closing should report ClosedMsg")
	}
	if closed, ok := cmd().(picker.ClosedMsg); !ok || closed.Committed {
		t.Errorf("got %#v, want uncommitted ClosedMsg", closed)
	}
}

func TestModel_OpenPickerMsg(t *testing.T) {
	m, _ := readyModel(t)
	m.Update(OpenPickerMsg{})
	if !m.calendar.IsOpen() {
		t.Error("OpenPickerMsg should open the calendar")
	}
}

func TestModel_PickerCommitUpdatesState(t *testing.T) {
	m, _ := readyModel(t)
	from := time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 0, 4)

	m.GetPicker().Open()
	m.GetPicker().Pick(from)
	m.GetPicker().Pick(to)

	got := m.state.DateRange()
	if !got.Equal(models.NewDateRange(from, to)) {
		t.Errorf("DateRange = %v", got)
	}

	_, cmd := m.Update(picker.ClosedMsg{Committed: true})
	assertNotification(t, cmd, NotificationInfo, "Range set to")
}

func TestModel_Update_Tick(t *testing.T) {
	model := NewModel(nil)
	msg := TickMsg{Time: time.Now()}

	_, cmd := model.Update(msg)
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	// Not ready
	view := model.View()
	if !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	// Ready
	model.ready = true
	model.width = 80
	model.height = 24

	view = model.View()
	for _, name := range []string{"Grid", "Canvas", "Info"} {
		if !strings.Contains(view, name) {
			t.Errorf("View should show %s tab", name)
		}
	}
	// Should show placeholder since tabs are nil
	if !strings.Contains(view, "not yet implemented") {
		t.Error("View should show placeholder text")
	}
}

func TestModel_ViewShowsActiveTab(t *testing.T) {
	m, _ := readyModel(t)
	if !strings.Contains(m.View(), "content of grid") {
		t.Error("active tab content missing")
	}
}

func TestModel_Help(t *testing.T) {
	m, _ := readyModel(t)

	m.Update(ToggleHelpMsg{})
	if !m.showHelp {
		t.Error("showHelp should be true")
	}

	view := m.View()
	if !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("View should show help modal")
	}
	if !strings.Contains(view, "do grid") {
		t.Error("help should list the active tab's bindings")
	}

	// Toggle off via key
	m.handleKeyMsg(runeKey('?'))
	if m.showHelp {
		t.Error("showHelp should be false after toggle")
	}
}

func TestModel_Notifications(t *testing.T) {
	model := NewModel(nil)

	msg := AddNotificationMsg{
		Message:  "Test Note",
		Type:     NotificationInfo,
		Duration: 0,
	}

	model.Update(msg)

	notifs := model.state.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}

	// Test rendering
	model.ready = true
	model.width = 80
	model.height = 24
	view := model.View()
	if !strings.Contains(view, "Test Note") {
		t.Error("View should show notification")
	}
}

func TestModel_HandleServiceEvent(t *testing.T) {
	model := NewModel(nil)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	charts := []models.ChartData{{Spec: models.ChartSpec{Title: "Users"}}}

	cmd := model.handleServiceEvent(services.SeriesLoadedEvent{
		Charts: charts, Start: start, End: start.AddDate(0, 0, 9), Source: "generated",
	})
	if cmd != nil {
		t.Error("initial load should not toast")
	}
	if model.state.ChartCount() != 1 {
		t.Error("charts should be stored")
	}

	cmd = model.handleServiceEvent(services.SeriesLoadedEvent{Charts: charts, Source: "data.json", Reloaded: true})
	if cmd == nil {
		t.Error("reload should trigger a notification")
	}
	if model.state.ChartsGeneration() != 2 {
		t.Errorf("ChartsGeneration = %d, want 2", model.state.ChartsGeneration())
	}

	errEvent := services.ErrorEvent{Service: "test", Error: errors.New("boom")}
	cmd = model.handleServiceEvent(errEvent)
	if cmd == nil {
		t.Error("Error event should trigger notification command")
	}
	if add, ok := cmd().(AddNotificationMsg); !ok || add.Type != NotificationError {
		t.Errorf("got %#v", add)
	}
}

func TestModel_Update_Messages(t *testing.T) {
	model := NewModel(nil)

	model.Update(StartLoadingMsg{Resource: "layouts"})
	if !model.state.Loading.Layouts {
		t.Error("Loading.Layouts should be true")
	}

	model.Update(StopLoadingMsg{Resource: "layouts"})
	if model.state.Loading.Layouts {
		t.Error("Loading.Layouts should be false")
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	model.Update(SeriesLoadedMsg{Event: services.SeriesLoadedEvent{
		Charts: []models.ChartData{{}, {}},
		Start:  start,
		End:    start.AddDate(0, 1, 0),
	}})
	if model.state.ChartCount() != 2 {
		t.Error("charts should be updated")
	}
	if model.state.Loading.Initial {
		t.Error("Initial loading should be false")
	}

	model.Update(StartLoadingMsg{Resource: "layouts"})
	model.Update(LayoutsLoadedMsg{})
	if model.state.Loading.Layouts {
		t.Error("layouts loading should be cleared")
	}

	// Failed save and reset announce errors.
	_, cmd := model.Update(LayoutSavedMsg{Layout: models.ChartLayout{ID: "chart-1"}, Error: errors.New("disk full")})
	assertNotification(t, cmd, NotificationError, "chart-1")
	_, cmd = model.Update(LayoutsResetMsg{})
	assertNotification(t, cmd, NotificationSuccess, "reset")

	_, cmd = model.Update(ExportResultMsg{Path: "/tmp/x.png", Success: true})
	assertNotification(t, cmd, NotificationSuccess, "/tmp/x.png")
	_, cmd = model.Update(ExportResultMsg{Error: errors.New("no data")})
	assertNotification(t, cmd, NotificationError, "no data")

	_, cmd = model.Update(picker.BlockedCloseMsg{})
	assertNotification(t, cmd, NotificationWarning, "end date")

	// services is nil, so refresh is a no-op
	model.Update(RefreshMsg{Resource: "all"})
	model.Update(RefreshMsg{Resource: "series"})

	model.Update(AddNotificationMsg{Message: "test", Type: NotificationInfo})
	model.Update(RemoveNotificationMsg{ID: "nonexistent"}) // coverage
	model.Update(ClearExpiredNotificationsMsg{})
	model.Update(HoverClearedMsg{})
}

func TestModel_SetSender(t *testing.T) {
	model := NewModel(nil, WithHoverClearDelay(time.Millisecond))
	got := make(chan tea.Msg, 1)
	model.SetSender(func(msg tea.Msg) { got <- msg })

	v := 0.5
	model.state.SetHoverRatio(&v)
	model.state.SetHoverRatio(nil)

	select {
	case msg := <-got:
		if _, ok := msg.(HoverClearedMsg); !ok {
			t.Errorf("got %#v, want HoverClearedMsg", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("hover clear never reached the program")
	}
}

func TestModel_RefreshWithManager(t *testing.T) {
	mgr := newTestManager(t)
	model := NewModel(mgr)
	defer model.Close()

	_, cmd := model.Update(runeKey('r'))
	if cmd == nil {
		t.Fatal("r should reload the series")
	}
	if !model.state.Loading.Data {
		t.Error("data loading should be flagged")
	}

	var loaded *SeriesLoadedMsg
	for _, c := range flatten(cmd) {
		if msg, ok := c().(SeriesLoadedMsg); ok {
			loaded = &msg
		}
	}
	if loaded == nil {
		t.Fatal("reload did not produce SeriesLoadedMsg")
	}
	if !loaded.Event.Reloaded {
		t.Error("reload should be flagged as such")
	}
	model.Update(*loaded)
	if model.state.ChartCount() != len(loaded.Event.Charts) {
		t.Errorf("ChartCount = %d", model.state.ChartCount())
	}
	if model.state.Loading.Data {
		t.Error("data loading should be cleared")
	}
}

// pressReload sends r and returns the series message the reload produces.
func pressReload(t *testing.T, model *Model) SeriesLoadedMsg {
	t.Helper()
	_, cmd := model.Update(runeKey('r'))
	for _, c := range flatten(cmd) {
		if msg, ok := c().(SeriesLoadedMsg); ok {
			return msg
		}
	}
	t.Fatal("reload did not produce SeriesLoadedMsg")
	return SeriesLoadedMsg{}
}

func TestModel_RefreshRereadsDataFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "series.json")
	write := func(value string) {
		t.Helper()
		doc := `{"charts":[{"title":"Visits","points":[{"date":"2024-01-01","value":` + value +
			`},{"date":"2024-01-02","value":` + value + `}]}]}`
		if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("10")

	mgr, err := services.NewManager(&config.Config{
		DatabasePath:  filepath.Join(dir, "test.db"),
		DataPath:      path,
		DensifyFactor: 1,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })

	model := NewModel(mgr)
	defer model.Close()

	write("42")
	msg := pressReload(t, model)
	if msg.Error != nil {
		t.Fatalf("reload error: %v", msg.Error)
	}
	model.Update(msg)

	charts := model.state.Charts()
	if len(charts) != 1 || charts[0].Points[0].Value != 42 {
		t.Fatalf("reloaded charts = %+v", charts)
	}

	// A broken file keeps the previous series and reports the failure.
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	msg = pressReload(t, model)
	if msg.Error == nil {
		t.Fatal("expected a reload error")
	}
	_, cmd := model.Update(msg)
	if cmd == nil {
		t.Error("a failed reload should raise a notification")
	}
	if model.state.Loading.Data {
		t.Error("data loading should be cleared after a failure")
	}
	if got := mgr.Series().Charts[0].Points[0].Value; got != 42 {
		t.Errorf("previous series lost, value = %v", got)
	}
}

func TestModel_HandleSpinnerTick(t *testing.T) {
	model := NewModel(nil)
	// Spinner tick returns a command
	_, cmd := model.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Spinner tick should return command")
	}
}

func TestTabID_String(t *testing.T) {
	if TabGrid.String() != "Grid" {
		t.Error("TabGrid.String() mismatch")
	}
	if TabCanvas.String() != "Canvas" {
		t.Error("TabCanvas.String() mismatch")
	}
	if TabInfo.String() != "Info" {
		t.Error("TabInfo.String() mismatch")
	}
	if TabID(999).String() != "Unknown" {
		t.Error("Unknown tab string mismatch")
	}
}

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()
	if len(km.ShortHelp()) == 0 {
		t.Error("ShortHelp empty")
	}
	if len(km.FullHelp()) == 0 {
		t.Error("FullHelp empty")
	}
	if !key.Matches(runeKey('d'), km.DateRange) {
		t.Error("d should open the date picker")
	}
}

func assertNotification(t *testing.T, cmd tea.Cmd, want NotificationType, contains string) {
	t.Helper()
	for _, c := range flatten(cmd) {
		if add, ok := c().(AddNotificationMsg); ok {
			if add.Type != want || !strings.Contains(add.Message, contains) {
				t.Errorf("notification = %v %q, want %v containing %q", add.Type, add.Message, want, contains)
			}
			return
		}
	}
	t.Errorf("no notification containing %q", contains)
}

// flatten expands batched commands, skipping ticks that would block.
func flatten(cmd tea.Cmd) []tea.Cmd {
	if cmd == nil {
		return nil
	}
	var out []tea.Cmd
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, flatten(c)...)
		}
	default:
		out = append(out, func() tea.Msg { return msg })
	}
	return out
}
