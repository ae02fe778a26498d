package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/syncgrid-tui/internal/config"
	"github.com/j-veylop/syncgrid-tui/internal/models"
)

const twoCharts = `{
  "start": "2024-01-01",
  "end": "2024-01-03",
  "charts": [
    {"title": "CPU", "color": "#ff0000", "points": [
      {"date": "2024-01-01", "value": 1},
      {"date": "2024-01-02", "value": 2},
      {"date": "2024-01-03", "value": 3}
    ]},
    {"title": "Memory", "points": [
      {"date": "2024-01-01", "value": 10}
    ]}
  ]
}`

func newFileService(t *testing.T, content string) (*Service, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "series.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write data file: %v", err)
	}

	svc, err := New(Options{DataPath: path})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})
	return svc, path
}

func waitFor(t *testing.T, svc *Service, want EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == want {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %d", want)
			return Event{}
		}
	}
}

func TestNew_Generated(t *testing.T) {
	d := config.DefaultDashboard()
	d.End = d.Start.AddDate(0, 0, 9)

	svc, err := New(Options{Dashboard: d, DensifyFactor: 5})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer svc.Close()

	if svc.Source() != SourceGenerated {
		t.Errorf("Source = %q, want %q", svc.Source(), SourceGenerated)
	}

	charts := svc.Charts()
	if len(charts) != 9 {
		t.Fatalf("got %d charts, want 9", len(charts))
	}
	// Ten days densified by five.
	if n := len(charts[0].Points); n != 1+9*5 {
		t.Errorf("points = %d, want %d", n, 1+9*5)
	}
	if charts[0].Spec.Title != "Sessions" {
		t.Errorf("first chart = %q", charts[0].Spec.Title)
	}

	start, end := svc.Extent()
	if !start.Equal(d.Start) || !end.Equal(d.End) {
		t.Errorf("Extent = %v..%v", start, end)
	}

	ev := waitFor(t, svc, EventSeriesLoaded)
	if ev.Error != nil {
		t.Errorf("unexpected error %v", ev.Error)
	}
}

func TestNew_Deterministic(t *testing.T) {
	a, _ := New(Options{})
	b, _ := New(Options{})
	defer a.Close()
	defer b.Close()

	ca, cb := a.Charts(), b.Charts()
	for i := range ca {
		if len(ca[i].Points) != len(cb[i].Points) {
			t.Fatalf("chart %d lengths differ", i)
		}
		for j := range ca[i].Points {
			if ca[i].Points[j] != cb[i].Points[j] {
				t.Fatalf("chart %d point %d differs", i, j)
			}
		}
	}
}

func TestNew_DataFile(t *testing.T) {
	svc, path := newFileService(t, twoCharts)

	if svc.Source() != path {
		t.Errorf("Source = %q, want %q", svc.Source(), path)
	}

	charts := svc.Charts()
	if len(charts) != 2 {
		t.Fatalf("got %d charts, want 2", len(charts))
	}
	if charts[0].Spec.Color != "#ff0000" {
		t.Errorf("explicit color lost: %q", charts[0].Spec.Color)
	}
	if charts[1].Spec.Color != config.ColorBlue {
		t.Errorf("default color = %q", charts[1].Spec.Color)
	}

	start, end := svc.Extent()
	if start.Format(models.DateLayout) != "2024-01-01" || end.Format(models.DateLayout) != "2024-01-03" {
		t.Errorf("Extent = %v..%v", start, end)
	}
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(Options{DataPath: filepath.Join(t.TempDir(), "missing.json")})
	if err == nil {
		t.Error("expected an error for a missing data file")
	}
}

func TestParse_Formats(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantCharts int
		wantTitle  string
	}{
		{"Object", twoCharts, 2, "CPU"},
		{"ChartArray", `[{"title":"Disk","points":[{"date":"2024-03-01","value":4}]}]`, 1, "Disk"},
		{"PointArray", `[{"date":"2024-03-01","value":4},{"date":"2024-03-02","value":5}]`, 1, "Series"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			charts, _, _, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(charts) != tt.wantCharts || charts[0].Spec.Title != tt.wantTitle {
				t.Errorf("Parse() = %d charts, first %q", len(charts), charts[0].Spec.Title)
			}
		})
	}
}

func TestParse_ExtentFromPoints(t *testing.T) {
	_, start, end, err := Parse([]byte(`[{"date":"2024-03-05","value":4},{"date":"2024-03-09","value":5}]`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if start.Format(models.DateLayout) != "2024-03-05" || end.Format(models.DateLayout) != "2024-03-09" {
		t.Errorf("extent = %v..%v", start, end)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, data := range []string{`{`, `{"charts":[]}`, `42`, `{"start":"bad","charts":[{"points":[]}]}`} {
		if _, _, _, err := Parse([]byte(data)); err == nil {
			t.Errorf("Parse(%s) should fail", data)
		}
	}
}

func TestReloadOnChange(t *testing.T) {
	svc, path := newFileService(t, twoCharts)
	waitFor(t, svc, EventSeriesLoaded)

	updated := `[{"title":"Only","points":[{"date":"2024-02-01","value":7}]}]`
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatalf("rewrite data file: %v", err)
	}

	waitFor(t, svc, EventSeriesChanged)
	charts := svc.Charts()
	if len(charts) != 1 || charts[0].Spec.Title != "Only" {
		t.Errorf("reloaded charts = %+v", charts)
	}
}

func TestReloadKeepsSeriesOnBadFile(t *testing.T) {
	svc, path := newFileService(t, twoCharts)
	waitFor(t, svc, EventSeriesLoaded)

	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("rewrite data file: %v", err)
	}

	ev := waitFor(t, svc, EventError)
	if ev.Error == nil {
		t.Error("error event should carry the error")
	}
	if len(svc.Charts()) != 2 {
		t.Error("previous series should be kept")
	}
}

func TestClose_Idempotent(t *testing.T) {
	svc, _ := newFileService(t, twoCharts)
	if err := svc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestReload_DataFile(t *testing.T) {
	svc, path := newFileService(t, twoCharts)

	doc := `[{"title": "Disk", "points": [{"date": "2024-03-01", "value": 7}]}]`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	charts := svc.Charts()
	if len(charts) != 1 || charts[0].Spec.Title != "Disk" || charts[0].Points[0].Value != 7 {
		t.Errorf("charts after reload = %+v", charts)
	}

	if err := os.WriteFile(path, []byte("not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reload(); err == nil {
		t.Error("expected an error for a broken file")
	}
	if got := svc.Charts(); len(got) != 1 || got[0].Spec.Title != "Disk" {
		t.Errorf("broken file replaced the series: %+v", got)
	}
}

func TestReload_Generated(t *testing.T) {
	d := config.DefaultDashboard()
	d.End = d.Start.AddDate(0, 0, 4)

	svc, err := New(Options{Dashboard: d, DensifyFactor: 1})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer svc.Close()

	before := svc.Charts()
	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	after := svc.Charts()
	if len(after) != len(before) || after[0].Points[4] != before[0].Points[4] {
		t.Error("regenerating the same dashboard should give the same series")
	}
}
