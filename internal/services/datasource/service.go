// Package datasource provides the chart series, either generated from the
// dashboard definition or read from a JSON data file that is watched for
// changes.
package datasource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/syncgrid-tui/internal/config"
	"github.com/j-veylop/syncgrid-tui/internal/logger"
	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/series"
)

// SourceGenerated names the built-in deterministic series.
const SourceGenerated = "generated"

const debounceInterval = 100 * time.Millisecond

// DataFile is the JSON layout of a data file.
type DataFile struct {
	Start  string      `json:"start,omitempty"`
	End    string      `json:"end,omitempty"`
	Charts []ChartFile `json:"charts"`
}

// ChartFile is one chart inside a DataFile.
type ChartFile struct {
	Title  string               `json:"title"`
	Color  string               `json:"color,omitempty"`
	Points []models.SeriesPoint `json:"points"`
}

// Event is a datasource notification.
type Event struct {
	Type  EventType
	Error error
}

// EventType defines the type of datasource event.
type EventType int

const (
	EventSeriesLoaded EventType = iota
	EventSeriesChanged
	EventError
)

// Options configures a Service.
type Options struct {
	DataPath      string
	Dashboard     *config.Dashboard
	DensifyFactor int
}

// Service holds the current chart data.
type Service struct {
	mu            sync.RWMutex
	charts        []models.ChartData
	start         time.Time
	end           time.Time
	opts          Options
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	stopOnce      sync.Once
	debounceTimer *time.Timer
}

// New loads the series. Without a data path the dashboard definition is
// generated; with one, the file is parsed and watched.
func New(opts Options) (*Service, error) {
	if opts.Dashboard == nil {
		opts.Dashboard = config.DefaultDashboard()
	}

	s := &Service{
		opts:      opts,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if opts.DataPath == "" {
		s.generate()
		s.sendEvent(Event{Type: EventSeriesLoaded})
		return s, nil
	}

	if err := s.loadFile(); err != nil {
		return nil, fmt.Errorf("failed to load data file: %w", err)
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventSeriesLoaded})
	return s, nil
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Source is the data file path, or SourceGenerated.
func (s *Service) Source() string {
	if s.opts.DataPath == "" {
		return SourceGenerated
	}
	return s.opts.DataPath
}

// Charts returns a copy of the chart list. Point slices are shared and must
// not be modified.
func (s *Service) Charts() []models.ChartData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ChartData, len(s.charts))
	copy(out, s.charts)
	return out
}

// Extent returns the period covered by the series.
func (s *Service) Extent() (time.Time, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.start, s.end
}

// Reload re-reads the data file, or regenerates the series when there is
// none. A broken file keeps the previous series and returns the error.
func (s *Service) Reload() error {
	if s.opts.DataPath == "" {
		s.generate()
		return nil
	}
	if err := s.loadFile(); err != nil {
		return fmt.Errorf("failed to reload data file: %w", err)
	}
	return nil
}

func (s *Service) generate() {
	d := s.opts.Dashboard
	charts := make([]models.ChartData, len(d.Charts))
	for i, spec := range d.Charts {
		charts[i] = models.ChartData{
			Spec:   spec,
			Points: series.Build(spec, d.Start, d.End, s.opts.DensifyFactor),
		}
	}

	s.mu.Lock()
	s.charts = charts
	s.start, s.end = d.Start, d.End
	s.mu.Unlock()

	logger.Debug("series generated", "charts", len(charts), "start", d.Start.Format(models.DateLayout))
}

// Parse reads a data file. Three shapes are accepted: the DataFile object, a
// bare array of charts, and a bare array of points forming a single chart.
func Parse(data []byte) ([]models.ChartData, time.Time, time.Time, error) {
	var file DataFile
	if err := json.Unmarshal(data, &file); err == nil && len(file.Charts) > 0 {
		return fromFile(file)
	}

	var charts []ChartFile
	if err := json.Unmarshal(data, &charts); err == nil && len(charts) > 0 && charts[0].Points != nil {
		return fromFile(DataFile{Charts: charts})
	}

	var points []models.SeriesPoint
	if err := json.Unmarshal(data, &points); err == nil && len(points) > 0 {
		return fromFile(DataFile{Charts: []ChartFile{{Title: "Series", Points: points}}})
	}

	return nil, time.Time{}, time.Time{}, errors.New("failed to parse data file: invalid format")
}

func fromFile(file DataFile) ([]models.ChartData, time.Time, time.Time, error) {
	palette := []string{config.ColorBlue, config.ColorGreen, config.ColorRed}

	charts := make([]models.ChartData, len(file.Charts))
	var start, end time.Time
	for i, c := range file.Charts {
		spec := models.ChartSpec{Title: c.Title, Color: c.Color}
		if spec.Title == "" {
			spec.Title = fmt.Sprintf("Chart %d", i+1)
		}
		if spec.Color == "" {
			spec.Color = palette[(i/3)%len(palette)]
		}
		charts[i] = models.ChartData{Spec: spec, Points: c.Points}

		if first, last, ok := series.Extent(c.Points); ok {
			if start.IsZero() || first.Before(start) {
				start = first
			}
			if end.IsZero() || last.After(end) {
				end = last
			}
		}
	}

	var err error
	if file.Start != "" {
		if start, err = models.ParseDate(file.Start); err != nil {
			return nil, time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if file.End != "" {
		if end, err = models.ParseDate(file.End); err != nil {
			return nil, time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
		}
	}
	return charts, start, end, nil
}

// loadFile parses the data file and swaps it in.
func (s *Service) loadFile() error {
	data, err := os.ReadFile(s.opts.DataPath)
	if err != nil {
		return err
	}

	charts, start, end, err := Parse(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.charts = charts
	s.start, s.end = start, end
	s.mu.Unlock()

	logger.Info("data file loaded", "path", s.opts.DataPath, "charts", len(charts))
	return nil
}

// startWatcher watches the data file's directory.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Editors replace files on save, so watch the directory.
	dir := filepath.Dir(s.opts.DataPath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.opts.DataPath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads the data file after an external change. A broken
// file keeps the previous series.
func (s *Service) handleFileChange() {
	if err := s.loadFile(); err != nil {
		logger.Warn("data file reload failed", "path", s.opts.DataPath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}
	s.sendEvent(Event{Type: EventSeriesChanged})
}

// sendEvent sends without blocking, dropping the oldest event when full.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher.
func (s *Service) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
