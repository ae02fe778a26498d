// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/syncgrid-tui/internal/config"
	"github.com/j-veylop/syncgrid-tui/internal/db"
	"github.com/j-veylop/syncgrid-tui/internal/events"
	"github.com/j-veylop/syncgrid-tui/internal/layout"
	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/services/datasource"
)

type (
	// SeriesLoadedEvent is emitted when chart data is first loaded or reloaded.
	SeriesLoadedEvent struct {
		Charts   []models.ChartData
		Start    time.Time
		End      time.Time
		Source   string
		Reloaded bool
	}

	// LayoutsLoadedEvent is emitted once the persisted layouts have been read.
	LayoutsLoadedEvent struct {
		Layouts []models.ChartLayout
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SeriesLoadedEvent) isServiceEvent()  {}
func (LayoutsLoadedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()         {}

// Manager owns the dashboard's shared services: the range bus, the layout
// store and the series source.
type Manager struct {
	mu          sync.RWMutex
	bus         *events.Bus
	detachBus   func()
	database    *db.DB
	layouts     *layout.Persistence
	data        *datasource.Service
	stopChan    chan struct{}
	stopOnce    sync.Once
	subscribers []chan<- ServiceEvent
}

// NewManager opens the database, loads the series and bridges the chart
// range topic to the provider topic.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		bus:      events.NewBus(),
		stopChan: make(chan struct{}),
	}
	m.detachBus = events.Bridge(m.bus)

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	m.layouts = layout.New(m.database)

	m.data, err = datasource.New(datasource.Options{
		DataPath:      cfg.DataPath,
		Dashboard:     cfg.Dashboard,
		DensifyFactor: cfg.DensifyFactor,
	})
	if err != nil {
		_ = m.database.Close()
		return nil, err
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.data.Events():
			m.handleDataEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleDataEvent(event datasource.Event) {
	switch event.Type {
	case datasource.EventSeriesLoaded, datasource.EventSeriesChanged:
		m.broadcast(m.seriesEvent(event.Type == datasource.EventSeriesChanged))

	case datasource.EventError:
		m.broadcast(ErrorEvent{
			Service: "datasource",
			Error:   event.Error,
		})
	}
}

func (m *Manager) seriesEvent(reloaded bool) SeriesLoadedEvent {
	start, end := m.data.Extent()
	return SeriesLoadedEvent{
		Charts:   m.data.Charts(),
		Start:    start,
		End:      end,
		Source:   m.data.Source(),
		Reloaded: reloaded,
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Bus returns the range notification bus.
func (m *Manager) Bus() *events.Bus {
	return m.bus
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Layouts returns the layout persistence layer.
func (m *Manager) Layouts() *layout.Persistence {
	return m.layouts
}

// Data returns the series source.
func (m *Manager) Data() *datasource.Service {
	return m.data
}

// Series returns the current chart data.
func (m *Manager) Series() SeriesLoadedEvent {
	return m.seriesEvent(false)
}

// Reload re-reads the series source and returns the fresh data. It is meant
// to run inside a tea.Cmd.
func (m *Manager) Reload() (SeriesLoadedEvent, error) {
	if err := m.data.Reload(); err != nil {
		return SeriesLoadedEvent{}, err
	}
	return m.seriesEvent(true), nil
}

// LoadLayouts reads the persisted layouts once and returns them as an event.
// It is meant to run inside a tea.Cmd.
func (m *Manager) LoadLayouts(ctx context.Context) LayoutsLoadedEvent {
	return LayoutsLoadedEvent{Layouts: m.layouts.Load(ctx)}
}

// ResetLayouts forgets every persisted layout.
func (m *Manager) ResetLayouts(ctx context.Context) error {
	return m.layouts.Reset(ctx)
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.detachBus()

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.data.Close(); err != nil {
			errs = append(errs, err)
		}

		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
