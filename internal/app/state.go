// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/syncgrid-tui/internal/events"
	"github.com/j-veylop/syncgrid-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	// DefaultHoverClearDelay is how long a cleared hover waits before it
	// takes effect.
	DefaultHoverClearDelay = 40 * time.Millisecond
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Layouts bool
	Data    bool
}

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. It exists so tests can drive the hover debounce.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// State is the synchronization store shared by every chart on the dashboard.
// Each field has a single setter; readers take copies.
type State struct {
	mu sync.RWMutex

	dateRange    models.DateRange
	hoverRatio   *float64
	responsive   bool
	layoutMode   models.LayoutMode
	chartLayouts map[int]models.Rect

	charts     []models.ChartData
	chartsGen  uint64
	dataStart  time.Time
	dataEnd    time.Time
	dataSource string

	clearDelay time.Duration
	clearTimer Timer
	clearSeq   uint64
	scheduler  Scheduler

	onHoverCleared func()
	onRangeChanged func(models.DateRange)
	unsubscribe    func()

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// StateOption configures a State.
type StateOption func(*State)

// WithBus subscribes the store to provider-level range notifications.
func WithBus(bus *events.Bus) StateOption {
	return func(s *State) {
		s.unsubscribe = bus.Subscribe(events.TopicProviderSetRange, func(e events.SetRangeEvent) {
			s.SetDateRange(e.Range)
		})
	}
}

// WithScheduler replaces the timer source for the hover debounce.
func WithScheduler(sched Scheduler) StateOption {
	return func(s *State) { s.scheduler = sched }
}

// WithHoverClearDelay overrides the hover debounce window.
func WithHoverClearDelay(d time.Duration) StateOption {
	return func(s *State) {
		if d > 0 {
			s.clearDelay = d
		}
	}
}

// WithDateRange sets the initial range.
func WithDateRange(r models.DateRange) StateOption {
	return func(s *State) { s.dateRange = r }
}

// WithResponsive sets the initial responsive flag.
func WithResponsive(responsive bool) StateOption {
	return func(s *State) {
		s.responsive = responsive
		s.layoutMode = modeFor(responsive)
	}
}

// NewState creates a store. Without options it starts responsive with no
// range selected and no bus subscription.
func NewState(opts ...StateOption) *State {
	s := &State{
		responsive:    true,
		layoutMode:    models.LayoutGrid,
		chartLayouts:  make(map[int]models.Rect),
		clearDelay:    DefaultHoverClearDelay,
		scheduler:     realScheduler{},
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close cancels any pending hover clear and detaches from the bus.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
	s.clearSeq++
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// OnHoverCleared registers a callback fired after a deferred clear lands.
// The callback runs on the timer goroutine.
func (s *State) OnHoverCleared(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onHoverCleared = f
}

// OnRangeChanged registers a callback fired after every SetDateRange.
func (s *State) OnRangeChanged(f func(models.DateRange)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRangeChanged = f
}

// DateRange returns the shared range.
func (s *State) DateRange() models.DateRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dateRange
}

// SetDateRange replaces the shared range.
func (s *State) SetDateRange(r models.DateRange) {
	s.mu.Lock()
	s.dateRange = r
	s.LastUpdated = time.Now()
	cb := s.onRangeChanged
	s.mu.Unlock()

	if cb != nil {
		cb(r)
	}
}

// HoverRatio returns the shared hover position, or nil when nothing is hovered.
func (s *State) HoverRatio() *float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.hoverRatio == nil {
		return nil
	}
	v := *s.hoverRatio
	return &v
}

// SetHoverRatio applies a non-nil ratio immediately, clamped to [0,1], and
// cancels any pending clear. A nil ratio is deferred by the clear delay so
// that moving between charts does not flicker; a later non-nil call within
// the window wins.
func (s *State) SetHoverRatio(r *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
	s.clearSeq++

	if r != nil {
		v := clamp01(*r)
		s.hoverRatio = &v
		return
	}

	seq := s.clearSeq
	s.clearTimer = s.scheduler.AfterFunc(s.clearDelay, func() {
		s.mu.Lock()
		if s.clearSeq != seq {
			s.mu.Unlock()
			return
		}
		s.hoverRatio = nil
		s.clearTimer = nil
		cb := s.onHoverCleared
		s.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// Responsive returns whether the grid uses three columns.
func (s *State) Responsive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.responsive
}

// SetResponsive toggles the grid column count and keeps the layout mode in
// step unless the free canvas is active.
func (s *State) SetResponsive(responsive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responsive = responsive
	if s.layoutMode != models.LayoutFree {
		s.layoutMode = modeFor(responsive)
	}
}

// LayoutMode returns the active arrangement.
func (s *State) LayoutMode() models.LayoutMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layoutMode
}

// SetLayoutMode switches the arrangement.
func (s *State) SetLayoutMode(m models.LayoutMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layoutMode = m
}

// ChartLayouts returns a copy of the per-chart rectangles.
func (s *State) ChartLayouts() map[int]models.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]models.Rect, len(s.chartLayouts))
	for k, v := range s.chartLayouts {
		out[k] = v
	}
	return out
}

// SetChartLayout records the rectangle for a chart index.
func (s *State) SetChartLayout(id int, r models.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chartLayouts[id] = r
}

// SetCharts replaces the chart definitions and their series.
func (s *State) SetCharts(charts []models.ChartData, start, end time.Time, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.charts = charts
	s.chartsGen++
	s.dataStart = start
	s.dataEnd = end
	s.dataSource = source
	s.LastUpdated = time.Now()
}

// Charts returns the chart definitions. Point slices are shared and must be
// treated as read-only.
func (s *State) Charts() []models.ChartData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ChartData, len(s.charts))
	copy(out, s.charts)
	return out
}

// ChartsGeneration increments on every SetCharts so views can tell when
// to rebuild their widgets.
func (s *State) ChartsGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chartsGen
}

// ChartCount returns the number of charts.
func (s *State) ChartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.charts)
}

// DataExtent returns the period covered by the loaded series.
func (s *State) DataExtent() (time.Time, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataStart, s.dataEnd
}

// DataSource describes where the series came from.
func (s *State) DataSource() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataSource
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "layouts":
		s.Loading.Layouts = loading
	case "data":
		s.Loading.Data = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Layouts ||
		s.Loading.Data
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	// Keep only the last 10 notifications
	if len(s.notifications) > 10 {
		s.notifications = s.notifications[len(s.notifications)-10:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

func modeFor(responsive bool) models.LayoutMode {
	if responsive {
		return models.LayoutGrid
	}
	return models.LayoutVertical
}

func clamp01(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
