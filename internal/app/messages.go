package app

import (
	"time"

	"github.com/j-veylop/syncgrid-tui/internal/models"
	"github.com/j-veylop/syncgrid-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// SeriesLoadedMsg carries the chart data read at startup or on reload.
type SeriesLoadedMsg struct {
	Event services.SeriesLoadedEvent
	Error error
}

// LayoutsLoadedMsg carries the persisted canvas layouts.
type LayoutsLoadedMsg struct {
	Layouts []models.ChartLayout
}

// LayoutSavedMsg reports the outcome of a canvas frame update.
type LayoutSavedMsg struct {
	Layout models.ChartLayout
	Error  error
}

// LayoutsResetMsg reports the outcome of forgetting every canvas layout.
type LayoutsResetMsg struct {
	Error error
}

// HoverClearedMsg is sent when a deferred hover clear lands, so the
// crosshair disappears without waiting for the next input.
type HoverClearedMsg struct{}

// OpenPickerMsg asks the root model to open the date range popover.
type OpenPickerMsg struct{}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "layouts"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Path    string
	Success bool
	Error   error
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}
