// Package picker implements the date range popover: a small state machine
// that only commits complete ranges, and a two-month calendar view over it.
package picker

import (
	"time"

	"github.com/j-veylop/syncgrid-tui/internal/events"
	"github.com/j-veylop/syncgrid-tui/internal/models"
)

// Status is the popover state.
type Status int

const (
	// Closed means the popover is hidden.
	Closed Status = iota
	// OpenNoSelection means the popover is open and nothing is picked yet.
	OpenNoSelection
	// OpenPartialSelection means a start date is picked and the popover
	// refuses dismissal until the end date arrives.
	OpenPartialSelection
	// OpenCompleteSelection means the displayed range is complete.
	OpenCompleteSelection
)

// String returns the display name for a status.
func (s Status) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenNoSelection:
		return "open"
	case OpenPartialSelection:
		return "open (partial)"
	case OpenCompleteSelection:
		return "open (complete)"
	default:
		return "unknown"
	}
}

// RangeSetter receives committed ranges.
type RangeSetter interface {
	SetDateRange(models.DateRange)
}

// Picker holds the popover state. It is not safe for concurrent use; it is
// driven from the UI loop.
type Picker struct {
	store        RangeSetter
	onChange     func(models.DateRange)
	status       Status
	selected     models.DateRange
	preventClose bool
	unsubscribe  func()
}

// New creates a closed picker showing value. When bus is non-nil the picker
// follows provider-level range notifications.
func New(store RangeSetter, bus *events.Bus, value models.DateRange, onChange func(models.DateRange)) *Picker {
	p := &Picker{
		store:    store,
		onChange: onChange,
		selected: value,
	}
	if bus != nil {
		p.unsubscribe = bus.Subscribe(events.TopicProviderSetRange, func(e events.SetRangeEvent) {
			p.Inject(e.Range)
		})
	}
	return p
}

// Detach stops following the bus.
func (p *Picker) Detach() {
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

// Status returns the current state.
func (p *Picker) Status() Status {
	return p.status
}

// IsOpen reports whether the popover is visible.
func (p *Picker) IsOpen() bool {
	return p.status != Closed
}

// Selected returns the displayed selection.
func (p *Picker) Selected() models.DateRange {
	return p.selected
}

// Open shows the popover and clears any pending dismissal guard. The last
// committed range stays on display until the first pick replaces it.
func (p *Picker) Open() {
	p.preventClose = false
	p.status = OpenNoSelection
}

// HandleSelect processes a selection reported by the calendar. A start date
// alone keeps the popover open and locked; a complete range is normalized to
// local midnight, committed to the store, reported once through onChange, and
// closes the popover. A range with no start is ignored.
func (p *Picker) HandleSelect(r *models.DateRange) {
	if r == nil || r.From == nil {
		return
	}

	p.selected = *r

	if !r.Complete() {
		p.preventClose = true
		p.status = OpenPartialSelection
		return
	}

	committed := r.Normalized()
	p.selected = committed
	p.preventClose = false
	if p.store != nil {
		p.store.SetDateRange(committed)
	}
	if p.onChange != nil {
		p.onChange(committed)
	}
	p.status = Closed
}

// RequestClose is the popover's own dismissal (escape or a click outside).
// It is ignored while a partial selection is pending.
func (p *Picker) RequestClose() bool {
	if p.preventClose {
		return false
	}
	p.status = Closed
	return true
}

// Close is an explicit close action and always succeeds. A pending partial
// selection is dropped without committing.
func (p *Picker) Close() {
	p.preventClose = false
	p.status = Closed
}

// Inject applies a range that arrived from elsewhere on the dashboard. The
// popover does not need to be open.
func (p *Picker) Inject(r models.DateRange) {
	p.selected = r
	p.preventClose = false
	if p.IsOpen() {
		p.status = statusFor(r)
		p.preventClose = p.status == OpenPartialSelection
	}
}

// SetValue follows a change of the externally owned value.
func (p *Picker) SetValue(r models.DateRange) {
	if p.selected.Equal(r) {
		return
	}
	p.selected = r
}

func statusFor(r models.DateRange) Status {
	switch {
	case r.Complete():
		return OpenCompleteSelection
	case r.From != nil:
		return OpenPartialSelection
	default:
		return OpenNoSelection
	}
}

// Pending returns the selection a new pick extends: the partial range while
// one is pending, otherwise nothing.
func (p *Picker) Pending() models.DateRange {
	if p.status == OpenPartialSelection {
		return p.selected
	}
	return models.DateRange{}
}

// Pick runs a calendar pick of day through HandleSelect.
func (p *Picker) Pick(day time.Time) {
	p.HandleSelect(AddToRange(p.Pending(), day))
}

// AddToRange extends the current selection with a picked day. An empty or
// complete selection starts a new range at day; a partial selection is
// completed, swapping the endpoints when day precedes the start.
func AddToRange(current models.DateRange, day time.Time) *models.DateRange {
	picked := models.StartOfDay(day)

	if current.From == nil || current.Complete() {
		return &models.DateRange{From: &picked}
	}

	from := models.StartOfDay(*current.From)
	if picked.Before(from) {
		return &models.DateRange{From: &picked, To: &from}
	}
	return &models.DateRange{From: &from, To: &picked}
}
