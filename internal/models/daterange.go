// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for daily series points.
const DateLayout = "2006-01-02"

// DateRange is an inclusive calendar range. Either endpoint may be nil while
// a selection is still in progress.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// NewDateRange builds a complete range from two instants.
func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: &from, To: &to}
}

// Complete reports whether both endpoints are set.
func (r DateRange) Complete() bool {
	return r.From != nil && r.To != nil
}

// Empty reports whether neither endpoint is set.
func (r DateRange) Empty() bool {
	return r.From == nil && r.To == nil
}

// Normalized strips the time of day from both endpoints and orders them so
// that From <= To. Missing endpoints stay nil.
func (r DateRange) Normalized() DateRange {
	var out DateRange
	if r.From != nil {
		f := StartOfDay(*r.From)
		out.From = &f
	}
	if r.To != nil {
		t := StartOfDay(*r.To)
		out.To = &t
	}
	if out.Complete() && out.To.Before(*out.From) {
		out.From, out.To = out.To, out.From
	}
	return out
}

// Equal compares two ranges by instant.
func (r DateRange) Equal(o DateRange) bool {
	return timePtrEqual(r.From, o.From) && timePtrEqual(r.To, o.To)
}

// Days returns the number of calendar days covered, or 0 when incomplete.
func (r DateRange) Days() int {
	if !r.Complete() {
		return 0
	}
	n := r.Normalized()
	days := 0
	for d := *n.From; !d.After(*n.To); d = d.AddDate(0, 0, 1) {
		days++
	}
	return days
}

// String renders the range the way the picker trigger shows it.
func (r DateRange) String() string {
	switch {
	case r.Complete():
		return fmt.Sprintf("%s - %s", r.From.Format("Jan 02, 2006"), r.To.Format("Jan 02, 2006"))
	case r.From != nil:
		return r.From.Format("Jan 02, 2006") + " - ..."
	default:
		return "Pick a date range"
	}
}

// StartOfDay returns local midnight of t's calendar date.
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// EndOfDay returns the last millisecond of t's local calendar date.
func EndOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.Local)
}

// ParseDate parses a YYYY-MM-DD string as local midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
