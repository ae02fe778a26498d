package models

import "time"

// RangePreset is a quick-select range anchored at the end of the data.
type RangePreset int

const (
	// Preset7Days selects the last 7 days of data.
	Preset7Days RangePreset = iota
	// Preset30Days selects the last 30 days of data.
	Preset30Days
	// Preset90Days selects the last 90 days of data.
	Preset90Days
	// PresetAll selects the full extent of the data.
	PresetAll
)

// String returns the display name for a preset.
func (p RangePreset) String() string {
	switch p {
	case Preset7Days:
		return "7 Days"
	case Preset30Days:
		return "30 Days"
	case Preset90Days:
		return "90 Days"
	case PresetAll:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the preset (0 = unlimited).
func (p RangePreset) Days() int {
	switch p {
	case Preset7Days:
		return 7
	case Preset30Days:
		return 30
	case Preset90Days:
		return 90
	default:
		return 0
	}
}

// Next cycles to the next preset.
func (p RangePreset) Next() RangePreset {
	return (p + 1) % 4
}

// Within resolves the preset against the data extent [start, end].
func (p RangePreset) Within(start, end time.Time) DateRange {
	from := StartOfDay(start)
	to := StartOfDay(end)
	if days := p.Days(); days > 0 {
		if candidate := to.AddDate(0, 0, -(days - 1)); candidate.After(from) {
			from = candidate
		}
	}
	return DateRange{From: &from, To: &to}
}
