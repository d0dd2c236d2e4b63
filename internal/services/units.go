package services

import "fmt"

// Time units accepted by the rule form for period and display duration.
const (
	UnitMinutes = "Minutes"
	UnitHours   = "Hours"
	UnitDays    = "Days"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	minutesPerHour   = 60
	minutesPerDay    = 1440
)

// PeriodToSeconds converts a (value, unit) pair from the rule form into
// the stored period in seconds. Values below 1 are rejected.
func PeriodToSeconds(value int, unit string) (int, error) {
	if value < 1 {
		return 0, fmt.Errorf("period value must be at least 1, got %d", value)
	}
	switch unit {
	case UnitMinutes:
		return value * secondsPerMinute, nil
	case UnitHours:
		return value * secondsPerHour, nil
	case UnitDays:
		return value * secondsPerDay, nil
	default:
		return 0, fmt.Errorf("unknown period unit %q", unit)
	}
}

// DurationToMinutes converts a (value, unit) pair from the rule form into
// the stored display duration in minutes. Values below 1 are rejected.
func DurationToMinutes(value int, unit string) (int, error) {
	if value < 1 {
		return 0, fmt.Errorf("duration value must be at least 1, got %d", value)
	}
	switch unit {
	case UnitMinutes:
		return value, nil
	case UnitHours:
		return value * minutesPerHour, nil
	case UnitDays:
		return value * minutesPerDay, nil
	default:
		return 0, fmt.Errorf("unknown duration unit %q", unit)
	}
}

// PeriodFromSeconds reverse-derives the (value, unit) pair from a stored
// period by testing divisibility by day, then hour, falling back to
// minutes. It exactly inverts PeriodToSeconds for canonical pairs.
func PeriodFromSeconds(seconds int) (int, string) {
	if seconds >= secondsPerDay && seconds%secondsPerDay == 0 {
		return seconds / secondsPerDay, UnitDays
	}
	if seconds >= secondsPerHour && seconds%secondsPerHour == 0 {
		return seconds / secondsPerHour, UnitHours
	}
	if seconds >= secondsPerMinute {
		return seconds / secondsPerMinute, UnitMinutes
	}
	return 1, UnitMinutes
}

// DurationFromMinutes reverse-derives the (value, unit) pair from a stored
// display duration, mirroring PeriodFromSeconds.
func DurationFromMinutes(minutes int) (int, string) {
	if minutes >= minutesPerDay && minutes%minutesPerDay == 0 {
		return minutes / minutesPerDay, UnitDays
	}
	if minutes >= minutesPerHour && minutes%minutesPerHour == 0 {
		return minutes / minutesPerHour, UnitHours
	}
	if minutes >= 1 {
		return minutes, UnitMinutes
	}
	return 1, UnitMinutes
}
