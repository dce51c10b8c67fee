package schedule

import (
	"fmt"
	"time"
)

// ClockLayout is the HH:MM 24-hour wire format for times of day.
const ClockLayout = "15:04"

const minutesPerDay = 24 * 60

// ParseClock returns the number of minutes since midnight for an HH:MM value.
func ParseClock(value string) (int, error) {
	t, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q, use HH:MM", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock formats minutes since midnight as HH:MM. Values past midnight
// wrap around.
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes returns clock + minutes as HH:MM.
func AddMinutes(clock string, minutes int) (string, error) {
	m, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	return FormatClock(m + minutes), nil
}

// At combines a calendar date and an HH:MM time of day in loc.
func At(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, loc), nil
}

// CivilDate strips the time of day, keeping the calendar day as written.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
