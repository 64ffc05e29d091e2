// Package timeutil provides utility functions for formatting and parsing
// times shown in the terminal.
package timeutil

import (
	"fmt"
	"math"
	"strings"
	"time"

	dps "github.com/markusmobius/go-dateparser"
)

const minutesInAnHour = 60

type Period string

const (
	PeriodAllTime   Period = "all-time"
	PeriodToday     Period = "today"
	PeriodYesterday Period = "yesterday"
	Period7Days     Period = "7days"
	Period14Days    Period = "14days"
	Period30Days    Period = "30days"
)

// Range maps each period to the offset in days of its first day.
var Range = map[Period]int{
	PeriodToday:     0,
	PeriodYesterday: -1,
	Period7Days:     -6,
	Period14Days:    -13,
	Period30Days:    -29,
}

// Round rounds a time value in seconds, minutes, or hours to the nearest integer.
func Round(t float64) int {
	return int(math.Round(t))
}

// MinsToHoursAndMins expresses a minutes value in hours and mins.
func MinsToHoursAndMins(val int) (hrs, mins int) {
	hrs = val / minutesInAnHour
	mins = val % minutesInAnHour

	return
}

// FormatClock renders elapsed seconds as hh:mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf(
		"%02d:%02d:%02d",
		seconds/3600,
		seconds/60%60,
		seconds%60,
	)
}

// FormatHours renders a duration in hours as "7h 12m".
func FormatHours(h float64) string {
	hrs, mins := MinsToHoursAndMins(Round(h * minutesInAnHour))

	if hrs == 0 {
		return fmt.Sprintf("%dm", mins)
	}

	return fmt.Sprintf("%dh %dm", hrs, mins)
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseSince turns a period name ("7days") or a natural language date
// ("3 days ago", "last monday", "2026-09-01") into the earliest matching
// time relative to now. The zero time is returned for all-time and the
// empty string.
func ParseSince(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || Period(s) == PeriodAllTime {
		return time.Time{}, nil
	}

	if offset, ok := Range[Period(s)]; ok {
		return RoundToStart(now).AddDate(0, 0, offset), nil
	}

	cfg := &dps.Configuration{
		CurrentTime:         now,
		PreferredDateSource: dps.Past,
	}

	dt, err := dps.Parse(cfg, s)
	if err != nil {
		return time.Time{}, errParseDate.Fmt(s).Wrap(err)
	}

	if dt.Time.IsZero() {
		return time.Time{}, errParseDate.Fmt(s)
	}

	return dt.Time, nil
}
