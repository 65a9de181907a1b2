// Package schedule derives concrete operating windows from a locale's stored
// wall-clock opening hours.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/reservalocales/api/internal/interval"
)

// ErrMalformedHours marks operating hours that cannot be parsed. This is a
// server-side configuration fault, not a client input error.
var ErrMalformedHours = errors.New("malformed operating hours")

// WindowFor anchors a locale's "HH:MM" open/close pair on the given calendar
// date. A close time earlier than or equal to the open time is an overnight
// venue: the window spans into the next calendar date as a single range.
func WindowFor(openTime, closeTime string, day time.Time) (interval.Interval, error) {
	openH, openM, err := parseClock(openTime)
	if err != nil {
		return interval.Interval{}, err
	}
	closeH, closeM, err := parseClock(closeTime)
	if err != nil {
		return interval.Interval{}, err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), openH, openM, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), closeH, closeM, 0, 0, day.Location())
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}
	return interval.Interval{Start: start, End: end}, nil
}

func parseClock(s string) (hour, min int, err error) {
	clock, parseErr := time.Parse("15:04", s)
	if parseErr != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedHours, s)
	}
	return clock.Hour(), clock.Minute(), nil
}
