// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import "time"

// BusinessDays counts Monday-to-Friday days in [start, end). Only the
// calendar dates of start and end are used. When end is before start the
// count covers (end, start] and is negative.
func BusinessDays(start, end time.Time) int {
	s, e := civilDate(start), civilDate(end)
	if e.Before(s) {
		return -BusinessDays(e.AddDate(0, 0, 1), s.AddDate(0, 0, 1))
	}

	days := int(e.Sub(s).Hours() / 24)
	count := (days / 7) * 5

	// walk the partial week
	wd := s.Weekday()
	for i := 0; i < days%7; i++ {
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
		wd = (wd + 1) % 7
	}
	return count
}

// civilDate drops the clock and zone, keeping the calendar date
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
