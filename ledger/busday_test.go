// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBusinessDays(t *testing.T) {
	// 2025-01-06 is a Monday
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"same day", "2025-01-06", "2025-01-06", 0},
		{"monday to tuesday", "2025-01-06", "2025-01-07", 1},
		{"monday to next monday", "2025-01-06", "2025-01-13", 5},
		{"friday to monday", "2025-01-10", "2025-01-13", 1},
		{"saturday to monday", "2025-01-11", "2025-01-13", 0},
		{"saturday to sunday", "2025-01-11", "2025-01-12", 0},
		{"wednesday to wednesday two weeks", "2025-01-08", "2025-01-22", 10},
		{"thursday to tuesday", "2025-01-09", "2025-01-14", 3},
		{"reversed monday to friday", "2025-01-10", "2025-01-06", -4},
		{"reversed sunday to saturday", "2025-01-12", "2025-01-11", 0},
		{"across month", "2025-01-30", "2025-02-04", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BusinessDays(date(tt.start), date(tt.end)))
		})
	}
}

func TestBusinessDays_IgnoresClock(t *testing.T) {
	start := time.Date(2025, 1, 6, 23, 59, 0, 0, time.UTC)
	end := time.Date(2025, 1, 7, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, BusinessDays(start, end))
}
