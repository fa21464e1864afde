// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/danielhkuo/claim-ledger/models"
)

// Layouts accepted when reading status times. Rows written by the service
// always use models.TimestampLayout; the others appear in imported sheets.
var timestampLayouts = []string{
	models.TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	models.DateLayout,
}

// ParseStatusTime parses a status timestamp as a wall-clock time.
// ok is false for empty or malformed values.
func ParseStatusTime(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses a date column, accepting a full timestamp as well
func ParseDate(s string) (time.Time, bool) {
	t, ok := ParseStatusTime(s)
	if !ok {
		return time.Time{}, false
	}
	return civilDate(t), true
}

// compareEvents orders two rows of the same claim by status time, then by
// row ID. Rows whose status time cannot be parsed sort before every row
// that can, so a malformed legacy value never becomes the latest event.
// The old reports sorted them last instead.
func compareEvents(a, b models.ClaimRecord) int {
	ta, okA := ParseStatusTime(a.StatusAt)
	tb, okB := ParseStatusTime(b.StatusAt)
	switch {
	case okA && !okB:
		return 1
	case !okA && okB:
		return -1
	case okA && okB:
		if c := ta.Compare(tb); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortHistory sorts rows in place by (claim number, status time, ID)
func SortHistory(rows []models.ClaimRecord) {
	slices.SortStableFunc(rows, func(a, b models.ClaimRecord) int {
		if c := cmp.Compare(claimKey(a.ClaimNumber), claimKey(b.ClaimNumber)); c != 0 {
			return c
		}
		return compareEvents(a, b)
	})
}

// Latest returns the most recent event among rows that all belong to one claim
func Latest(rows []models.ClaimRecord) (models.ClaimRecord, bool) {
	if len(rows) == 0 {
		return models.ClaimRecord{}, false
	}
	return slices.MaxFunc(rows, compareEvents), true
}

// LatestPerClaim reduces the ledger to one row per claim number: the row
// with the greatest status time. The result is ordered by claim number.
// Claim numbers are grouped case-insensitively.
func LatestPerClaim(rows []models.ClaimRecord) []models.ClaimRecord {
	latest := make(map[string]models.ClaimRecord, len(rows))
	for _, r := range rows {
		key := claimKey(r.ClaimNumber)
		if cur, ok := latest[key]; !ok || compareEvents(r, cur) > 0 {
			latest[key] = r
		}
	}

	out := make([]models.ClaimRecord, 0, len(latest))
	for _, r := range latest {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b models.ClaimRecord) int {
		return cmp.Compare(claimKey(a.ClaimNumber), claimKey(b.ClaimNumber))
	})
	return out
}

// CountClaims returns the number of distinct claim numbers
func CountClaims(rows []models.ClaimRecord) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		seen[claimKey(r.ClaimNumber)] = struct{}{}
	}
	return len(seen)
}

// Matches reports whether any textual column contains q, ignoring case
func Matches(r models.ClaimRecord, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, v := range r.TextValues() {
		if strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// Filter keeps the rows matching q
func Filter(rows []models.ClaimRecord, q string) []models.ClaimRecord {
	out := make([]models.ClaimRecord, 0, len(rows))
	for _, r := range rows {
		if Matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

// NextStatusTime returns the status time for a new event. now is expected
// in the service's time zone. The result is strictly after prev when prev
// parses, which keeps a claim's history increasing even if clocks drift.
func NextStatusTime(prev string, now time.Time) string {
	wall := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
	if p, ok := ParseStatusTime(prev); ok && !wall.After(p) {
		wall = p.Truncate(time.Second).Add(time.Second)
	}
	return wall.Format(models.TimestampLayout)
}

func claimKey(n string) string {
	return strings.ToLower(strings.TrimSpace(n))
}
