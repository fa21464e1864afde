// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dashboard

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/danielhkuo/claim-ledger/catalog"
	"github.com/danielhkuo/claim-ledger/ledger"
	"github.com/danielhkuo/claim-ledger/models"
)

// unassigned labels rows without a handler in the handler buckets
const unassigned = "SIN ASIGNAR"

// Summarize computes the dashboard figures over the latest status of each
// claim. rows may be the full ledger.
func Summarize(rows []models.ClaimRecord, cat catalog.Catalog) models.DashboardSummary {
	latest := ledger.LatestPerClaim(rows)

	sum := models.DashboardSummary{
		TotalClaims: len(latest),
		ByStatus:    []models.Bucket{},
		ByHandler:   []models.Bucket{},
	}
	if len(latest) == 0 {
		return sum
	}

	byStatus := map[string]int{}
	byHandler := map[string]int{}
	var daysTotal, daysCount int

	for _, r := range latest {
		byStatus[r.Status]++
		handler := strings.TrimSpace(r.HandlerName)
		if handler == "" {
			handler = unassigned
		}
		byHandler[handler]++

		if !cat.IsClosed(r.Status) {
			continue
		}
		sum.ClosedClaims++

		created, okC := ledger.ParseDate(r.CreatedOn)
		closed, okS := ledger.ParseDate(r.StatusAt)
		if okC && okS {
			daysTotal += ledger.BusinessDays(created, closed)
			daysCount++
		}
	}

	sum.ClosedPercent = sum.ClosedClaims * 100 / sum.TotalClaims
	if daysCount > 0 {
		// half away from zero, unlike the half-to-even of the old reports
		sum.AvgBusinessDays = math.Round(float64(daysTotal)/float64(daysCount)*10) / 10
	}
	sum.ByStatus = buckets(byStatus)
	sum.ByHandler = buckets(byHandler)
	return sum
}

// ForHandler builds the personal view of one handler: the latest row of
// each claim assigned to them and their counts by status
func ForHandler(rows []models.ClaimRecord, handler string) models.HandlerDashboard {
	latest := ledger.LatestPerClaim(rows)

	view := models.HandlerDashboard{
		HandlerName: handler,
		ByStatus:    []models.Bucket{},
		Rows:        []models.ClaimRecord{},
	}
	byStatus := map[string]int{}
	for _, r := range latest {
		if r.HandlerName != handler {
			continue
		}
		view.Rows = append(view.Rows, r)
		byStatus[r.Status]++
	}
	view.Total = len(view.Rows)
	view.ByStatus = buckets(byStatus)
	return view
}

// buckets sorts counts by total descending, then label
func buckets(counts map[string]int) []models.Bucket {
	out := make([]models.Bucket, 0, len(counts))
	for label, n := range counts {
		out = append(out, models.Bucket{Label: label, Total: n})
	}
	slices.SortFunc(out, func(a, b models.Bucket) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
