// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dashboard

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/danielhkuo/claim-ledger/catalog"
	"github.com/danielhkuo/claim-ledger/models"
)

// Source loads the ledger rows the summary is computed from
type Source interface {
	AllRecords(ctx context.Context) ([]models.ClaimRecord, error)
}

// Service serves the summary, recomputing it at most once per cooldown
type Service struct {
	src      Source
	cache    Cache
	cat      catalog.Catalog
	cooldown time.Duration
	now      func() time.Time

	// bumped by Invalidate; a summary computed across a bump is not cached
	generation atomic.Uint64
}

func NewService(src Source, cache Cache, cat catalog.Catalog, cooldown time.Duration) *Service {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Service{src: src, cache: cache, cat: cat, cooldown: cooldown, now: time.Now}
}

// Summary returns the cached summary when still fresh. Cache failures are
// logged and the summary is recomputed.
func (s *Service) Summary(ctx context.Context) (models.DashboardSummary, error) {
	if s.cooldown > 0 {
		sum, ok, err := s.cache.Get(ctx)
		if err != nil {
			slog.Warn("dashboard cache unavailable", "error", err)
		} else if ok {
			sum.Cached = true
			return sum, nil
		}
	}

	gen := s.generation.Load()
	rows, err := s.src.AllRecords(ctx)
	if err != nil {
		return models.DashboardSummary{}, err
	}
	sum := Summarize(rows, s.cat)
	sum.GeneratedAt = s.now().UTC().Truncate(time.Second)

	if s.cooldown > 0 && s.generation.Load() == gen {
		if err := s.cache.Set(ctx, sum, s.cooldown); err != nil {
			slog.Warn("failed to cache dashboard summary", "error", err)
		}
	}
	return sum, nil
}

// Invalidate drops the cached summary after a write
func (s *Service) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate dashboard cache", "error", err)
	}
}
