// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector of the service
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

var (
	httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "claimledger_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "code"})

	httpDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "claimledger_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	claimEvents = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "claimledger_claim_events_total",
		Help: "Ledger rows written, by kind (registered, status, edited).",
	}, []string{"kind"})

	uploadedBytes = factory.NewCounter(prometheus.CounterOpts{
		Name: "claimledger_uploaded_bytes_total",
		Help: "Bytes of attachments stored.",
	})

	dashboardCache = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "claimledger_dashboard_cache_total",
		Help: "Dashboard summary reads by result (hit, miss).",
	}, []string{"result"})
)

// Claim event kinds
const (
	EventRegistered = "registered"
	EventStatus     = "status"
	EventEdited     = "edited"
)

// ObserveRequest records one served HTTP request. route is the mux pattern,
// never the raw path, to keep label cardinality bounded.
func ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func ClaimEvent(kind string) {
	claimEvents.WithLabelValues(kind).Inc()
}

func UploadedBytes(n int64) {
	uploadedBytes.Add(float64(n))
}

func DashboardRead(cached bool) {
	if cached {
		dashboardCache.WithLabelValues("hit").Inc()
		return
	}
	dashboardCache.WithLabelValues("miss").Inc()
}

// Handler exposes Registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
