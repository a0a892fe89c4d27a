package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatsight_http_requests_total",
		Help: "HTTP requests by method, route template and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chatsight_http_request_duration_seconds",
		Help:    "HTTP request latency by route template.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	RelayPeers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatsight_relay_peers",
		Help: "Currently connected relay peers.",
	})

	RelayEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatsight_relay_events_total",
		Help: "Relay events by name (connect, disconnect, send-message, dropped).",
	}, []string{"event"})

	InsightRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chatsight_insight_requests_total",
		Help: "Insight requests by outcome.",
	}, []string{"outcome"})
)

// Insight outcomes.
const (
	OutcomeCached      = "cached"
	OutcomeComputed    = "computed"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
	OutcomeStoreFailed = "store_failed"
)
