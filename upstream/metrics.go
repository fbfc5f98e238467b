package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Vendor API requests by provider and outcome.",
	}, []string{"provider", "outcome"})
	metricLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dashboard",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Vendor API request latency, including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})
	metricDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "upstream",
		Name:      "items_dropped_total",
		Help:      "Symbols or leagues skipped because their fetch failed.",
	}, []string{"provider"})
)

func recordRequest(provider string, err error, seconds float64) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metricRequests.WithLabelValues(provider, outcome).Inc()
	metricLatency.WithLabelValues(provider).Observe(seconds)
}

func recordDropped(provider string) {
	metricDropped.WithLabelValues(provider).Inc()
}
