package poller

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricCycles = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dashboard",
	Subsystem: "poller",
	Name:      "cycles_total",
	Help:      "Fetch cycles by poller and outcome (ok, error, discarded, skipped).",
}, []string{"poller", "outcome"})
