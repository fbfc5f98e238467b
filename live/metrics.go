package live

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricMounted = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dashboard",
		Subsystem: "board",
		Name:      "mounted_widgets",
		Help:      "Widgets currently mounted.",
	})
	metricDroppedUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "board",
		Name:      "dropped_updates_total",
		Help:      "Live updates dropped because a subscriber fell behind.",
	})
)
