package pathfinding

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Search results recorded in the searches_total label.
const (
	resultFound    = "found"
	resultPartial  = "partial"
	resultNotFound = "not_found"
)

// Metrics holds the pathfinder's Prometheus collectors. They are only
// exported when a registerer is supplied through WithRegistry.
type Metrics struct {
	Searches               *prometheus.CounterVec
	FastPaths              prometheus.Counter
	Revalidations          prometheus.Counter
	RevalidationsThrottled prometheus.Counter
	GraphBuildSeconds      prometheus.Histogram
	GraphNodes             prometheus.Gauge
	GraphLinks             prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "navigation",
			Name:      "searches_total",
			Help:      "General graph searches by result.",
		}, []string{"result"}),
		FastPaths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "navigation",
			Name:      "fast_paths_total",
			Help:      "Requests answered by the same-surface shortcut without a search.",
		}),
		Revalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "navigation",
			Name:      "revalidations_total",
			Help:      "Stale paths that were replanned.",
		}),
		RevalidationsThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "navigation",
			Name:      "revalidations_throttled_total",
			Help:      "Replans skipped because the path was replanned too recently.",
		}),
		GraphBuildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "navigation",
			Name:      "graph_build_seconds",
			Help:      "Time spent building a platform graph.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		GraphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "navigation",
			Name:      "graph_nodes",
			Help:      "Nodes in the active graph.",
		}),
		GraphLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "navigation",
			Name:      "graph_links",
			Help:      "Links in the active graph.",
		}),
	}
}

func (m *Metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.Searches, m.FastPaths, m.Revalidations, m.RevalidationsThrottled,
		m.GraphBuildSeconds, m.GraphNodes, m.GraphLinks,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
