// Package observability bundles Prometheus metrics for the embedding engine
// and the substrate's resource state.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Session outcome label values.
const (
	OutcomeComplete = "complete"
	OutcomePartial  = "partial"
	OutcomeAborted  = "aborted"
)

// Collector bundles the Prometheus metrics of the embedding surface and
// provides a handler to expose them over HTTP.
type Collector struct {
	gatherer prometheus.Gatherer

	Sessions      *prometheus.CounterVec
	NodesMapped   prometheus.Counter
	NodesUnmapped prometheus.Counter
	StepDuration  prometheus.Histogram

	SubstrateNodes        prometheus.Gauge
	SubstrateLinks        prometheus.Gauge
	SubstrateCPUAvailable prometheus.Gauge
}

// NewCollector registers the embedding metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		Sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "embedding_sessions_total",
			Help: "Total number of embedding sessions, labeled by outcome.",
		}, []string{"outcome"}),
		NodesMapped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "virtual_nodes_mapped_total",
			Help: "Total number of virtual nodes committed to a physical node.",
		}),
		NodesUnmapped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "virtual_nodes_unmapped_total",
			Help: "Total number of virtual nodes left unmapped for lack of eligible capacity.",
		}),
		StepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mapping_step_duration_seconds",
			Help:    "Latency of one score/filter/select/commit mapping step.",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SubstrateNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "substrate_nodes",
			Help: "Number of physical nodes in the substrate.",
		}),
		SubstrateLinks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "substrate_links",
			Help: "Number of physical links in the substrate.",
		}),
		SubstrateCPUAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "substrate_cpu_available",
			Help: "Total spare CPU capacity across all physical nodes.",
		}),
	}

	collectors := []prometheus.Collector{
		c.Sessions, c.NodesMapped, c.NodesUnmapped, c.StepDuration,
		c.SubstrateNodes, c.SubstrateLinks, c.SubstrateCPUAvailable,
	}
	for _, col := range collectors {
		if err := reg.Register(col); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return c, nil
}

// Handler returns an HTTP handler that serves the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
