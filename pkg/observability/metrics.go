package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the simulation core.
type Metrics struct {
	StepDuration    prometheus.Histogram
	StepsTotal      prometheus.Counter
	SettleTotal     prometheus.Counter
	RebuildTotal    prometheus.Counter
	RebuildDuration prometheus.Histogram
	FramesPublished prometheus.Counter
	ActiveSessions  prometheus.Gauge
	LiveNodes       *prometheus.GaugeVec
	LiveEdges       *prometheus.GaugeVec
}

// NewMetrics registers the simulation instruments on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		StepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linkscope",
			Subsystem: "simulation",
			Name:      "step_duration_seconds",
			Help:      "Wall time of a single physics step.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
		StepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "linkscope",
			Subsystem: "simulation",
			Name:      "steps_total",
			Help:      "Physics steps executed across all sessions.",
		}),
		SettleTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "linkscope",
			Subsystem: "simulation",
			Name:      "settles_total",
			Help:      "Times an engine transitioned to the settled state.",
		}),
		RebuildTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "linkscope",
			Subsystem: "graph",
			Name:      "rebuilds_total",
			Help:      "Graph rebuilds triggered by ingestion or change notifications.",
		}),
		RebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linkscope",
			Subsystem: "graph",
			Name:      "rebuild_duration_seconds",
			Help:      "Wall time of build plus reconciliation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		FramesPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "linkscope",
			Subsystem: "render",
			Name:      "frames_published_total",
			Help:      "Render frames pushed to subscribers.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "linkscope",
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Currently open investigation sessions.",
		}),
		LiveNodes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "linkscope",
			Subsystem: "graph",
			Name:      "nodes",
			Help:      "Nodes in the live snapshot.",
		}, []string{"investigation"}),
		LiveEdges: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "linkscope",
			Subsystem: "graph",
			Name:      "edges",
			Help:      "Edges in the live snapshot.",
		}, []string{"investigation"}),
	}
}

// ObserveGraphSize records the post-rebuild node and edge counts.
func (m *Metrics) ObserveGraphSize(investigationID string, nodes, edges int) {
	m.LiveNodes.WithLabelValues(investigationID).Set(float64(nodes))
	m.LiveEdges.WithLabelValues(investigationID).Set(float64(edges))
}

// ForgetSession drops the per-investigation series of a closed session.
func (m *Metrics) ForgetSession(investigationID string) {
	m.LiveNodes.DeleteLabelValues(investigationID)
	m.LiveEdges.DeleteLabelValues(investigationID)
}
