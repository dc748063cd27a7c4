package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "aisearch"

// Prometheus holds the search counters shared by every collector it hands out.
type Prometheus struct {
	episodes *prometheus.CounterVec
	playouts *prometheus.CounterVec
	nodes    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheus registers the search metrics on reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		episodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "episodes_total",
			Help:      "Completed search iterations by algorithm",
		}, []string{"algorithm"}),
		playouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "full_playouts_total",
			Help:      "Rollouts that reached a terminal state by algorithm",
		}, []string{"algorithm"}),
		nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "nodes_total",
			Help:      "Tree nodes or book entries created by algorithm",
		}, []string{"algorithm"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Time spent per decision",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"algorithm"}),
	}
	for _, c := range []prometheus.Collector{p.episodes, p.playouts, p.nodes, p.duration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register search metric: %w", err)
		}
	}
	return p, nil
}

// NewCollector returns a Collector recording into both its own counters and
// the registered vectors.
func (p *Prometheus) NewCollector() Collector {
	return &prometheusCollector{collector: &collector{}, metrics: p}
}

type prometheusCollector struct {
	*collector
	metrics *Prometheus
}

func (m *prometheusCollector) AddNode() {
	m.collector.AddNode()
	m.metrics.nodes.WithLabelValues(m.algorithm).Inc()
}

func (m *prometheusCollector) AddFullPlayout() {
	m.collector.AddFullPlayout()
	m.metrics.playouts.WithLabelValues(m.algorithm).Inc()
}

func (m *prometheusCollector) AddEpisode() {
	m.collector.AddEpisode()
	m.metrics.episodes.WithLabelValues(m.algorithm).Inc()
}

func (m *prometheusCollector) Complete() SearchMetric {
	metric := m.collector.Complete()
	m.metrics.duration.WithLabelValues(metric.Algorithm).Observe(metric.Duration.Seconds())
	return metric
}
