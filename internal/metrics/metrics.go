// Package metrics exposes room activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements chat.Recorder on top of Prometheus collectors.
type Metrics struct {
	registry    *prometheus.Registry
	connections prometheus.Gauge
	accepted    prometheus.Counter
	suppressed  *prometheus.CounterVec
	dropped     prometheus.Counter
}

// New registers the chat collectors, plus the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_active_connections",
			Help: "Active websocket connections",
		}),
		accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_accepted_total",
			Help: "Chat messages broadcast to the room",
		}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_suppressed_total",
			Help: "Chat submissions dropped without a broadcast",
		}, []string{"reason"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_deliveries_dropped_total",
			Help: "Outbound frames dropped for slow connections",
		}),
	}

	m.registry.MustRegister(
		m.connections,
		m.accepted,
		m.suppressed,
		m.dropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) MessageAccepted() { m.accepted.Inc() }

func (m *Metrics) MessageSuppressed(reason string) { m.suppressed.WithLabelValues(reason).Inc() }

func (m *Metrics) DeliveryDropped() { m.dropped.Inc() }

func (m *Metrics) ConnectionsChanged(n int) { m.connections.Set(float64(n)) }

// Handler returns an http.Handler for Prometheus scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
