// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Per-driver prometheus collectors.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "hioload_rpc"
	metricsSubsystem = "driver"
)

// Metrics groups the counters a driver updates while relaying.
type Metrics struct {
	BytesReceived prometheus.Counter
	BytesSent     prometheus.Counter
	StderrBytes   prometheus.Counter
	ChunksQueued  prometheus.Counter
	PendingChunks prometheus.Gauge
	ErrorsRelayed prometheus.Counter
	Signals       prometheus.Counter
	Callbacks     prometheus.Counter

	registerer prometheus.Registerer
	collectors []prometheus.Collector
}

// NewMetrics creates the collectors with constLabels and registers them on
// reg. A nil reg gets a private registry, so several drivers can coexist.
func NewMetrics(reg prometheus.Registerer, constLabels prometheus.Labels) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	m := &Metrics{
		BytesReceived: counter("bytes_received_total", "Bytes read from the primary input channel."),
		BytesSent:     counter("bytes_sent_total", "Bytes written to the transport."),
		StderrBytes:   counter("stderr_bytes_total", "Bytes read from a child's stderr."),
		ChunksQueued:  counter("chunks_queued_total", "Chunks buffered because no data consumer was bound."),
		PendingChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   metricsNamespace,
			Subsystem:   metricsSubsystem,
			Name:        "pending_chunks",
			Help:        "Chunks currently waiting in the pending byte queue.",
			ConstLabels: constLabels,
		}),
		ErrorsRelayed: counter("errors_relayed_total", "Termination reasons relayed to the error consumer."),
		Signals:       counter("signals_total", "OS signals delivered into the loop."),
		Callbacks:     counter("callbacks_total", "Callbacks scheduled from other goroutines."),
		registerer:    reg,
	}
	m.collectors = []prometheus.Collector{
		m.BytesReceived, m.BytesSent, m.StderrBytes, m.ChunksQueued,
		m.PendingChunks, m.ErrorsRelayed, m.Signals, m.Callbacks,
	}
	for i, c := range m.collectors {
		if err := reg.Register(c); err != nil {
			for _, done := range m.collectors[:i] {
				reg.Unregister(done)
			}
			return nil, err
		}
	}
	return m, nil
}

// Unregister removes the collectors from the registerer they were added to.
func (m *Metrics) Unregister() {
	for _, c := range m.collectors {
		m.registerer.Unregister(c)
	}
}
