package stats

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics mirrors Recorder measurements into a private Prometheus registry.
type Metrics struct {
	registry       *prometheus.Registry
	handlerSeconds *prometheus.CounterVec
	handlerCalls   *prometheus.CounterVec
	structureBytes *prometheus.GaugeVec
	tuples         prometheus.Counter
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		handlerSeconds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "naiveq22_handler_seconds_total",
			Help: "Cumulative time spent in each trigger handler",
		}, []string{"handler"}),
		handlerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "naiveq22_handler_invocations_total",
			Help: "Number of trigger handler invocations",
		}, []string{"handler"}),
		structureBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "naiveq22_structure_bytes",
			Help: "Estimated byte footprint of each relation store and the view",
		}, []string{"structure"}),
		tuples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "naiveq22_tuples_total",
			Help: "Number of events processed",
		}),
	}
	m.registry.MustRegister(m.handlerSeconds, m.handlerCalls, m.structureBytes, m.tuples)
	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// AddTuples counts processed events.
func (m *Metrics) AddTuples(n int) {
	m.tuples.Add(float64(n))
}

// WriteTextfile exports every metric in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}

func (m *Metrics) observeHandler(name string, d time.Duration) {
	m.handlerSeconds.WithLabelValues(name).Add(d.Seconds())
	m.handlerCalls.WithLabelValues(name).Inc()
}

func (m *Metrics) observeStructure(fp Footprint) {
	m.structureBytes.WithLabelValues(fp.Name).Set(float64(fp.Bytes()))
}
