package scheduler

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Solve outcomes reported to MetricsCollector.ObserveSolve.
const (
	OutcomeScheduled     = "scheduled"
	OutcomeUnsatisfiable = "unsatisfiable"
	OutcomeError         = "error"
)

// MetricsCollector receives scheduler metrics.
//
// Implementations must be safe for concurrent use: schedulers running on
// different goroutines may share one collector.
type MetricsCollector interface {
	// ObserveSolve records one Schedule call and its duration.
	ObserveSolve(outcome string, d time.Duration)
	// SetHosts records the number of registered hosts.
	SetHosts(n int)
}

// NopMetrics discards all metrics.
type NopMetrics struct{}

var _ MetricsCollector = NopMetrics{}

// ObserveSolve discards the observation.
func (NopMetrics) ObserveSolve(_ string, _ time.Duration) {}

// SetHosts discards the host count.
func (NopMetrics) SetHosts(_ int) {}

// PrometheusMetrics implements MetricsCollector with Prometheus
// collectors. They are registered on first use.
type PrometheusMetrics struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	solves   *prometheus.CounterVec
	duration prometheus.Histogram
	hosts    prometheus.Gauge
}

var _ MetricsCollector = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates a collector registering on reg, or on
// prometheus.DefaultRegisterer when reg is nil. The namespace defaults to
// "hostsched".
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "hostsched"
	}
	return &PrometheusMetrics{reg: reg, namespace: namespace}
}

func (p *PrometheusMetrics) ensureRegistered() {
	p.once.Do(func() {
		p.solves = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "solves_total",
			Help:      "Total schedule requests by outcome (scheduled, unsatisfiable, error).",
		}, []string{"outcome"})
		p.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "solve_duration_seconds",
			Help:      "Time to encode and solve one schedule request in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms .. ~8s
		})
		p.hosts = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      "registered_hosts",
			Help:      "Number of hosts registered with the most recently updated scheduler.",
		})
		p.solves = registerOrExisting(p.reg, p.solves).(*prometheus.CounterVec)
		p.duration = registerOrExisting(p.reg, p.duration).(prometheus.Histogram)
		p.hosts = registerOrExisting(p.reg, p.hosts).(prometheus.Gauge)
	})
}

// registerOrExisting registers c, or returns the equivalent collector a
// previous PrometheusMetrics registered on the same registry.
func registerOrExisting(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector
		}
	}
	return c
}

// ObserveSolve implements MetricsCollector.
func (p *PrometheusMetrics) ObserveSolve(outcome string, d time.Duration) {
	p.ensureRegistered()
	p.solves.WithLabelValues(outcome).Inc()
	p.duration.Observe(d.Seconds())
}

// SetHosts implements MetricsCollector.
func (p *PrometheusMetrics) SetHosts(n int) {
	p.ensureRegistered()
	p.hosts.Set(float64(n))
}
