package scheduler

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/offlinemark/scheduler/pkg/smt"
)

// Defaults applied by New.
const (
	DefaultHostsPerEvent = 3
	DefaultMaxHosts      = 32

	// MaxHostsLimit is the largest supported host capacity: one event's
	// assignment must fit in a uint64.
	MaxHostsLimit = 64
)

type config struct {
	hostsPerEvent int
	maxHosts      int
	solver        *smt.Solver
	backend       string
	timeout       time.Duration
	log           logrus.FieldLogger
	metrics       MetricsCollector
}

// Option configures a Scheduler.
type Option func(*config)

// WithHostsPerEvent sets how many hosts every event needs. Zero is valid.
func WithHostsPerEvent(n int) Option {
	return func(c *config) {
		c.hostsPerEvent = n
	}
}

// WithMaxHosts sets the host capacity, the width of every assignment
// variable. It must be in [1, MaxHostsLimit].
func WithMaxHosts(n int) Option {
	return func(c *config) {
		c.maxHosts = n
	}
}

// WithSolver makes the scheduler use s instead of creating its own. The
// scheduler becomes the owner of s; WithBackend and WithTimeout are
// ignored.
func WithSolver(s *smt.Solver) Option {
	return func(c *config) {
		c.solver = s
	}
}

// WithBackend selects the engine backend by name, see smt.BackendByName.
func WithBackend(name string) Option {
	return func(c *config) {
		c.backend = name
	}
}

// WithTimeout bounds each engine check. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithLogger sets the logger for registration and solve events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithMetrics sets the metrics collector. The default discards metrics.
func WithMetrics(m MetricsCollector) Option {
	return func(c *config) {
		c.metrics = m
	}
}
