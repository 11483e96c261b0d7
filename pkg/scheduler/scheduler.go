// Package scheduler assigns hosts to the events of a recurring series.
//
// A Scheduler is created for a fixed number of events. Hosts are
// registered by name with the events they can attend and an optional cap
// on how many events they take. Schedule encodes the current registry as
// a bit-vector constraint problem, solves it with package smt and decodes
// the model into host names per event.
//
// Every Schedule call rebuilds the constraint set from the registry inside
// a fresh engine scope and discards that scope afterwards, so updates made
// with Register between calls are always reflected and earlier
// constraints never leak into later calls.
//
// When several schedules satisfy the constraints, Schedule returns
// whichever one the engine finds first. There is no fairness or
// preference order among valid schedules.
//
// A Scheduler is not safe for concurrent use; callers sharing one must
// serialize every call.
package scheduler

import (
	"context"
	"io"
	"math/bits"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/offlinemark/scheduler/pkg/smt"
)

// Scheduler owns a host registry and a constraint engine.
type Scheduler struct {
	numEvents     int
	hostsPerEvent int
	maxHosts      int

	reg       *registry
	solver    *smt.Solver
	enc       *encoder
	conflicts []string

	log     logrus.FieldLogger
	metrics MetricsCollector
}

// New creates a scheduler for numEvents events. It fails with
// ErrInvalidConfig when numEvents is not positive, hosts per event is
// negative or max hosts is outside [1, MaxHostsLimit], and with
// smt.ErrUnknownBackend for an unrecognised WithBackend name.
func New(numEvents int, opts ...Option) (*Scheduler, error) {
	cfg := config{
		hostsPerEvent: DefaultHostsPerEvent,
		maxHosts:      DefaultMaxHosts,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch {
	case numEvents <= 0:
		return nil, errors.Wrapf(ErrInvalidConfig, "number of events must be > 0, got %d", numEvents)
	case cfg.hostsPerEvent < 0:
		return nil, errors.Wrapf(ErrInvalidConfig, "hosts per event must be >= 0, got %d", cfg.hostsPerEvent)
	case cfg.maxHosts < 1 || cfg.maxHosts > MaxHostsLimit:
		return nil, errors.Wrapf(ErrInvalidConfig, "max hosts must be in [1, %d], got %d", MaxHostsLimit, cfg.maxHosts)
	}

	if cfg.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.log = l
	}
	if cfg.metrics == nil {
		cfg.metrics = NopMetrics{}
	}
	if cfg.solver == nil {
		b, err := smt.BackendByName(cfg.backend)
		if err != nil {
			return nil, err
		}
		cfg.solver = smt.NewSolver(
			smt.WithBackend(b),
			smt.WithTimeout(cfg.timeout),
			smt.WithLogger(cfg.log),
		)
	}

	return &Scheduler{
		numEvents:     numEvents,
		hostsPerEvent: cfg.hostsPerEvent,
		maxHosts:      cfg.maxHosts,
		reg:           newRegistry(numEvents, cfg.maxHosts),
		solver:        cfg.solver,
		enc: &encoder{
			s:             cfg.solver,
			numEvents:     numEvents,
			hostsPerEvent: cfg.hostsPerEvent,
			maxHosts:      cfg.maxHosts,
		},
		log:     cfg.log,
		metrics: cfg.metrics,
	}, nil
}

// NumEvents returns the number of events.
func (s *Scheduler) NumEvents() int { return s.numEvents }

// HostsPerEvent returns how many hosts every event needs.
func (s *Scheduler) HostsPerEvent() int { return s.hostsPerEvent }

// MaxHosts returns the host capacity.
func (s *Scheduler) MaxHosts() int { return s.maxHosts }

// Register adds a host, or updates the availability and cap of an
// existing one without changing its id.
//
// availability lists the 1-based events the host can attend. It is not
// validated: events outside [1, NumEvents] are never matched and
// duplicates are harmless.
//
// Registering a new name when MaxHosts hosts exist fails with
// ErrCapacityExceeded. An empty name or a negative cap fails with
// ErrInvalidConfig. A failed call leaves the registry unchanged.
func (s *Scheduler) Register(name string, availability []int, opts ...HostOption) error {
	h, created, err := s.reg.register(name, availability, opts...)
	if err != nil {
		return err
	}
	s.metrics.SetHosts(s.reg.len())

	fields := logrus.Fields{
		"host":         h.name,
		"id":           h.id,
		"availability": h.events.String(),
	}
	if limit, ok := h.MaxAssigned(); ok {
		fields["max_assigned"] = limit
	}
	if created {
		s.log.WithFields(fields).Debug("registered host")
	} else {
		s.log.WithFields(fields).Debug("updated host")
	}
	return nil
}

// Host returns the host registered under name.
func (s *Scheduler) Host(name string) (*Host, bool) {
	return s.reg.host(name)
}

// HostByID returns the host with the given id.
func (s *Scheduler) HostByID(id int) (*Host, bool) {
	return s.reg.hostByID(id)
}

// Hosts returns all hosts in id order.
func (s *Scheduler) Hosts() []*Host {
	return s.reg.hosts()
}

// NumHosts returns the number of registered hosts.
func (s *Scheduler) NumHosts() int {
	return s.reg.len()
}

// Schedule solves the current registry.
//
// On success it returns one entry per event, in event order, each holding
// exactly HostsPerEvent host names in ascending id order, and ok is true.
// When no schedule exists it returns (nil, false, nil); Conflicts then
// names constraints that cannot hold together. An engine failure, a
// cancelled ctx or an elapsed WithTimeout returns a non-nil error wrapping
// smt.ErrIncomplete or the engine's error.
func (s *Scheduler) Schedule(ctx context.Context) (sched Schedule, ok bool, err error) {
	start := time.Now()
	s.conflicts = nil

	s.solver.Push()
	defer func() {
		if perr := s.solver.Pop(); perr != nil && err == nil {
			sched, ok, err = nil, false, errors.Wrap(perr, "discarding schedule scope")
		}
		s.observe(ok, err, time.Since(start))
	}()

	s.enc.encode(s.reg)

	status, err := s.solver.Check(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "solving schedule")
	}
	if status == smt.Unsat {
		s.conflicts = s.solver.Core()
		return nil, false, nil
	}

	m, err := s.solver.Model()
	if err != nil {
		return nil, false, errors.Wrap(err, "reading schedule")
	}
	sched, err = s.decode(m)
	if err != nil {
		return nil, false, err
	}
	return sched, true, nil
}

func (s *Scheduler) observe(ok bool, err error, d time.Duration) {
	outcome := OutcomeScheduled
	switch {
	case err != nil:
		outcome = OutcomeError
	case !ok:
		outcome = OutcomeUnsatisfiable
	}
	s.metrics.ObserveSolve(outcome, d)

	entry := s.log.WithFields(logrus.Fields{
		"events":   s.numEvents,
		"hosts":    s.reg.len(),
		"outcome":  outcome,
		"duration": d,
		"clauses":  s.solver.Stats().Clauses,
	})
	if err != nil {
		entry.WithError(err).Debug("schedule failed")
		return
	}
	entry.Debug("solved schedule")
}

// decode reads every event variable from m and maps its set bits to
// host names in ascending bit order.
func (s *Scheduler) decode(m *smt.Model) (Schedule, error) {
	vs := s.enc.vars()
	sched := make(Schedule, len(vs))
	for i, v := range vs {
		mask, err := m.Uint64(v)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding event %d", i+1)
		}
		names := make([]string, 0, bits.OnesCount64(mask))
		for mask != 0 {
			id := bits.TrailingZeros64(mask)
			h, ok := s.reg.hostByID(id)
			if !ok {
				return nil, errors.Errorf("event %d assigns unregistered host slot %d", i+1, id)
			}
			names = append(names, h.name)
			mask &= mask - 1
		}
		sched[i] = names
	}
	return sched, nil
}

// Conflicts returns labels of constraints that cannot all hold, as found
// by the last Schedule call that answered "no schedule". It is nil after
// any other outcome and when the engine backend cannot explain its
// answers.
func (s *Scheduler) Conflicts() []string {
	return append([]string(nil), s.conflicts...)
}

// Stats returns the engine statistics accumulated by this scheduler.
func (s *Scheduler) Stats() smt.SolverStats {
	return s.solver.Stats()
}
