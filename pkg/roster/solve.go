package roster

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/offlinemark/scheduler/internal/parallel"
	"github.com/offlinemark/scheduler/pkg/scheduler"
	"github.com/offlinemark/scheduler/pkg/smt"
)

// Result is the outcome of solving one roster. Exactly one of these
// holds: Err is set, OK is true and Schedule is set, or OK is false and
// the roster has no schedule.
type Result struct {
	Roster    string
	Schedule  scheduler.Schedule
	OK        bool
	Conflicts []string
	Err       error
	Duration  time.Duration
	Stats     smt.SolverStats
}

type solveConfig struct {
	schedOpts []scheduler.Option
	verify    bool
	log       logrus.FieldLogger
}

// SolveOption configures Solve and SolveAll.
type SolveOption func(*solveConfig)

// WithSchedulerOptions passes options to every scheduler built from a
// roster. They override the roster's own settings.
func WithSchedulerOptions(opts ...scheduler.Option) SolveOption {
	return func(c *solveConfig) {
		c.schedOpts = append(c.schedOpts, opts...)
	}
}

// WithVerify re-checks every schedule found with Scheduler.Verify.
func WithVerify() SolveOption {
	return func(c *solveConfig) {
		c.verify = true
	}
}

// WithLogger sets the logger for per-roster progress. It is also handed
// to the schedulers unless WithSchedulerOptions sets another.
func WithLogger(log logrus.FieldLogger) SolveOption {
	return func(c *solveConfig) {
		c.log = log
	}
}

func newSolveConfig(opts []SolveOption) *solveConfig {
	c := &solveConfig{}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	} else {
		c.schedOpts = append([]scheduler.Option{scheduler.WithLogger(c.log)}, c.schedOpts...)
	}
	return c
}

// Solve builds a scheduler for r and asks it for one schedule.
func Solve(ctx context.Context, r *Roster, opts ...SolveOption) Result {
	return solve(ctx, r, newSolveConfig(opts))
}

func solve(ctx context.Context, r *Roster, cfg *solveConfig) Result {
	start := time.Now()
	res := Result{Roster: r.Name}
	log := cfg.log.WithField("roster", r.Name)

	s, err := r.NewScheduler(cfg.schedOpts...)
	if err != nil {
		res.Err = err
		res.Duration = time.Since(start)
		log.WithError(err).Warn("cannot build scheduler")
		return res
	}

	res.Schedule, res.OK, res.Err = s.Schedule(ctx)
	res.Conflicts = s.Conflicts()
	res.Stats = s.Stats()
	if res.Err == nil && res.OK && cfg.verify {
		if err := s.Verify(res.Schedule); err != nil {
			res.Schedule, res.OK, res.Err = nil, false, errors.Wrapf(err, "roster %s", r.Name)
		}
	}
	res.Duration = time.Since(start)

	entry := log.WithFields(logrus.Fields{
		"scheduled": res.OK,
		"duration":  res.Duration,
	})
	if res.Err != nil {
		entry.WithError(res.Err).Warn("solve failed")
	} else {
		entry.Info("solved roster")
	}
	return res
}

// SolveAll solves independent rosters on a pool of workers goroutines
// (the number of CPUs when workers <= 0). Results follow the order of rs.
// Rosters not started before ctx ends report ctx's error.
func SolveAll(ctx context.Context, rs []*Roster, workers int, opts ...SolveOption) []Result {
	cfg := newSolveConfig(opts)
	results := make([]Result, len(rs))
	started := make([]bool, len(rs))

	pool := parallel.NewWorkerPool(workers)
	defer pool.Shutdown()

	err := pool.ForEach(ctx, len(rs), func(i int) {
		started[i] = true
		results[i] = solve(ctx, rs[i], cfg)
	})
	if err != nil {
		for i, r := range rs {
			if !started[i] {
				results[i] = Result{Roster: r.Name, Err: errors.Wrap(err, "roster not solved")}
			}
		}
	}
	return results
}
