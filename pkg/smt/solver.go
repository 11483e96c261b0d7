// Package smt provides a small bit-vector constraint engine.
// This file implements the scoped solver.
//
// # Scopes
//
// Assertions are kept in a stack of scopes:
//
//	Push()            opens a scope
//	Add(c...)         asserts c in the innermost scope
//	Pop()             drops the innermost scope and its assertions
//	Check(ctx)        decides the conjunction of every active assertion
//
// Check teaches the backend only the circuit nodes it has not seen yet
// (gini's CnfSince marks) and then assumes the root literal of each
// active assertion. Nothing asserted in a popped scope is ever assumed
// again, which is what makes a popped scope disappear.
package smt

import (
	"context"
	"io"
	"time"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Solver owns a circuit of bit-blasted terms, a stack of assertion scopes
// and a SAT backend.
//
// Thread safety: Solver instances are NOT thread-safe. Callers sharing a
// Solver between goroutines must serialize every call.
type Solver struct {
	c       *logic.C
	backend Backend
	marks   []int8

	vars  []BitVec
	names map[string]int

	assertions []assertion
	frames     []int

	status Status
	core   []string

	timeout time.Duration
	log     logrus.FieldLogger
	monitor *SolverMonitor
}

type assertion struct {
	label string
	m     z.Lit
}

// Option configures a Solver.
type Option func(s *Solver)

// WithBackend selects the SAT backend. The default is a gini backend.
func WithBackend(b Backend) Option {
	return func(s *Solver) {
		if b != nil {
			s.backend = b
		}
	}
}

// WithTimeout bounds every Check. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Solver) {
		s.timeout = d
	}
}

// WithLogger sets the logger used for per-check debug output.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Solver) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSolver creates a solver with an empty scope stack.
func NewSolver(options ...Option) *Solver {
	s := &Solver{
		c:       logic.NewC(),
		names:   make(map[string]int),
		monitor: NewSolverMonitor(),
	}
	for _, option := range options {
		option(s)
	}
	if s.backend == nil {
		s.backend = NewGiniBackend()
	}
	if s.log == nil {
		s.log = discardLogger()
	}
	return s
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Backend returns the backend deciding this solver's checks.
func (s *Solver) Backend() Backend {
	return s.backend
}

// Push opens a new scope.
func (s *Solver) Push() {
	s.frames = append(s.frames, len(s.assertions))
	s.monitor.RecordScope(len(s.frames))
}

// Pop discards the innermost scope together with every assertion added
// since the matching Push.
func (s *Solver) Pop() error {
	if len(s.frames) == 0 {
		return ErrNoScope
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.assertions = s.assertions[:top]
	s.invalidate()
	return nil
}

// Depth returns the number of open scopes.
func (s *Solver) Depth() int {
	return len(s.frames)
}

// Add asserts every constraint in the innermost scope, or at the base
// level when no scope is open.
func (s *Solver) Add(constraints ...Bool) {
	for _, c := range constraints {
		s.assertions = append(s.assertions, assertion{m: c.m})
	}
	s.invalidate()
}

// AddLabeled asserts c under a label that Core can report.
func (s *Solver) AddLabeled(label string, c Bool) {
	s.assertions = append(s.assertions, assertion{label: label, m: c.m})
	s.invalidate()
}

// Assertions returns the number of active assertions.
func (s *Solver) Assertions() int {
	return len(s.assertions)
}

func (s *Solver) invalidate() {
	s.status = Unknown
	s.core = nil
}

// Check decides whether the active assertions are satisfiable.
//
// An Unknown status is always accompanied by an error wrapping
// ErrIncomplete.
func (s *Solver) Check(ctx context.Context) (Status, error) {
	s.invalidate()

	roots := make([]z.Lit, len(s.assertions))
	for i, a := range s.assertions {
		roots[i] = a.m
	}
	s.marks, _ = s.c.CnfSince(&countingAdder{dst: s.backend, monitor: s.monitor}, s.marks, roots...)
	s.backend.Assume(roots...)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	status := statusOf(s.backend.Solve(ctx))
	elapsed := time.Since(start)
	s.monitor.RecordCheck(status, elapsed)
	s.status = status

	s.log.WithFields(logrus.Fields{
		"backend":    s.backend.Name(),
		"assertions": len(roots),
		"scopes":     len(s.frames),
		"status":     status.String(),
		"duration":   elapsed,
	}).Debug("checked assertions")

	switch status {
	case Unknown:
		if err := ctx.Err(); err != nil {
			return Unknown, errors.Wrap(ErrIncomplete, err.Error())
		}
		return Unknown, ErrIncomplete
	case Unsat:
		s.core = s.explain()
	}
	return status, nil
}

// explain maps the backend's failed assumptions back to assertion labels,
// in assertion order and without duplicates.
func (s *Solver) explain() []string {
	ex, ok := s.backend.(Explainer)
	if !ok {
		return nil
	}
	failed := make(map[z.Lit]bool)
	for _, m := range ex.Why(nil) {
		failed[m] = true
	}
	var labels []string
	seen := make(map[string]bool)
	for _, a := range s.assertions {
		if a.label == "" || !failed[a.m] || seen[a.label] {
			continue
		}
		seen[a.label] = true
		labels = append(labels, a.label)
	}
	return labels
}

// Status returns the answer of the last Check, or Unknown when the
// assertions changed since.
func (s *Solver) Status() Status {
	return s.status
}

// Core returns the labels of a subset of the active assertions that is
// unsatisfiable on its own. It is empty unless the last Check answered
// Unsat and the backend implements Explainer.
func (s *Solver) Core() []string {
	out := make([]string, len(s.core))
	copy(out, s.core)
	return out
}

// Model returns the model found by the last Check. It fails with
// ErrNoModel unless that check answered Sat and no assertion changed
// since.
func (s *Solver) Model() (*Model, error) {
	if s.status != Sat {
		return nil, ErrNoModel
	}
	vs := make([]bool, s.c.Len())
	for _, i := range s.c.InPos(nil) {
		vs[i] = s.backend.Value(z.Var(i).Pos())
	}
	s.c.Eval(vs)
	return &Model{values: vs, vars: append([]BitVec(nil), s.vars...)}, nil
}

// Stats returns a snapshot of the solver statistics.
func (s *Solver) Stats() SolverStats {
	return s.monitor.GetStats()
}

// countingAdder forwards clauses to a backend and counts them.
type countingAdder struct {
	dst     Backend
	monitor *SolverMonitor
}

func (a *countingAdder) Add(m z.Lit) {
	a.dst.Add(m)
	if m == z.LitNull {
		a.monitor.RecordClause()
	}
}
