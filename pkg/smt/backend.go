// Package smt provides a small bit-vector constraint engine.
// This file defines the SAT backends that decide the bit-blasted circuit.
package smt

import (
	"context"
	"strings"
	"time"

	"github.com/crillab/gophersat/solver"
	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Backend is a clause-level SAT solver.
//
// Clauses arrive through Add as z.LitNull terminated literal sequences and
// are permanent. Assumptions apply to the next Solve only. Solve returns
// 1 for sat, -1 for unsat and 0 when it stopped without an answer; after
// a sat answer Value reports the model.
type Backend interface {
	inter.Adder
	Assume(ms ...z.Lit)
	Solve(ctx context.Context) int
	Value(m z.Lit) bool
	Name() string
}

// Explainer is implemented by backends that can name a subset of the
// last assumptions sufficient for an unsat answer.
type Explainer interface {
	Why(dst []z.Lit) []z.Lit
}

// Backend names accepted by BackendByName.
const (
	BackendGini      = "gini"
	BackendGophersat = "gophersat"
)

// BackendByName returns a fresh backend. The empty name selects gini.
func BackendByName(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", BackendGini:
		return NewGiniBackend(), nil
	case BackendGophersat:
		return NewGophersatBackend(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", name)
	}
}

// pollInterval bounds how long a cancelled context can go unnoticed
// while a solve runs in the background.
const pollInterval = 5 * time.Millisecond

// GiniBackend solves incrementally with github.com/go-air/gini.
// Learnt clauses survive across checks; assumptions do not.
type GiniBackend struct {
	g *gini.Gini
}

var _ Backend = (*GiniBackend)(nil)
var _ Explainer = (*GiniBackend)(nil)

// NewGiniBackend creates an empty gini backend.
func NewGiniBackend() *GiniBackend {
	return &GiniBackend{g: gini.New()}
}

// Name implements Backend.
func (b *GiniBackend) Name() string {
	return BackendGini
}

// Add implements inter.Adder.
func (b *GiniBackend) Add(m z.Lit) {
	b.g.Add(m)
}

// Assume implements Backend.
func (b *GiniBackend) Assume(ms ...z.Lit) {
	b.g.Assume(ms...)
}

// Solve implements Backend. Without a cancellable context the solve runs
// on the calling goroutine; otherwise it runs in gini's background
// goroutine and is stopped when ctx is done.
func (b *GiniBackend) Solve(ctx context.Context) int {
	if ctx.Done() == nil {
		return b.g.Solve()
	}
	return waitForSolution(ctx, b.g.GoSolve())
}

// Value implements Backend. Variables the solver has never seen are false.
func (b *GiniBackend) Value(m z.Lit) bool {
	if m.Var() > b.g.MaxVar() {
		return !m.IsPos()
	}
	return b.g.Value(m)
}

// Why implements Explainer.
func (b *GiniBackend) Why(dst []z.Lit) []z.Lit {
	return b.g.Why(dst)
}

func waitForSolution(ctx context.Context, gs inter.Solve) int {
	t := time.NewTicker(pollInterval)
	defer t.Stop()

	for {
		if result, ok := gs.Test(); ok {
			return result
		}
		select {
		case <-ctx.Done():
			return gs.Stop()
		case <-t.C:
		}
	}
}

// GophersatBackend decides the accumulated clauses with
// github.com/crillab/gophersat. It is not incremental: every Solve
// builds a fresh problem from all clauses plus the assumptions as unit
// clauses.
type GophersatBackend struct {
	clauses [][]int
	clause  []int
	assumed []int
	model   []bool
}

var _ Backend = (*GophersatBackend)(nil)

// NewGophersatBackend creates an empty gophersat backend.
func NewGophersatBackend() *GophersatBackend {
	return &GophersatBackend{}
}

// Name implements Backend.
func (b *GophersatBackend) Name() string {
	return BackendGophersat
}

// Add implements inter.Adder.
func (b *GophersatBackend) Add(m z.Lit) {
	if m == z.LitNull {
		b.clauses = append(b.clauses, b.clause)
		b.clause = nil
		return
	}
	b.clause = append(b.clause, m.Dimacs())
}

// Assume implements Backend.
func (b *GophersatBackend) Assume(ms ...z.Lit) {
	for _, m := range ms {
		b.assumed = append(b.assumed, m.Dimacs())
	}
}

// Solve implements Backend. A cancelled context abandons the running
// search; gophersat offers no way to interrupt it, so it finishes in the
// background and its answer is discarded.
func (b *GophersatBackend) Solve(ctx context.Context) int {
	cnf := make([][]int, 0, len(b.clauses)+len(b.assumed))
	cnf = append(cnf, b.clauses...)
	for _, a := range b.assumed {
		cnf = append(cnf, []int{a})
	}
	b.assumed = b.assumed[:0]
	b.model = nil

	type answer struct {
		status solver.Status
		model  []bool
	}
	run := func() answer {
		s := solver.New(solver.ParseSlice(cnf))
		status := s.Solve()
		if status == solver.Sat {
			return answer{status: status, model: s.Model()}
		}
		return answer{status: status}
	}

	var ans answer
	if ctx.Done() == nil {
		ans = run()
	} else {
		done := make(chan answer, 1)
		go func() { done <- run() }()
		select {
		case <-ctx.Done():
			return 0
		case ans = <-done:
		}
	}

	switch ans.status {
	case solver.Sat:
		b.model = ans.model
		return 1
	case solver.Unsat:
		return -1
	default:
		return 0
	}
}

// Value implements Backend. Variables absent from the last problem are
// false.
func (b *GophersatBackend) Value(m z.Lit) bool {
	v := int(m.Var()) - 1
	val := false
	if v >= 0 && v < len(b.model) {
		val = b.model[v]
	}
	if !m.IsPos() {
		return !val
	}
	return val
}
