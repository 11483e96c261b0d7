// Package scheduler assigns hosts to the events of a recurring series.
// This file defines the constraint encoder.
//
// Each event i has an assignment variable "event<i>" of maxHosts bits;
// bit h is set iff the host with id h is assigned to the event. The
// encoder derives four families of constraints from the registry:
//
//	cardinality   popcount(event<i>) == hostsPerEvent
//	availability  bit h of event<i> is 0 unless host h can attend event i
//	capacity      popcount(bit h across all events) <= cap(h)
//	padding       bits [numHosts, maxHosts) of every event are 0
//
// Population counts are computed in a counter wide enough for both the
// counted bits and the compared constant, so no constant is truncated.
package scheduler

import (
	"fmt"
	"math/bits"

	"github.com/offlinemark/scheduler/pkg/smt"
)

type encoder struct {
	s             *smt.Solver
	numEvents     int
	hostsPerEvent int
	maxHosts      int
}

func eventVarName(event int) string {
	return fmt.Sprintf("event%d", event)
}

// vars returns the assignment variables in event order. Declaring an
// existing name returns the existing variable, so repeated calls agree.
func (e *encoder) vars() []smt.BitVec {
	vs := make([]smt.BitVec, e.numEvents)
	for i := range vs {
		vs[i] = e.s.BitVec(eventVarName(i+1), e.maxHosts)
	}
	return vs
}

// encode asserts the complete constraint set for the registry into the
// solver's current scope.
func (e *encoder) encode(r *registry) {
	vs := e.vars()
	e.cardinality(vs)
	for _, h := range r.byID {
		e.availability(vs, h)
		e.capacity(vs, h)
	}
	e.padding(vs, r.len())
}

func (e *encoder) cardinality(vs []smt.BitVec) {
	w := counterWidth(e.maxHosts, e.hostsPerEvent)
	want := e.s.BitVecVal(uint64(e.hostsPerEvent), w)
	for i, v := range vs {
		e.s.AddLabeled(
			fmt.Sprintf("event %d needs %d hosts", i+1, e.hostsPerEvent),
			e.s.Eq(e.popcount(v, w), want),
		)
	}
}

func (e *encoder) availability(vs []smt.BitVec, h *Host) {
	zero := e.s.BitVecVal(0, 1)
	one := e.s.BitVecVal(1, 1)
	for i, v := range vs {
		bit := e.s.Extract(h.id, h.id, v)
		if h.Available(i + 1) {
			e.s.Add(e.s.Or(e.s.Eq(bit, zero), e.s.Eq(bit, one)))
			continue
		}
		e.s.AddLabeled(
			fmt.Sprintf("host %s cannot attend event %d", h.name, i+1),
			e.s.Eq(bit, zero),
		)
	}
}

func (e *encoder) capacity(vs []smt.BitVec, h *Host) {
	limit, ok := h.MaxAssigned()
	if !ok {
		return
	}
	w := counterWidth(len(vs), limit)
	e.s.AddLabeled(
		fmt.Sprintf("host %s assigned at most %d times", h.name, limit),
		e.s.Ule(e.popcount(e.column(vs, h.id), w), e.s.BitVecVal(uint64(limit), w)),
	)
}

func (e *encoder) padding(vs []smt.BitVec, numHosts int) {
	if numHosts >= e.maxHosts {
		return
	}
	unused := e.maxHosts - numHosts
	zero := e.s.BitVecVal(0, unused)
	for i, v := range vs {
		e.s.AddLabeled(
			fmt.Sprintf("event %d assigns only registered hosts", i+1),
			e.s.Eq(e.s.Extract(e.maxHosts-1, numHosts, v), zero),
		)
	}
}

// column gathers bit id of every event into one vector with event 1 in
// the least significant position.
func (e *encoder) column(vs []smt.BitVec, id int) smt.BitVec {
	col := make([]smt.BitVec, len(vs))
	for i, v := range vs {
		col[len(vs)-1-i] = e.s.Extract(id, id, v)
	}
	return e.s.Concat(col...)
}

// popcount sums the bits of x in a w-bit counter.
func (e *encoder) popcount(x smt.BitVec, w int) smt.BitVec {
	sum := e.s.BitVecVal(0, w)
	for i := 0; i < x.Width(); i++ {
		sum = e.s.BVAdd(sum, e.s.ZeroExt(w-1, e.s.Extract(i, i, x)))
	}
	return sum
}

// counterWidth returns the width of a counter that can hold n and the
// constant k without wrapping.
func counterWidth(n, k int) int {
	if k > n {
		n = k
	}
	if w := bits.Len(uint(n)); w > 0 {
		return w
	}
	return 1
}
