// Package scheduler assigns hosts to the events of a recurring series.
// This file defines EventSet, the set of events a host can attend.
package scheduler

import (
	"fmt"
	"math/bits"
	"strings"
)

// EventSet is a set of 1-based event indices in the range [1, numEvents],
// packed into uint64 words: bit i represents event i+1.
//
// EventSet is immutable once built.
type EventSet struct {
	numEvents int
	words     []uint64
}

// NewEventSet creates the set of the given events. Events outside
// [1, numEvents] are ignored and duplicates are harmless, so any
// availability list a caller passes is accepted.
func NewEventSet(numEvents int, events []int) EventSet {
	if numEvents <= 0 {
		return EventSet{}
	}
	s := EventSet{
		numEvents: numEvents,
		words:     make([]uint64, (numEvents+63)/64),
	}
	for _, e := range events {
		if e >= 1 && e <= numEvents {
			s.words[(e-1)/64] |= 1 << uint((e-1)%64)
		}
	}
	return s
}

// Has reports whether event is in the set. Out-of-range events are never
// present.
func (s EventSet) Has(event int) bool {
	if event < 1 || event > s.numEvents {
		return false
	}
	return (s.words[(event-1)/64]>>uint((event-1)%64))&1 == 1
}

// Count returns the number of events in the set.
func (s EventSet) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Events returns the events in ascending order.
func (s EventSet) Events() []int {
	out := make([]int, 0, s.Count())
	for i, w := range s.words {
		for w != 0 {
			out = append(out, i*64+bits.TrailingZeros64(w)+1)
			w &= w - 1
		}
	}
	return out
}

// String returns the set as "{1,2,4}".
func (s EventSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, e := range s.Events() {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", e)
	}
	sb.WriteByte('}')
	return sb.String()
}
