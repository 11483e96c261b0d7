// Package smt provides a small bit-vector constraint engine built on
// SAT solving.
//
// Terms are bit-blasted into an and-inverter circuit (github.com/go-air/gini/logic)
// as they are constructed. Asserted Boolean terms live in a stack of
// scopes; checking satisfiability teaches the reachable part of the
// circuit to a SAT backend as clauses and passes every active assertion
// as an assumption. Popping a scope therefore only stops assuming its
// assertions: the circuit definitions that remain are satisfiability
// preserving and never constrain later checks.
//
// The engine offers the operations needed by small bit-field encodings:
//
//   - fixed-width named variables and constants
//   - extraction, concatenation and zero extension
//   - modular addition
//   - equality and unsigned comparison
//   - Boolean connectives over the resulting predicates
//
// A Solver is not safe for concurrent use.
package smt

import (
	"fmt"

	"github.com/go-air/gini/z"
)

// BitVec is a fixed-width symbolic bit-vector. Bit 0 is the least
// significant bit.
//
// BitVec values are immutable and only meaningful to the Solver that
// created them.
type BitVec struct {
	name string
	bits []z.Lit
}

// Width returns the number of bits in x.
func (x BitVec) Width() int {
	return len(x.bits)
}

// Name returns the declared name of x, or the empty string for
// constants and derived terms.
func (x BitVec) Name() string {
	return x.name
}

// String returns a human-readable representation.
func (x BitVec) String() string {
	if x.name == "" {
		return fmt.Sprintf("bv[%d]", len(x.bits))
	}
	return fmt.Sprintf("%s[%d]", x.name, len(x.bits))
}

// Bool is a symbolic truth value, typically a predicate over bit-vectors.
type Bool struct {
	m z.Lit
}

// String returns the circuit literal backing b.
func (b Bool) String() string {
	return "b" + b.m.String()
}

// Status is the answer of a satisfiability check.
type Status int

const (
	// Unknown means the backend stopped without an answer, for example
	// because the check was cancelled or timed out.
	Unknown Status = iota
	// Sat means the active assertions have a model.
	Sat
	// Unsat means the active assertions have no model.
	Unsat
)

// String returns the conventional lower-case name of s.
func (s Status) String() string {
	switch s {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// statusOf maps gini style result codes (1, -1, 0) to a Status.
func statusOf(res int) Status {
	switch res {
	case 1:
		return Sat
	case -1:
		return Unsat
	default:
		return Unknown
	}
}
