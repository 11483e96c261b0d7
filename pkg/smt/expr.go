// Package smt provides a small bit-vector constraint engine.
// This file defines the term constructors. Every constructor bit-blasts
// its result into the solver's circuit immediately.
//
// Constructors panic on malformed input (mismatched widths, extraction
// ranges outside the operand). Such calls are programming errors and
// cannot be caused by data.
package smt

import (
	"fmt"

	"github.com/go-air/gini/z"
)

// BitVec declares a named bit-vector variable of the given width.
// Declaring the same name again returns the existing variable, provided
// the width matches.
func (s *Solver) BitVec(name string, width int) BitVec {
	if width <= 0 {
		panic(fmt.Sprintf("smt: bit-vector %q has non-positive width %d", name, width))
	}
	if i, ok := s.names[name]; ok {
		x := s.vars[i]
		if x.Width() != width {
			panic(fmt.Sprintf("smt: bit-vector %q redeclared with width %d, was %d", name, width, x.Width()))
		}
		return x
	}

	bits := make([]z.Lit, width)
	for i := range bits {
		bits[i] = s.c.Lit()
	}
	x := BitVec{name: name, bits: bits}
	s.names[name] = len(s.vars)
	s.vars = append(s.vars, x)
	s.monitor.RecordVariable(width)
	return x
}

// BitVecVal returns the constant v as a bit-vector of the given width.
// Bits of v at or above width are dropped.
func (s *Solver) BitVecVal(v uint64, width int) BitVec {
	if width <= 0 {
		panic(fmt.Sprintf("smt: constant has non-positive width %d", width))
	}
	bits := make([]z.Lit, width)
	for i := range bits {
		if i < 64 && v&(1<<uint(i)) != 0 {
			bits[i] = s.c.T
		} else {
			bits[i] = s.c.F
		}
	}
	return BitVec{bits: bits}
}

// Extract returns bits hi down to lo (inclusive) of x.
func (s *Solver) Extract(hi, lo int, x BitVec) BitVec {
	if lo < 0 || hi < lo || hi >= x.Width() {
		panic(fmt.Sprintf("smt: extract [%d:%d] out of range for %s", hi, lo, x))
	}
	bits := make([]z.Lit, hi-lo+1)
	copy(bits, x.bits[lo:hi+1])
	return BitVec{bits: bits}
}

// Concat joins bit-vectors; the first argument supplies the most
// significant bits of the result.
func (s *Solver) Concat(xs ...BitVec) BitVec {
	if len(xs) == 0 {
		panic("smt: concat of no bit-vectors")
	}
	n := 0
	for _, x := range xs {
		n += x.Width()
	}
	bits := make([]z.Lit, 0, n)
	for i := len(xs) - 1; i >= 0; i-- {
		bits = append(bits, xs[i].bits...)
	}
	return BitVec{bits: bits}
}

// ZeroExt widens x by n zero bits on the most significant side.
func (s *Solver) ZeroExt(n int, x BitVec) BitVec {
	if n < 0 {
		panic(fmt.Sprintf("smt: negative zero extension %d", n))
	}
	bits := make([]z.Lit, x.Width(), x.Width()+n)
	copy(bits, x.bits)
	for i := 0; i < n; i++ {
		bits = append(bits, s.c.F)
	}
	return BitVec{bits: bits}
}

// BVAdd returns a + b modulo 2^w, where w is the common width.
func (s *Solver) BVAdd(a, b BitVec) BitVec {
	s.sameWidth("add", a, b)
	bits := make([]z.Lit, a.Width())
	carry := s.c.F
	for i := range bits {
		x, y := a.bits[i], b.bits[i]
		axb := s.c.Xor(x, y)
		bits[i] = s.c.Xor(axb, carry)
		carry = s.c.Or(s.c.And(x, y), s.c.And(carry, axb))
	}
	return BitVec{bits: bits}
}

// Eq returns the predicate a == b.
func (s *Solver) Eq(a, b BitVec) Bool {
	s.sameWidth("eq", a, b)
	ms := make([]z.Lit, a.Width())
	for i := range ms {
		ms[i] = s.c.Xor(a.bits[i], b.bits[i]).Not()
	}
	return Bool{m: s.c.Ands(ms...)}
}

// Ule returns the unsigned predicate a <= b.
func (s *Solver) Ule(a, b BitVec) Bool {
	s.sameWidth("ule", a, b)
	// le holds for the low i bits; walk towards the most significant bit.
	le := s.c.T
	for i := 0; i < a.Width(); i++ {
		x, y := a.bits[i], b.bits[i]
		lt := s.c.And(x.Not(), y)
		same := s.c.Xor(x, y).Not()
		le = s.c.Or(lt, s.c.And(same, le))
	}
	return Bool{m: le}
}

// Or returns the disjunction of bs; the empty disjunction is false.
func (s *Solver) Or(bs ...Bool) Bool {
	return Bool{m: s.c.Ors(s.lits(bs)...)}
}

// And returns the conjunction of bs; the empty conjunction is true.
func (s *Solver) And(bs ...Bool) Bool {
	return Bool{m: s.c.Ands(s.lits(bs)...)}
}

// Not returns the negation of b.
func (s *Solver) Not(b Bool) Bool {
	return Bool{m: b.m.Not()}
}

// True returns the constant true.
func (s *Solver) True() Bool {
	return Bool{m: s.c.T}
}

// False returns the constant false.
func (s *Solver) False() Bool {
	return Bool{m: s.c.F}
}

func (s *Solver) lits(bs []Bool) []z.Lit {
	ms := make([]z.Lit, len(bs))
	for i, b := range bs {
		ms[i] = b.m
	}
	return ms
}

func (s *Solver) sameWidth(op string, a, b BitVec) {
	if a.Width() != b.Width() {
		panic(fmt.Sprintf("smt: %s of %s and %s: width mismatch", op, a, b))
	}
}
