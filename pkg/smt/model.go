package smt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// Model is a snapshot of a satisfying assignment. It maps every term that
// existed when it was taken, declared or derived, to a concrete value.
// A Model stays valid after later Push, Pop and Check calls.
type Model struct {
	values []bool
	vars   []BitVec
}

// Bool returns the value of b.
func (m *Model) Bool(b Bool) (bool, error) {
	return m.lit(b.m)
}

// Uint64 returns the value of x as an unsigned integer. x must be at most
// 64 bits wide.
func (m *Model) Uint64(x BitVec) (uint64, error) {
	if x.Width() > 64 {
		return 0, errors.Errorf("%s is wider than 64 bits", x)
	}
	var v uint64
	for i, bit := range x.bits {
		set, err := m.lit(bit)
		if err != nil {
			return 0, errors.Wrapf(err, "bit %d of %s", i, x)
		}
		if set {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}

// Bits returns the value of x, least significant bit first.
func (m *Model) Bits(x BitVec) ([]bool, error) {
	out := make([]bool, x.Width())
	for i, bit := range x.bits {
		set, err := m.lit(bit)
		if err != nil {
			return nil, errors.Wrapf(err, "bit %d of %s", i, x)
		}
		out[i] = set
	}
	return out, nil
}

// Vars returns the declared variables in declaration order.
func (m *Model) Vars() []BitVec {
	return append([]BitVec(nil), m.vars...)
}

// String returns "name=value" pairs for variables of at most 64 bits,
// sorted by name.
func (m *Model) String() string {
	parts := make([]string, 0, len(m.vars))
	for _, x := range m.vars {
		v, err := m.Uint64(x)
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%#x", x.name, v))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m *Model) lit(l z.Lit) (bool, error) {
	v := int(l.Var())
	if v <= 0 || v >= len(m.values) {
		return false, errors.Errorf("literal %s was created after the model", l)
	}
	val := m.values[v]
	if !l.IsPos() {
		val = !val
	}
	return val, nil
}
