package smt

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushPopRestoresAssertions(t *testing.T) {
	s := NewSolver()
	x := s.BitVec("x", 3)
	s.Add(s.Eq(x, s.BitVecVal(1, 3)))
	require.Equal(t, 1, s.Assertions())

	s.Push()
	s.Add(s.Eq(x, s.BitVecVal(2, 3)))
	assert.Equal(t, 1, s.Depth())
	assert.Equal(t, Unsat, mustCheck(t, s))

	require.NoError(t, s.Pop())
	assert.Equal(t, 0, s.Depth())
	assert.Equal(t, 1, s.Assertions())
	assert.Equal(t, Sat, mustCheck(t, s))

	m, err := s.Model()
	require.NoError(t, err)
	v, err := m.Uint64(x)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)

	assert.True(t, errors.Is(s.Pop(), ErrNoScope))
}

func TestNestedScopes(t *testing.T) {
	s := NewSolver()
	x := s.BitVec("x", 4)
	limit := func(n uint64) Bool { return s.Ule(x, s.BitVecVal(n, 4)) }
	atLeast := func(n uint64) Bool { return s.Ule(s.BitVecVal(n, 4), x) }

	s.Push()
	s.Add(limit(7))
	s.Push()
	s.Add(atLeast(8))
	assert.Equal(t, Unsat, mustCheck(t, s))
	require.NoError(t, s.Pop())
	s.Push()
	s.Add(atLeast(7))
	assert.Equal(t, Sat, mustCheck(t, s))
	m, err := s.Model()
	require.NoError(t, err)
	v, err := m.Uint64(x)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
	require.NoError(t, s.Pop())
	require.NoError(t, s.Pop())

	s.Push()
	s.Add(atLeast(8))
	assert.Equal(t, Sat, mustCheck(t, s), "limit from a popped scope leaked")
	require.NoError(t, s.Pop())
	assert.Equal(t, 2, s.Stats().MaxScope)
}

func TestModelRequiresSat(t *testing.T) {
	s := NewSolver()
	x := s.BitVec("x", 2)

	_, err := s.Model()
	assert.True(t, errors.Is(err, ErrNoModel), "model before any check")

	s.Add(s.Eq(x, s.BitVecVal(3, 2)))
	require.Equal(t, Sat, mustCheck(t, s))
	m, err := s.Model()
	require.NoError(t, err)
	assert.Equal(t, "{x=0x3}", m.String())

	s.Add(s.Eq(x, s.BitVecVal(0, 2)))
	_, err = s.Model()
	assert.True(t, errors.Is(err, ErrNoModel), "model after assertions changed")

	require.Equal(t, Unsat, mustCheck(t, s))
	_, err = s.Model()
	assert.True(t, errors.Is(err, ErrNoModel), "model after unsat")

	// Models taken earlier stay readable.
	v, err := m.Uint64(x)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)

	later := s.BitVec("later", 2)
	_, err = m.Uint64(later)
	assert.Error(t, err)
}

func TestCoreNamesConflictingAssertions(t *testing.T) {
	s := NewSolver()
	x := s.BitVec("x", 2)
	y := s.BitVec("y", 2)
	s.AddLabeled("x is one", s.Eq(x, s.BitVecVal(1, 2)))
	s.AddLabeled("y is zero", s.Eq(y, s.BitVecVal(0, 2)))
	s.AddLabeled("x is two", s.Eq(x, s.BitVecVal(2, 2)))

	require.Equal(t, Unsat, mustCheck(t, s))
	core := s.Core()
	assert.Contains(t, core, "x is one")
	assert.Contains(t, core, "x is two")
	assert.NotContains(t, core, "y is zero")

	s2 := NewSolver(WithBackend(NewGophersatBackend()))
	s2.AddLabeled("false", s2.False())
	require.Equal(t, Unsat, mustCheck(t, s2))
	assert.Empty(t, s2.Core(), "gophersat cannot explain")
}

type stalledBackend struct {
	*GiniBackend
}

func (stalledBackend) Solve(ctx context.Context) int {
	return 0
}

func TestCheckUnknown(t *testing.T) {
	s := NewSolver(WithBackend(stalledBackend{NewGiniBackend()}))
	s.Add(s.True())

	status, err := s.Check(context.Background())
	assert.Equal(t, Unknown, status)
	assert.True(t, errors.Is(err, ErrIncomplete))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	status, err = s.Check(ctx)
	assert.Equal(t, Unknown, status)
	assert.True(t, errors.Is(err, ErrIncomplete))
	assert.Contains(t, err.Error(), context.Canceled.Error())

	stats := s.Stats()
	assert.Equal(t, 2, stats.Checks)
	assert.Equal(t, 2, stats.Unknown)
}

func TestCheckWithDeadlineStillAnswers(t *testing.T) {
	for _, name := range []string{BackendGini, BackendGophersat} {
		t.Run(name, func(t *testing.T) {
			b, err := BackendByName(name)
			require.NoError(t, err)
			s := NewSolver(WithBackend(b), WithTimeout(time.Minute))
			x := s.BitVec("x", 4)
			s.Add(s.Eq(s.BVAdd(x, x), s.BitVecVal(6, 4)))

			status, err := s.Check(context.Background())
			require.NoError(t, err)
			require.Equal(t, Sat, status)
			m, err := s.Model()
			require.NoError(t, err)
			v, err := m.Uint64(x)
			require.NoError(t, err)
			assert.Equal(t, uint64(6), (2*v)%16)
		})
	}
}

func TestBackendByName(t *testing.T) {
	for name, want := range map[string]string{
		"":          BackendGini,
		"gini":      BackendGini,
		"GoPherSat": BackendGophersat,
	} {
		b, err := BackendByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, b.Name())
	}
	_, err := BackendByName("z3")
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestGiniValueOfUnseenVariable(t *testing.T) {
	b := NewGiniBackend()
	m := z.Var(1000).Pos()
	assert.False(t, b.Value(m))
	assert.True(t, b.Value(m.Not()))
}

// TestBackendsAgree cross-checks both backends on random small systems
// of sums and bounds over three 3-bit variables.
func TestBackendsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	build := func(s *Solver, seed int64) []BitVec {
		r := rand.New(rand.NewSource(seed))
		xs := []BitVec{s.BitVec("a", 3), s.BitVec("b", 3), s.BitVec("c", 3)}
		for i := 0; i < 3; i++ {
			l, k := xs[r.Intn(3)], xs[r.Intn(3)]
			bound := s.BitVecVal(uint64(r.Intn(8)), 3)
			switch r.Intn(3) {
			case 0:
				s.Add(s.Eq(s.BVAdd(l, k), bound))
			case 1:
				s.Add(s.Ule(s.BVAdd(l, k), bound))
			default:
				s.Add(s.Not(s.Eq(l, bound)))
			}
		}
		return xs
	}

	for i := 0; i < 50; i++ {
		seed := rng.Int63()
		g := NewSolver(WithBackend(NewGiniBackend()))
		p := NewSolver(WithBackend(NewGophersatBackend()))
		build(g, seed)
		xs := build(p, seed)

		gs := mustCheck(t, g)
		ps := mustCheck(t, p)
		require.Equal(t, gs, ps, "seed %d", seed)

		if ps == Sat {
			// The gophersat model must satisfy the same system when
			// replayed as equalities.
			m, err := p.Model()
			require.NoError(t, err)
			for _, x := range xs {
				v, err := m.Uint64(x)
				require.NoError(t, err)
				g.Add(g.Eq(g.BitVec(x.Name(), 3), g.BitVecVal(v, 3)))
			}
			assert.Equal(t, Sat, mustCheck(t, g), "seed %d", seed)
		}
	}
}

func TestStatsCountClausesAndChecks(t *testing.T) {
	s := NewSolver()
	x := s.BitVec("x", 2)
	s.Add(s.Eq(x, s.BitVecVal(1, 2)))
	mustCheck(t, s)
	first := s.Stats()
	assert.Equal(t, 1, first.Checks)
	assert.Equal(t, 1, first.Sat)
	assert.Greater(t, first.Clauses, 0)

	// Nothing new in the circuit: no new clauses.
	mustCheck(t, s)
	second := s.Stats()
	assert.Equal(t, first.Clauses, second.Clauses)
	assert.Equal(t, 2, second.Checks)
	assert.Contains(t, second.String(), "checks=2")
}
