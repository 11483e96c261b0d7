package roster

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinemark/scheduler/pkg/scheduler"
	"github.com/offlinemark/scheduler/pkg/smt"
)

func mustParse(t *testing.T, doc string) *Roster {
	t.Helper()
	r, err := Parse([]byte(doc))
	require.NoError(t, err)
	return r
}

func TestSolve(t *testing.T) {
	res := Solve(context.Background(), mustParse(t, sundayRota), WithVerify())
	require.NoError(t, res.Err)
	require.True(t, res.OK)
	assert.Equal(t, "sunday-rota", res.Roster)
	assert.Equal(t, scheduler.Schedule{
		{"mark", "bark", "lark"},
		{"mark", "nark", "lark"},
		{"nark", "bark", "lark"},
		{"mark", "nark", "bark"},
	}, res.Schedule)
	assert.Equal(t, 1, res.Stats.Checks)
	assert.Greater(t, int64(res.Duration), int64(0))
}

func TestSolveUnsatisfiable(t *testing.T) {
	r := mustParse(t, "name: short\nevents: 4\nhosts:\n  - name: mark\n    availability: [1, 2, 3, 4]\n  - name: nark\n    availability: [1, 2, 3, 4]\n")
	res := Solve(context.Background(), r)
	require.NoError(t, res.Err)
	assert.False(t, res.OK)
	assert.Nil(t, res.Schedule)
	assert.NotEmpty(t, res.Conflicts)
}

func TestSolveWithEngineOverride(t *testing.T) {
	r := mustParse(t, sundayRota)
	res := Solve(context.Background(), r, WithSchedulerOptions(scheduler.WithBackend(smt.BackendGophersat)))
	require.NoError(t, res.Err)
	assert.True(t, res.OK)

	res = Solve(context.Background(), r, WithSchedulerOptions(scheduler.WithBackend("nope")))
	assert.True(t, errors.Is(res.Err, smt.ErrUnknownBackend))
	assert.False(t, res.OK)
}

func TestSolveLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	Solve(context.Background(), mustParse(t, sundayRota), WithLogger(log))
	out := buf.String()
	assert.Contains(t, out, "solved roster")
	assert.Contains(t, out, "roster=sunday-rota")
	assert.Contains(t, out, "registered host", "scheduler inherits the logger")
}

func TestSolveAllPreservesOrder(t *testing.T) {
	var rs []*Roster
	for i := 0; i < 12; i++ {
		// Odd rosters need more hosts than they have.
		doc := fmt.Sprintf("name: r%d\nevents: 2\nhosts_per_event: %d\nhosts:\n  - name: a\n    availability: [1, 2]\n  - name: b\n    availability: [1, 2]\n", i, 1+i%2*2)
		rs = append(rs, mustParse(t, doc))
	}

	results := SolveAll(context.Background(), rs, 3)
	require.Len(t, results, len(rs))
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("r%d", i), res.Roster)
		require.NoError(t, res.Err)
		assert.Equal(t, i%2 == 0, res.OK, "roster %d", i)
	}
}

func TestSolveAllCancelled(t *testing.T) {
	var rs []*Roster
	for i := 0; i < 20; i++ {
		rs = append(rs, mustParse(t, fmt.Sprintf("name: r%d\nevents: 1\nhosts_per_event: 0\n", i)))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := SolveAll(ctx, rs, 1)
	require.Len(t, results, len(rs))
	failed := 0
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("r%d", i), res.Roster)
		if res.Err != nil {
			failed++
		}
	}
	assert.Greater(t, failed, 0)
}
