package roster

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinemark/scheduler/pkg/scheduler"
)

const sundayRota = `
name: sunday-rota
events: 4
hosts_per_event: 3
engine: gini
timeout: 30s
hosts:
  - name: mark
    availability: [1, 2, 4]
  - name: nark
    availability: [2, 3, 4]
  - name: bark
    availability: [1, 3, 4]
  - name: lark
    availability: [1, 2, 3]
    max_assigned: 3
`

func intPtr(n int) *int { return &n }

func writeRoster(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParse(t *testing.T) {
	r, err := Parse([]byte(sundayRota))
	require.NoError(t, err)

	want := &Roster{
		Name:          "sunday-rota",
		Events:        4,
		HostsPerEvent: intPtr(3),
		Engine:        "gini",
		Timeout:       30 * time.Second,
		Hosts: []Host{
			{Name: "mark", Availability: []int{1, 2, 4}},
			{Name: "nark", Availability: []int{2, 3, 4}},
			{Name: "bark", Availability: []int{1, 3, 4}},
			{Name: "lark", Availability: []int{1, 2, 3}, MaxAssigned: intPtr(3)},
		},
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsInvalidRosters(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":          "events: 1\nhosts_per_evnt: 2\n",
		"not yaml":             "events: [1\n",
		"no events":            "hosts: []\n",
		"negative per event":   "events: 1\nhosts_per_event: -1\n",
		"zero max hosts":       "events: 1\nmax_hosts: 0\n",
		"max hosts over limit": "events: 1\nmax_hosts: 65\n",
		"unknown engine":       "events: 1\nengine: cplex\n",
		"negative timeout":     "events: 1\ntimeout: -1s\n",
		"bad timeout":          "events: 1\ntimeout: soon\n",
		"unnamed host":         "events: 1\nhosts:\n  - availability: [1]\n",
		"duplicate host":       "events: 1\nhosts:\n  - name: a\n  - name: a\n",
		"negative cap":         "events: 1\nhosts:\n  - name: a\n    max_assigned: -1\n",
		"too many hosts":       "events: 1\nmax_hosts: 1\nhosts:\n  - name: a\n  - name: b\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.True(t, errors.Is(err, ErrInvalidRoster), "got %v", err)
		})
	}
}

func TestParseKeepsOutOfRangeAvailability(t *testing.T) {
	r, err := Parse([]byte("events: 2\nhosts_per_event: 1\nhosts:\n  - name: a\n    availability: [0, 2, 9]\n"))
	require.NoError(t, err)
	res := Solve(context.Background(), r)
	require.NoError(t, res.Err)
	assert.False(t, res.OK, "event 1 has nobody")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	named := writeRoster(t, dir, "named.yaml", sundayRota)
	anon := writeRoster(t, dir, "anon.yaml", "events: 1\nhosts_per_event: 0\n")
	broken := writeRoster(t, dir, "broken.yaml", "events: 0\n")

	r, err := Load(named)
	require.NoError(t, err)
	assert.Equal(t, "sunday-rota", r.Name)

	r, err = Load(anon)
	require.NoError(t, err)
	assert.Equal(t, anon, r.Name)

	_, err = Load(broken)
	assert.True(t, errors.Is(err, ErrInvalidRoster))
	assert.Contains(t, err.Error(), broken)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.yaml", "a.yaml", "b.yaml"} {
		paths = append(paths, writeRoster(t, dir, name, "events: 1\n"))
	}

	rs, err := LoadAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	for i, r := range rs {
		assert.Equal(t, paths[i], r.Name)
	}

	paths = append(paths, writeRoster(t, dir, "bad.yaml", "events: -1\n"))
	_, err = LoadAll(context.Background(), paths)
	assert.True(t, errors.Is(err, ErrInvalidRoster))
}

func TestNewScheduler(t *testing.T) {
	r, err := Parse([]byte(sundayRota))
	require.NoError(t, err)

	s, err := r.NewScheduler(scheduler.WithHostsPerEvent(2))
	require.NoError(t, err)
	assert.Equal(t, 2, s.HostsPerEvent(), "caller options override the file")
	assert.Equal(t, scheduler.DefaultMaxHosts, s.MaxHosts())
	assert.Equal(t, 4, s.NumHosts())

	lark, ok := s.Host("lark")
	require.True(t, ok)
	assert.Equal(t, 3, lark.ID())
	limit, capped := lark.MaxAssigned()
	assert.True(t, capped)
	assert.Equal(t, 3, limit)

	mark, _ := s.Host("mark")
	_, capped = mark.MaxAssigned()
	assert.False(t, capped)
}

func TestExampleRosterFile(t *testing.T) {
	r, err := Load(filepath.Join("..", "..", "examples", "rota", "sunday.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sunday-rota", r.Name)

	res := Solve(context.Background(), r, WithVerify())
	require.NoError(t, res.Err)
	assert.True(t, res.OK)
	assert.Contains(t, res.Schedule.Events("ben"), 3, "only ana and ben can take event 3")
}
