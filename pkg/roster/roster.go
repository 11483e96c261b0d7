// Package roster reads scheduling problems from YAML files and solves
// them with package scheduler.
//
// A roster file describes one recurring series:
//
//	name: sunday-rota
//	events: 4
//	hosts_per_event: 3     # optional, default 3
//	max_hosts: 32          # optional, default 32
//	engine: gini           # optional: gini or gophersat
//	timeout: 30s           # optional, bounds the engine check
//	hosts:
//	  - name: mark
//	    availability: [1, 2, 4]
//	    max_assigned: 2    # optional
//
// Unknown keys are rejected.
package roster

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"github.com/offlinemark/scheduler/pkg/scheduler"
	"github.com/offlinemark/scheduler/pkg/smt"
)

// ErrInvalidRoster is returned for roster files that cannot describe a
// scheduling problem.
var ErrInvalidRoster = errors.New("invalid roster")

// Roster is one scheduling problem.
type Roster struct {
	Name          string        `yaml:"name"`
	Events        int           `yaml:"events"`
	HostsPerEvent *int          `yaml:"hosts_per_event,omitempty"`
	MaxHosts      *int          `yaml:"max_hosts,omitempty"`
	Engine        string        `yaml:"engine,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	Hosts         []Host        `yaml:"hosts"`
}

// Host is one host entry of a roster.
type Host struct {
	Name         string `yaml:"name"`
	Availability []int  `yaml:"availability"`
	MaxAssigned  *int   `yaml:"max_assigned,omitempty"`
}

// Parse decodes and validates a roster document.
func Parse(data []byte) (*Roster, error) {
	var r Roster
	if err := yaml.UnmarshalStrict(data, &r); err != nil {
		return nil, errors.Wrap(ErrInvalidRoster, err.Error())
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Load reads and parses the roster file at path. A roster without a name
// is named after its path.
func Load(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading roster %s", path)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "roster %s", path)
	}
	if r.Name == "" {
		r.Name = path
	}
	return r, nil
}

// LoadAll loads several roster files concurrently. The result follows
// the order of paths; the first failure cancels the remaining loads.
func LoadAll(ctx context.Context, paths []string) ([]*Roster, error) {
	rs := make([]*Roster, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Load(path)
			if err != nil {
				return err
			}
			rs[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Validate checks the settings that New and Register would reject, so a
// bad file is reported before any solving starts. Availability lists are
// not checked: events outside [1, Events] are ignored when solving.
func (r *Roster) Validate() error {
	invalid := func(format string, args ...interface{}) error {
		return errors.Wrapf(ErrInvalidRoster, format, args...)
	}

	if r.Events <= 0 {
		return invalid("events must be > 0, got %d", r.Events)
	}
	if r.HostsPerEvent != nil && *r.HostsPerEvent < 0 {
		return invalid("hosts_per_event must be >= 0, got %d", *r.HostsPerEvent)
	}
	maxHosts := r.maxHosts()
	if maxHosts < 1 || maxHosts > scheduler.MaxHostsLimit {
		return invalid("max_hosts must be in [1, %d], got %d", scheduler.MaxHostsLimit, maxHosts)
	}
	if _, err := smt.BackendByName(r.Engine); err != nil {
		return invalid("engine: %v", err)
	}
	if r.Timeout < 0 {
		return invalid("timeout must not be negative, got %v", r.Timeout)
	}
	if len(r.Hosts) > maxHosts {
		return invalid("%d hosts do not fit max_hosts %d", len(r.Hosts), maxHosts)
	}

	seen := make(map[string]bool, len(r.Hosts))
	for i, h := range r.Hosts {
		switch {
		case h.Name == "":
			return invalid("host %d has no name", i+1)
		case seen[h.Name]:
			return invalid("host %q is listed twice", h.Name)
		case h.MaxAssigned != nil && *h.MaxAssigned < 0:
			return invalid("host %q has negative max_assigned %d", h.Name, *h.MaxAssigned)
		}
		seen[h.Name] = true
	}
	return nil
}

func (r *Roster) maxHosts() int {
	if r.MaxHosts != nil {
		return *r.MaxHosts
	}
	return scheduler.DefaultMaxHosts
}

// NewScheduler builds a scheduler for the roster and registers its hosts
// in file order. opts are applied after the roster's own settings and
// override them.
func (r *Roster) NewScheduler(opts ...scheduler.Option) (*scheduler.Scheduler, error) {
	var base []scheduler.Option
	if r.HostsPerEvent != nil {
		base = append(base, scheduler.WithHostsPerEvent(*r.HostsPerEvent))
	}
	if r.MaxHosts != nil {
		base = append(base, scheduler.WithMaxHosts(*r.MaxHosts))
	}
	if r.Engine != "" {
		base = append(base, scheduler.WithBackend(r.Engine))
	}
	if r.Timeout > 0 {
		base = append(base, scheduler.WithTimeout(r.Timeout))
	}

	s, err := scheduler.New(r.Events, append(base, opts...)...)
	if err != nil {
		return nil, errors.Wrapf(err, "roster %s", r.Name)
	}
	for _, h := range r.Hosts {
		var hopts []scheduler.HostOption
		if h.MaxAssigned != nil {
			hopts = append(hopts, scheduler.WithMaxAssigned(*h.MaxAssigned))
		}
		if err := s.Register(h.Name, h.Availability, hopts...); err != nil {
			return nil, errors.Wrapf(err, "roster %s", r.Name)
		}
	}
	return s, nil
}
