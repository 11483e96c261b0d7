package scheduler

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Schedule holds the hosts assigned to each event. Entry i lists the
// hosts of event i+1.
type Schedule [][]string

// Events returns the 1-based events the named host is assigned to.
func (sc Schedule) Events(name string) []int {
	var out []int
	for i, hosts := range sc {
		for _, h := range hosts {
			if h == name {
				out = append(out, i+1)
				break
			}
		}
	}
	return out
}

// String renders one line per event, for example "event 1: mark, bark".
func (sc Schedule) String() string {
	var sb strings.Builder
	for i, hosts := range sc {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "event %d: %s", i+1, strings.Join(hosts, ", "))
	}
	return sb.String()
}

// Verify checks sc against the scheduler's current settings and
// registry. It returns an error wrapping ErrInvalidSchedule that
// describes the first violation found, or nil.
func (s *Scheduler) Verify(sc Schedule) error {
	if len(sc) != s.numEvents {
		return errors.Wrapf(ErrInvalidSchedule, "has %d events, want %d", len(sc), s.numEvents)
	}
	assigned := make(map[string]int)
	for i, hosts := range sc {
		event := i + 1
		if len(hosts) != s.hostsPerEvent {
			return errors.Wrapf(ErrInvalidSchedule, "event %d has %d hosts, want %d", event, len(hosts), s.hostsPerEvent)
		}
		seen := make(map[string]bool, len(hosts))
		for _, name := range hosts {
			if seen[name] {
				return errors.Wrapf(ErrInvalidSchedule, "event %d lists %s twice", event, name)
			}
			seen[name] = true
			h, ok := s.reg.host(name)
			if !ok {
				return errors.Wrapf(ErrInvalidSchedule, "event %d lists unknown host %s", event, name)
			}
			if !h.Available(event) {
				return errors.Wrapf(ErrInvalidSchedule, "host %s cannot attend event %d", name, event)
			}
			assigned[name]++
		}
	}
	for _, h := range s.reg.byID {
		if limit, ok := h.MaxAssigned(); ok && assigned[h.name] > limit {
			return errors.Wrapf(ErrInvalidSchedule, "host %s assigned %d times, cap is %d", h.name, assigned[h.name], limit)
		}
	}
	return nil
}
