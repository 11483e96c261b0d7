package scheduler

import "github.com/pkg/errors"

// registry is the append-only set of hosts of one Scheduler, indexed both
// by name and by id. Both indexes hold the same *Host.
type registry struct {
	numEvents int
	maxHosts  int
	byID      []*Host
	byName    map[string]*Host
}

func newRegistry(numEvents, maxHosts int) *registry {
	return &registry{
		numEvents: numEvents,
		maxHosts:  maxHosts,
		byName:    make(map[string]*Host),
	}
}

// register creates or updates the named host. created reports whether a
// new id was allocated.
func (r *registry) register(name string, availability []int, opts ...HostOption) (h *Host, created bool, err error) {
	if name == "" {
		return nil, false, errors.Wrap(ErrInvalidConfig, "host name is empty")
	}
	var cfg hostConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.capped && cfg.maxAssigned < 0 {
		return nil, false, errors.Wrapf(ErrInvalidConfig, "host %q has negative cap %d", name, cfg.maxAssigned)
	}

	h, ok := r.byName[name]
	if !ok {
		if len(r.byID) >= r.maxHosts {
			return nil, false, errors.Wrapf(ErrCapacityExceeded, "cannot register %q: all %d host slots are taken", name, r.maxHosts)
		}
		h = &Host{name: name, id: len(r.byID)}
		r.byID = append(r.byID, h)
		r.byName[name] = h
	}
	h.availability = append([]int(nil), availability...)
	h.events = NewEventSet(r.numEvents, availability)
	h.maxAssigned = cfg.maxAssigned
	h.capped = cfg.capped
	return h, !ok, nil
}

func (r *registry) host(name string) (*Host, bool) {
	h, ok := r.byName[name]
	return h, ok
}

func (r *registry) hostByID(id int) (*Host, bool) {
	if id < 0 || id >= len(r.byID) {
		return nil, false
	}
	return r.byID[id], true
}

func (r *registry) hosts() []*Host {
	return append([]*Host(nil), r.byID...)
}

func (r *registry) len() int {
	return len(r.byID)
}
