package scheduler

import "fmt"

// Host is a registered participant that can be assigned to events.
//
// A Host's id is its bit position in every event's assignment variable.
// Ids are dense, start at 0 and follow registration order; re-registering
// a name updates the host in place and keeps its id.
type Host struct {
	name         string
	id           int
	availability []int
	events       EventSet
	maxAssigned  int
	capped       bool
}

// Name returns the host's unique name.
func (h *Host) Name() string {
	return h.name
}

// ID returns the host's bit position.
func (h *Host) ID() int {
	return h.id
}

// Availability returns the event indices the host was registered with,
// as given, including any duplicates or out-of-range values.
func (h *Host) Availability() []int {
	return append([]int(nil), h.availability...)
}

// Available reports whether the host can attend the 1-based event.
func (h *Host) Available(event int) bool {
	return h.events.Has(event)
}

// MaxAssigned returns the host's assignment cap and whether it has one.
func (h *Host) MaxAssigned() (int, bool) {
	return h.maxAssigned, h.capped
}

func (h *Host) String() string {
	if h.capped {
		return fmt.Sprintf("%s#%d%s<=%d", h.name, h.id, h.events, h.maxAssigned)
	}
	return fmt.Sprintf("%s#%d%s", h.name, h.id, h.events)
}

// HostOption configures a host at registration.
type HostOption func(*hostConfig)

type hostConfig struct {
	maxAssigned int
	capped      bool
}

// WithMaxAssigned caps the number of events the host is assigned to.
// Registering without it leaves the host uncapped, also when an earlier
// registration of the same name had a cap.
func WithMaxAssigned(n int) HostOption {
	return func(c *hostConfig) {
		c.maxAssigned = n
		c.capped = true
	}
}
