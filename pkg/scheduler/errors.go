package scheduler

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned for scheduler or host settings that can
	// never describe a valid problem, such as a non-positive event count.
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrCapacityExceeded is returned by Register when a new host would
	// not fit in the assignment bit-vectors.
	ErrCapacityExceeded = errors.New("host capacity exceeded")

	// ErrInvalidSchedule is returned by Verify for schedules that break a
	// constraint of the current registry.
	ErrInvalidSchedule = errors.New("invalid schedule")
)
