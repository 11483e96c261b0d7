package smt

import "github.com/pkg/errors"

var (
	// ErrIncomplete is returned by Check when the backend stopped before
	// deciding the assertions, typically on cancellation or timeout.
	ErrIncomplete = errors.New("solver stopped before an answer was found")

	// ErrNoScope is returned by Pop on an empty scope stack.
	ErrNoScope = errors.New("no scope to pop")

	// ErrNoModel is returned when a model is requested without a
	// preceding sat answer.
	ErrNoModel = errors.New("no model available")

	// ErrUnknownBackend is returned for unrecognised backend names.
	ErrUnknownBackend = errors.New("unknown solver backend")
)
