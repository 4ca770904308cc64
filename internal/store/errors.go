package store

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by store operations. Callers discriminate with
// errors.Is; the HTTP layer maps each kind to a status code.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrNoAvailability means a lot has no available spot to allocate.
	ErrNoAvailability = errors.New("no available spot in lot")

	// ErrConflict means the operation would violate an invariant, such as
	// deleting an occupied spot or registering a duplicate email.
	ErrConflict = errors.New("operation conflicts with current state")

	// ErrAlreadyReleased guards against double release of a reservation.
	ErrAlreadyReleased = errors.New("reservation already released")

	// ErrNotOccupied means a spot detail was requested for a free spot.
	ErrNotOccupied = errors.New("spot is not occupied")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CapacityError reports a resize that would strand occupied spots. The whole
// resize is rejected and no spots are removed.
type CapacityError struct {
	Occupied  int64
	Requested int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("cannot resize below %d occupied spots (requested capacity %d)", e.Occupied, e.Requested)
}
