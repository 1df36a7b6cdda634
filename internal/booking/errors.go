// Package booking holds the rules that decide which stays can be sold and
// for how much: night arithmetic, availability, pricing and the
// reservation lifecycle.  Nothing in here performs I/O.
package booking

import (
	"fmt"
	"time"
)

// InvalidRangeError is returned when check-out is not strictly after
// check-in, or a date cannot be parsed.
type InvalidRangeError struct {
	CheckIn  time.Time
	CheckOut time.Time
	Reason   string
}

func (e *InvalidRangeError) Error() string {
	if e.Reason != "" {
		return "invalid date range: " + e.Reason
	}
	return fmt.Sprintf("invalid date range: check-out %s must be after check-in %s",
		e.CheckOut.Format(DateLayout), e.CheckIn.Format(DateLayout))
}

// UnavailableRangeError is returned when a night of the requested stay is
// already taken or lies in the past.  ConflictID is set when the conflict
// is known to come from a specific reservation.
type UnavailableRangeError struct {
	UnitID     uint64
	Night      time.Time
	ConflictID uint64
}

func (e *UnavailableRangeError) Error() string {
	if e.Night.IsZero() {
		return fmt.Sprintf("unit %d is not available for the requested dates", e.UnitID)
	}
	return fmt.Sprintf("unit %d is not available on %s", e.UnitID, e.Night.Format(DateLayout))
}

// CapacityExceededError names the guest limit of the unit.
type CapacityExceededError struct {
	UnitID    uint64
	Limit     int
	Requested int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("unit %d accepts at most %d guests, %d requested", e.UnitID, e.Limit, e.Requested)
}

// InvalidTransitionError is returned for a lifecycle move the current
// state does not allow.
type InvalidTransitionError struct {
	From   string
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a reservation that is %s", e.Action, e.From)
}

// NotEligibleError is returned when feedback is recorded before the guest
// has checked out.
type NotEligibleError struct {
	ReservationID uint64
}

func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("reservation %d is not checked out yet", e.ReservationID)
}

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }
