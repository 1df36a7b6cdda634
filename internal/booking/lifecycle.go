package booking

import (
	"fmt"
	"time"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// Audit actions written by the lifecycle.
const (
	ActionCreated    = "reservation.created"
	ActionConfirmed  = "reservation.confirmed"
	ActionCheckedIn  = "reservation.checked_in"
	ActionCheckedOut = "reservation.checked_out"
	ActionCancelled  = "reservation.cancelled"
	ActionFeedback   = "reservation.feedback"
	ActionPayment    = "reservation.payment"
	ActionNotes      = "reservation.notes"
	ActionImported   = "reservation.imported"
)

// Transition is the outcome of a lifecycle move: the audit entry that has
// to be stored together with the updated reservation.
type Transition struct {
	Entry model.AuditEntry
}

func transition(r *model.Reservation, actor, action, details string, now time.Time) Transition {
	r.UpdatedAt = now
	return Transition{Entry: model.AuditEntry{
		ReservationID: r.ID,
		Actor:         actor,
		Action:        action,
		Details:       details,
		CreatedAt:     now,
	}}
}

// Confirm moves a pending reservation to confirmed.
func Confirm(r *model.Reservation, actor string, now time.Time) (Transition, error) {
	if r.Status != model.StatusPending {
		return Transition{}, &InvalidTransitionError{From: stateName(r), Action: "confirm"}
	}
	r.Status = model.StatusConfirmed
	return transition(r, actor, ActionConfirmed, "", now), nil
}

// CheckIn stamps the arrival of a confirmed reservation.
func CheckIn(r *model.Reservation, actor string, now time.Time) (Transition, error) {
	if r.Status != model.StatusConfirmed || r.CheckedInAt != nil {
		return Transition{}, &InvalidTransitionError{From: stateName(r), Action: "check in"}
	}
	at := now
	r.CheckedInAt = &at
	return transition(r, actor, ActionCheckedIn, "", now), nil
}

// CheckOut stamps the departure and completes the stay.  Feedback can be
// recorded from this point on.
func CheckOut(r *model.Reservation, actor string, now time.Time) (Transition, error) {
	if r.CheckedInAt == nil || r.CheckedOutAt != nil || r.Status == model.StatusCancelled {
		return Transition{}, &InvalidTransitionError{From: stateName(r), Action: "check out"}
	}
	at := now
	r.CheckedOutAt = &at
	r.Status = model.StatusCompleted
	return transition(r, actor, ActionCheckedOut, "", now), nil
}

// Cancel releases the reservation's nights.  A completed stay cannot be
// cancelled retroactively.
func Cancel(r *model.Reservation, actor string, now time.Time) (Transition, error) {
	if r.CheckedOutAt != nil || r.Status == model.StatusCompleted || r.Status == model.StatusCancelled {
		return Transition{}, &InvalidTransitionError{From: stateName(r), Action: "cancel"}
	}
	r.Status = model.StatusCancelled
	return transition(r, actor, ActionCancelled, "", now), nil
}

// RecordFeedback stores the guest rating (1..5) and feedback text.
func RecordFeedback(r *model.Reservation, rating int, feedback, actor string, now time.Time) (Transition, error) {
	if r.CheckedOutAt == nil {
		return Transition{}, &NotEligibleError{ReservationID: r.ID}
	}
	if rating < 1 || rating > 5 {
		return Transition{}, &ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}
	r.Rating = &rating
	r.Feedback = feedback
	return transition(r, actor, ActionFeedback, fmt.Sprintf("rating=%d", rating), now), nil
}

// SetPayment toggles the deposit and full payment flags.  The flags are
// independent of the status; nil leaves a flag untouched.  ok is false
// when nothing changed and no audit entry is due.
func SetPayment(r *model.Reservation, depositPaid, fullPaid *bool, actor string, now time.Time) (Transition, bool) {
	changed := false
	if depositPaid != nil && *depositPaid != r.DepositPaid {
		r.DepositPaid = *depositPaid
		changed = true
	}
	if fullPaid != nil && *fullPaid != r.FullPaid {
		r.FullPaid = *fullPaid
		changed = true
	}
	if !changed {
		return Transition{}, false
	}
	details := fmt.Sprintf("deposit_paid=%t full_paid=%t", r.DepositPaid, r.FullPaid)
	return transition(r, actor, ActionPayment, details, now), true
}

// SetNotes replaces the staff notes.
func SetNotes(r *model.Reservation, notes, actor string, now time.Time) (Transition, bool) {
	if notes == r.Notes {
		return Transition{}, false
	}
	r.Notes = notes
	return transition(r, actor, ActionNotes, "", now), true
}

// ApplyStatus routes a requested status to the matching transition, as
// used by partial updates.
func ApplyStatus(r *model.Reservation, status, actor string, now time.Time) (Transition, error) {
	switch status {
	case model.StatusConfirmed:
		return Confirm(r, actor, now)
	case model.StatusCancelled:
		return Cancel(r, actor, now)
	case model.StatusCompleted:
		return CheckOut(r, actor, now)
	default:
		return Transition{}, &InvalidTransitionError{From: stateName(r), Action: "set status " + status + " on"}
	}
}

func stateName(r *model.Reservation) string {
	return StageOf(*r).Name()
}
