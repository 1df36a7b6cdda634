package model

import "time"

// Reservation statuses.  Completed is reached only through check-out.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// Reservation origins.
const (
	OriginDirect   = "direct"
	OriginExternal = "external"
)

// Reservation is a stay of one client in one unit.  CheckOut is
// exclusive: the checkout day is not an occupied night.
//
// Fields:
//
//	ID            – primary key identifier.
//	UnitID        – unit being reserved.
//	ClientID      – guest who made the reservation.
//	CheckIn       – first occupied night (calendar date, UTC midnight).
//	CheckOut      – departure day (exclusive).
//	Status        – pending, confirmed, cancelled or completed.
//	Adults        – adult guests.
//	Children      – child guests.
//	TotalCents    – quoted total for the stay.
//	DepositCents  – deposit owed up front (half of the total).
//	DepositPaid   – deposit received.
//	FullPaid      – balance received.
//	CheckedInAt   – set by the check-in transition.
//	CheckedOutAt  – set by the check-out transition.
//	Rating        – 1..5, only after check-out.
//	Feedback      – guest feedback, only after check-out.
//	Origin        – direct or external (channel import).
//	Notes         – staff notes.
type Reservation struct {
	ID           uint64     `json:"id"`                       // reservations.id
	UnitID       uint64     `json:"unit_id"`                  // reservations.unit_id
	ClientID     uint64     `json:"client_id"`                // reservations.client_id
	CheckIn      time.Time  `json:"check_in"`                 // reservations.check_in
	CheckOut     time.Time  `json:"check_out"`                // reservations.check_out
	Status       string     `json:"status"`                   // reservations.status
	Adults       int        `json:"adults"`                   // reservations.adults
	Children     int        `json:"children"`                 // reservations.children
	TotalCents   int64      `json:"total_cents"`              // reservations.total_cents
	DepositCents int64      `json:"deposit_cents"`            // reservations.deposit_cents
	DepositPaid  bool       `json:"deposit_paid"`             // reservations.deposit_paid
	FullPaid     bool       `json:"full_paid"`                // reservations.full_paid
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`  // reservations.checked_in_at
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty"` // reservations.checked_out_at
	Rating       *int       `json:"rating,omitempty"`         // reservations.rating
	Feedback     string     `json:"feedback,omitempty"`       // reservations.feedback
	Origin       string     `json:"origin"`                   // reservations.origin
	Notes        string     `json:"notes,omitempty"`          // reservations.notes
	CreatedAt    time.Time  `json:"created_at"`               // reservations.created_at
	UpdatedAt    time.Time  `json:"updated_at"`               // reservations.updated_at
}

// Active reports whether the reservation still occupies its nights.
func (r Reservation) Active() bool { return r.Status != StatusCancelled }

// ReservationDetail is a reservation joined with its client and unit for
// listings and exports.
type ReservationDetail struct {
	Reservation
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	UnitName    string `json:"unit_name"`
}
