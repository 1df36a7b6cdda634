// Package queue defines the reservation events exchanged over RabbitMQ and
// the consumer that records them.
package queue

import (
	"time"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// ReservationQueue is the durable queue every lifecycle event goes to.
const ReservationQueue = "reservation.events"

// ReservationEvent is published after a reservation change has been
// committed.  It carries enough to log or notify without reading the
// database.  Type is the audit action, e.g. "reservation.confirmed".
type ReservationEvent struct {
	Type          string    `json:"type"`
	ReservationID uint64    `json:"reservation_id"`
	UnitID        uint64    `json:"unit_id"`
	ClientID      uint64    `json:"client_id"`
	Status        string    `json:"status"`
	Origin        string    `json:"origin"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	TotalCents    int64     `json:"total_cents"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewReservationEvent builds the event for r after entry was stored.
func NewReservationEvent(r model.Reservation, entry model.AuditEntry) ReservationEvent {
	return ReservationEvent{
		Type:          entry.Action,
		ReservationID: r.ID,
		UnitID:        r.UnitID,
		ClientID:      r.ClientID,
		Status:        r.Status,
		Origin:        r.Origin,
		CheckIn:       r.CheckIn.Format("2006-01-02"),
		CheckOut:      r.CheckOut.Format("2006-01-02"),
		TotalCents:    r.TotalCents,
		Actor:         entry.Actor,
		OccurredAt:    entry.CreatedAt.UTC(),
	}
}
