package model

import "time"

// AuditEntry records who did what to a reservation.  Rows are only ever
// inserted.
//
// Fields:
//
//	ID            – primary key identifier.
//	ReservationID – reservation the action applies to.
//	Actor         – username of the staff member, or "public" / "sync".
//	Action        – short label such as "reservation.confirmed".
//	Details       – optional free text (e.g. changed fields).
//	CreatedAt     – when the action happened.
type AuditEntry struct {
	ID            uint64    `json:"id"`             // audit_logs.id
	ReservationID uint64    `json:"reservation_id"` // audit_logs.reservation_id
	Actor         string    `json:"actor"`          // audit_logs.actor
	Action        string    `json:"action"`         // audit_logs.action
	Details       string    `json:"details,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // audit_logs.created_at
}
