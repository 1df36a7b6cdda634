package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// AuditRepo appends and lists audit entries.  Entries are written inside
// the transaction that made the change they describe; there is no update
// or delete.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// CreateTx inserts e within tx and fills in its ID.
func (r *AuditRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.AuditEntry) error {
	const q = `INSERT INTO audit_logs (reservation_id, actor, action, details, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, e.ReservationID, e.Actor, e.Action, e.Details, e.CreatedAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListByReservation returns the history of a reservation, oldest first.
func (r *AuditRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.AuditEntry, error) {
	const q = `SELECT id, reservation_id, actor, action, details, created_at
		FROM audit_logs WHERE reservation_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.ReservationID, &e.Actor, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
