package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// MessageRepo stores the conversation attached to each reservation.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create appends m.  An unknown reservation returns ErrNotFound.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	const q = `INSERT INTO messages (reservation_id, sender, body, is_read, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.ReservationID, m.Sender, m.Body, m.Read, m.CreatedAt.UTC())
	if err != nil {
		if isMySQLError(err, errNoReferencedRow) {
			return ErrNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListByReservation returns the thread in the order it was written.
func (r *MessageRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Message, error) {
	const q = `SELECT id, reservation_id, sender, body, is_read, created_at
		FROM messages WHERE reservation_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.ReservationID, &m.Sender, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkRead flags a message as read.  Marking twice is not an error.
func (r *MessageRepo) MarkRead(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM messages WHERE id = ?`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
