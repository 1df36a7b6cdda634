package repository

import (
	"context"
	"time"
)

// UnitStatus is where a unit stands on a given day.
type UnitStatus struct {
	UnitID        uint64     `json:"unit_id"`
	UnitName      string     `json:"unit_name"`
	Occupied      bool       `json:"occupied"`
	ReservationID *uint64    `json:"reservation_id,omitempty"` // the stay covering the day
	NextCheckIn   *time.Time `json:"next_check_in,omitempty"`
}

// Stats is the back-office dashboard summary.
type Stats struct {
	Day          time.Time    `json:"day"`
	Reservations int          `json:"reservations"`
	Pending      int          `json:"pending"`
	Confirmed    int          `json:"confirmed"`
	Completed    int          `json:"completed"`
	Cancelled    int          `json:"cancelled"`
	Clients      int          `json:"clients"`
	Units        []UnitStatus `json:"units"`
}

// Stats counts reservations by status and clients, and reports for every
// unit whether a live stay covers day and when the next one starts.
func (r *ReservationRepo) Stats(ctx context.Context, day time.Time) (*Stats, error) {
	st := &Stats{Day: day, Units: []UnitStatus{}}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		switch status {
		case "pending":
			st.Pending = n
		case "confirmed":
			st.Confirmed = n
		case "completed":
			st.Completed = n
		case "cancelled":
			st.Cancelled = n
		}
		st.Reservations += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&st.Clients); err != nil {
		return nil, err
	}

	urows, err := r.db.QueryContext(ctx, `SELECT u.id, u.name,
		(SELECT r.id FROM reservations r
			WHERE r.unit_id = u.id AND r.status <> 'cancelled' AND r.check_in <= ? AND r.check_out > ?
			ORDER BY r.check_in LIMIT 1) AS current_id,
		(SELECT MIN(r.check_in) FROM reservations r
			WHERE r.unit_id = u.id AND r.status <> 'cancelled' AND r.check_in > ?) AS next_check_in
		FROM units u ORDER BY u.id`, day, day, day)
	if err != nil {
		return nil, err
	}
	defer urows.Close()
	for urows.Next() {
		var u UnitStatus
		if err := urows.Scan(&u.UnitID, &u.UnitName, &u.ReservationID, &u.NextCheckIn); err != nil {
			return nil, err
		}
		u.Occupied = u.ReservationID != nil
		st.Units = append(st.Units, u)
	}
	return st, urows.Err()
}
