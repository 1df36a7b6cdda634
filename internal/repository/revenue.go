package repository

import (
	"context"
	"time"
)

// MonthRevenue is the takings of one calendar month, keyed "2006-01".
type MonthRevenue struct {
	Month        string `json:"month"`
	Reservations int    `json:"reservations"`
	TotalCents   int64  `json:"total_cents"`
}

// UnitRevenue is the takings of one unit.
type UnitRevenue struct {
	UnitID       uint64 `json:"unit_id"`
	UnitName     string `json:"unit_name"`
	Reservations int    `json:"reservations"`
	TotalCents   int64  `json:"total_cents"`
}

// RevenueReport sums confirmed and completed reservations whose check-in
// falls in [From, To).
type RevenueReport struct {
	From       time.Time      `json:"from"`
	To         time.Time      `json:"to"`
	Months     []MonthRevenue `json:"months"`
	Units      []UnitRevenue  `json:"units"`
	TotalCents int64          `json:"total_cents"`
}

const revenueWhere = ` WHERE r.status IN ('confirmed', 'completed') AND r.check_in >= ? AND r.check_in < ?`

// Revenue builds the monthly and per-unit report.
func (r *ReservationRepo) Revenue(ctx context.Context, from, to time.Time) (*RevenueReport, error) {
	rep := &RevenueReport{From: from, To: to, Months: []MonthRevenue{}, Units: []UnitRevenue{}}

	rows, err := r.db.QueryContext(ctx, `SELECT DATE_FORMAT(r.check_in, '%Y-%m') AS month,
		COUNT(*), COALESCE(SUM(r.total_cents), 0)
		FROM reservations r`+revenueWhere+`
		GROUP BY month ORDER BY month`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m MonthRevenue
		if err := rows.Scan(&m.Month, &m.Reservations, &m.TotalCents); err != nil {
			return nil, err
		}
		rep.Months = append(rep.Months, m)
		rep.TotalCents += m.TotalCents
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	urows, err := r.db.QueryContext(ctx, `SELECT u.id, u.name, COUNT(r.id), COALESCE(SUM(r.total_cents), 0)
		FROM reservations r JOIN units u ON u.id = r.unit_id`+revenueWhere+`
		GROUP BY u.id, u.name ORDER BY u.id`, from, to)
	if err != nil {
		return nil, err
	}
	defer urows.Close()
	for urows.Next() {
		var u UnitRevenue
		if err := urows.Scan(&u.UnitID, &u.UnitName, &u.Reservations, &u.TotalCents); err != nil {
			return nil, err
		}
		rep.Units = append(rep.Units, u)
	}
	return rep, urows.Err()
}
