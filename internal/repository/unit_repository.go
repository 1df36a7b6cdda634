package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// UnitRepo reads and updates cabins.  Units are seeded once and never
// deleted, so there is no Delete.
type UnitRepo struct {
	db *sql.DB
}

func NewUnitRepo(db *sql.DB) *UnitRepo { return &UnitRepo{db: db} }

const unitColumns = `id, name, number, COALESCE(description, ''), capacity, allows_children,
	weekday_rate_cents, weekend_rate_cents, included_adults, extra_adult_fee_cents,
	ical_url, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUnit(s scanner) (model.Unit, error) {
	var u model.Unit
	err := s.Scan(&u.ID, &u.Name, &u.Number, &u.Description, &u.Capacity, &u.AllowsChildren,
		&u.WeekdayRateCents, &u.WeekendRateCents, &u.IncludedAdults, &u.ExtraAdultFeeCents,
		&u.ICalURL, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a unit and fills in its ID.
func (r *UnitRepo) Create(ctx context.Context, u *model.Unit) error {
	const q = `INSERT INTO units (name, number, description, capacity, allows_children,
		weekday_rate_cents, weekend_rate_cents, included_adults, extra_adult_fee_cents, ical_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, u.Name, u.Number, u.Description, u.Capacity, u.AllowsChildren,
		u.WeekdayRateCents, u.WeekendRateCents, u.IncludedAdults, u.ExtraAdultFeeCents, u.ICalURL)
	if err != nil {
		if isMySQLError(err, errDupEntry) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// List returns every unit ordered by number.
func (r *UnitRepo) List(ctx context.Context) ([]model.Unit, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+unitColumns+` FROM units ORDER BY number, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Unit, 0)
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetByID returns ErrNotFound when the unit does not exist.
func (r *UnitRepo) GetByID(ctx context.Context, id uint64) (*model.Unit, error) {
	u, err := scanUnit(r.db.QueryRowContext(ctx, `SELECT `+unitColumns+` FROM units WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateRates sets the weekday and weekend nightly rates.  Existing
// reservations keep the total they were quoted.
func (r *UnitRepo) UpdateRates(ctx context.Context, id uint64, weekdayCents, weekendCents int64) error {
	const q = `UPDATE units SET weekday_rate_cents = ?, weekend_rate_cents = ? WHERE id = ?`
	return r.execOne(ctx, q, id, weekdayCents, weekendCents, id)
}

// UpdateICalURL sets the external channel feed; empty disables syncing.
func (r *UnitRepo) UpdateICalURL(ctx context.Context, id uint64, url string) error {
	return r.execOne(ctx, `UPDATE units SET ical_url = ? WHERE id = ?`, id, url, id)
}

// execOne runs an update on a single unit.  MySQL reports zero affected
// rows when the values did not change, so a miss is confirmed with a
// lookup before returning ErrNotFound.
func (r *UnitRepo) execOne(ctx context.Context, q string, id uint64, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = r.GetByID(ctx, id)
	return err
}
