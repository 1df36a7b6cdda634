package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// ReservationRepo stores reservations.  Every write that changes a
// reservation also appends its audit entries in the same transaction.
type ReservationRepo struct {
	db    *sql.DB
	audit *AuditRepo
}

// NewReservationRepo returns a ReservationRepo bound to db.
func NewReservationRepo(db *sql.DB) *ReservationRepo {
	return &ReservationRepo{db: db, audit: NewAuditRepo(db)}
}

// DB exposes the handle for callers that manage their own transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// OverlapError is ErrOverlap with the id of the reservation already
// holding the nights.
type OverlapError struct {
	ConflictID uint64
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s (reservation %d)", ErrOverlap.Error(), e.ConflictID)
}

func (e *OverlapError) Is(target error) bool { return target == ErrOverlap }

// ReservationFilter narrows List.  Zero values mean "any".  From and To
// select stays that occupy at least one night of [From, To).
type ReservationFilter struct {
	Status     string
	UnitID     uint64
	ClientID   uint64
	From       time.Time
	To         time.Time
	ActiveOnly bool
	Limit      int
}

const reservationColumns = `r.id, r.unit_id, r.client_id, r.check_in, r.check_out, r.status,
	r.adults, r.children, r.total_cents, r.deposit_cents, r.deposit_paid, r.full_paid,
	r.checked_in_at, r.checked_out_at, r.rating, COALESCE(r.feedback, ''), r.origin,
	COALESCE(r.notes, ''), r.created_at, r.updated_at`

func scanReservation(s scanner, extra ...any) (model.Reservation, error) {
	var (
		res    model.Reservation
		inAt   sql.NullTime
		outAt  sql.NullTime
		rating sql.NullInt64
	)
	dest := []any{&res.ID, &res.UnitID, &res.ClientID, &res.CheckIn, &res.CheckOut, &res.Status,
		&res.Adults, &res.Children, &res.TotalCents, &res.DepositCents, &res.DepositPaid, &res.FullPaid,
		&inAt, &outAt, &rating, &res.Feedback, &res.Origin,
		&res.Notes, &res.CreatedAt, &res.UpdatedAt}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return res, err
	}
	if inAt.Valid {
		t := inAt.Time.UTC()
		res.CheckedInAt = &t
	}
	if outAt.Valid {
		t := outAt.Time.UTC()
		res.CheckedOutAt = &t
	}
	if rating.Valid {
		n := int(rating.Int64)
		res.Rating = &n
	}
	return res, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

// Create inserts res atomically with respect to other bookings of the
// same unit.  The unit row is locked, the overlap check is repeated under
// the lock and only then is the row inserted together with entry.  A
// clash returns an *OverlapError (errors.Is ErrOverlap); an unknown unit
// returns ErrNotFound.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation, entry model.AuditEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var unitID uint64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM units WHERE id = ? FOR UPDATE`, res.UnitID).Scan(&unitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	const overlapQ = `SELECT id FROM reservations
		WHERE unit_id = ? AND status <> 'cancelled' AND check_in < ? AND check_out > ?
		ORDER BY check_in LIMIT 1`
	var conflict uint64
	err = tx.QueryRowContext(ctx, overlapQ, unitID, res.CheckOut, res.CheckIn).Scan(&conflict)
	switch {
	case err == nil:
		return &OverlapError{ConflictID: conflict}
	case !errors.Is(err, sql.ErrNoRows):
		return err
	}

	if res.CreatedAt.IsZero() {
		res.CreatedAt = entry.CreatedAt
	}
	res.UpdatedAt = res.CreatedAt
	const insertQ = `INSERT INTO reservations (unit_id, client_id, check_in, check_out, status,
		adults, children, total_cents, deposit_cents, deposit_paid, full_paid, origin, notes,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, insertQ, res.UnitID, res.ClientID, res.CheckIn, res.CheckOut, res.Status,
		res.Adults, res.Children, res.TotalCents, res.DepositCents, res.DepositPaid, res.FullPaid, res.Origin, res.Notes,
		res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	entry.ReservationID = res.ID
	if err := r.audit.CreateTx(ctx, tx, &entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Mutate loads the reservation under a row lock, lets fn change it and
// writes it back along with the audit entries fn returns.  When fn fails
// nothing is written and its error is returned unchanged.
func (r *ReservationRepo) Mutate(ctx context.Context, id uint64, fn func(*model.Reservation) ([]model.AuditEntry, error)) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.id = ? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entries, err := fn(&res)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &res, nil
	}

	const updateQ = `UPDATE reservations SET status = ?, deposit_paid = ?, full_paid = ?,
		checked_in_at = ?, checked_out_at = ?, rating = ?, feedback = ?, notes = ?, updated_at = ?
		WHERE id = ?`
	if _, err := tx.ExecContext(ctx, updateQ, res.Status, res.DepositPaid, res.FullPaid,
		nullTime(res.CheckedInAt), nullTime(res.CheckedOutAt), nullInt(res.Rating), res.Feedback, res.Notes,
		res.UpdatedAt, res.ID); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].ReservationID = res.ID
		if err := r.audit.CreateTx(ctx, tx, &entries[i]); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &res, nil
}

const detailFrom = ` FROM reservations r
	JOIN clients c ON c.id = r.client_id
	JOIN units u ON u.id = r.unit_id`

func scanDetail(s scanner) (model.ReservationDetail, error) {
	var d model.ReservationDetail
	res, err := scanReservation(s, &d.ClientName, &d.ClientPhone, &d.UnitName)
	d.Reservation = res
	return d, err
}

// GetByID returns the reservation with its client and unit names.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	d, err := scanDetail(r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+`, c.name, c.phone, u.name`+detailFrom+` WHERE r.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// List returns reservations matching f, latest check-in first.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.ReservationDetail, error) {
	where := []string{}
	args := []any{}
	if f.Status != "" {
		where = append(where, "r.status = ?")
		args = append(args, f.Status)
	}
	if f.ActiveOnly {
		where = append(where, "r.status <> 'cancelled'")
	}
	if f.UnitID != 0 {
		where = append(where, "r.unit_id = ?")
		args = append(args, f.UnitID)
	}
	if f.ClientID != 0 {
		where = append(where, "r.client_id = ?")
		args = append(args, f.ClientID)
	}
	if !f.To.IsZero() {
		where = append(where, "r.check_in < ?")
		args = append(args, f.To)
	}
	if !f.From.IsZero() {
		where = append(where, "r.check_out > ?")
		args = append(args, f.From)
	}

	q := `SELECT ` + reservationColumns + `, c.name, c.phone, u.name` + detailFrom
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY r.check_in DESC, r.id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListActiveByUnit returns the non-cancelled reservations of a unit that
// still occupy a night on or after from.
func (r *ReservationRepo) ListActiveByUnit(ctx context.Context, unitID uint64, from time.Time) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations r
		WHERE r.unit_id = ? AND r.status <> 'cancelled' AND r.check_out > ?
		ORDER BY r.check_in`
	rows, err := r.db.QueryContext(ctx, q, unitID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ExistsExternal reports whether a channel import for exactly this unit
// and these dates was already stored, whatever its status.
func (r *ReservationRepo) ExistsExternal(ctx context.Context, unitID uint64, checkIn, checkOut time.Time) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations
		WHERE unit_id = ? AND check_in = ? AND check_out = ? AND origin = 'external'`
	var n int
	if err := r.db.QueryRowContext(ctx, q, unitID, checkIn, checkOut).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
