package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/model"
)

var (
	checkIn  = time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
	checkOut = time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	stamp    = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

var reservationCols = []string{"id", "unit_id", "client_id", "check_in", "check_out", "status",
	"adults", "children", "total_cents", "deposit_cents", "deposit_paid", "full_paid",
	"checked_in_at", "checked_out_at", "rating", "feedback", "origin",
	"notes", "created_at", "updated_at"}

func reservationRow(rows *sqlmock.Rows, id uint64, status string) *sqlmock.Rows {
	return rows.AddRow(id, 1, 5, checkIn, checkOut, status,
		2, 0, 187000, 93500, false, false,
		nil, nil, nil, "", model.OriginDirect,
		"", stamp, stamp)
}

func newMock(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReservationRepo(db), mock
}

func pendingReservation() *model.Reservation {
	return &model.Reservation{
		UnitID: 1, ClientID: 5, CheckIn: checkIn, CheckOut: checkOut,
		Status: model.StatusPending, Adults: 2, TotalCents: 187000, DepositCents: 93500,
		Origin: model.OriginDirect,
	}
}

func TestCreateInsertsWithAudit(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM units WHERE id = ? FOR UPDATE")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM reservations")).
		WithArgs(1, checkOut, checkIn).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WithArgs(7, "public", booking.ActionCreated, "", stamp).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res := pendingReservation()
	err := repo.Create(context.Background(), res, model.AuditEntry{Actor: "public", Action: booking.ActionCreated, CreatedAt: stamp})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), res.ID)
	assert.Equal(t, stamp, res.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsOverlap(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM reservations")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), pendingReservation(), model.AuditEntry{Actor: "public", CreatedAt: stamp})
	require.ErrorIs(t, err, ErrOverlap)
	var overlap *OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, uint64(3), overlap.ConflictID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnknownUnit(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), pendingReservation(), model.AuditEntry{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateWritesReservationAndAudit(t *testing.T) {
	repo, mock := newMock(t)
	now := stamp.Add(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM reservations r WHERE r.id = ? FOR UPDATE")).
		WithArgs(7).
		WillReturnRows(reservationRow(sqlmock.NewRows(reservationCols), 7, model.StatusPending))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations SET status = ?")).
		WithArgs(model.StatusConfirmed, false, false, nil, nil, nil, "", "", now, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_logs")).
		WithArgs(7, "maria", booking.ActionConfirmed, "", now).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	res, err := repo.Mutate(context.Background(), 7, func(r *model.Reservation) ([]model.AuditEntry, error) {
		tr, err := booking.Confirm(r, "maria", now)
		if err != nil {
			return nil, err
		}
		return []model.AuditEntry{tr.Entry}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, res.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateRollsBackOnRejectedTransition(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WillReturnRows(reservationRow(sqlmock.NewRows(reservationCols), 7, model.StatusPending))
	mock.ExpectRollback()

	_, err := repo.Mutate(context.Background(), 7, func(r *model.Reservation) ([]model.AuditEntry, error) {
		tr, err := booking.CheckIn(r, "maria", stamp)
		return []model.AuditEntry{tr.Entry}, err
	})
	var transErr *booking.InvalidTransitionError
	assert.True(t, errors.As(err, &transErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateUnknownReservation(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).WillReturnRows(sqlmock.NewRows(reservationCols))
	mock.ExpectRollback()

	_, err := repo.Mutate(context.Background(), 99, func(*model.Reservation) ([]model.AuditEntry, error) {
		t.Fatal("fn must not run")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListBuildsFilter(t *testing.T) {
	repo, mock := newMock(t)

	cols := append(append([]string{}, reservationCols...), "client_name", "client_phone", "unit_name")
	rows := sqlmock.NewRows(cols).AddRow(7, 1, 5, checkIn, checkOut, model.StatusConfirmed,
		2, 0, 187000, 93500, true, false,
		nil, nil, nil, "", model.OriginDirect,
		"", stamp, stamp, "Ana", "5511999990000", "Cabana 1")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.status = ? AND r.unit_id = ? ORDER BY r.check_in DESC, r.id DESC LIMIT ?")).
		WithArgs(model.StatusConfirmed, 1, 50).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), ReservationFilter{Status: model.StatusConfirmed, UnitID: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ana", got[0].ClientName)
	assert.Equal(t, "Cabana 1", got[0].UnitName)
	assert.True(t, got[0].DepositPaid)
	assert.Equal(t, checkIn, got[0].CheckIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveByUnit(t *testing.T) {
	repo, mock := newMock(t)
	rating := 5

	rows := sqlmock.NewRows(reservationCols).AddRow(8, 1, 5, checkIn, checkOut, model.StatusCompleted,
		2, 0, 187000, 93500, true, true,
		stamp, stamp, rating, "lovely", model.OriginDirect,
		"", stamp, stamp)
	mock.ExpectQuery(regexp.QuoteMeta("r.status <> 'cancelled' AND r.check_out > ?")).
		WithArgs(1, checkIn).
		WillReturnRows(rows)

	got, err := repo.ListActiveByUnit(context.Background(), 1, checkIn)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Rating)
	assert.Equal(t, 5, *got[0].Rating)
	require.NotNil(t, got[0].CheckedOutAt)
	assert.Equal(t, stamp, *got[0].CheckedOutAt)
}

func TestRevenue(t *testing.T) {
	repo, mock := newMock(t)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	mock.ExpectQuery(regexp.QuoteMeta("DATE_FORMAT(r.check_in, '%Y-%m')")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"month", "n", "total"}).
			AddRow("2025-03", 2, 300000).
			AddRow("2025-04", 1, 98000))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY u.id, u.name")).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "n", "total"}).
			AddRow(1, "Cabana 1", 3, 398000))

	rep, err := repo.Revenue(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(398000), rep.TotalCents)
	assert.Len(t, rep.Months, 2)
	assert.Equal(t, "Cabana 1", rep.Units[0].UnitName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats(t *testing.T) {
	repo, mock := newMock(t)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "n"}).
			AddRow("pending", 2).
			AddRow("confirmed", 5).
			AddRow("cancelled", 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM clients")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(6))
	mock.ExpectQuery(regexp.QuoteMeta("FROM units u ORDER BY u.id")).
		WithArgs(day, day, day).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "current_id", "next_check_in"}).
			AddRow(1, "Cabana 1", 9, checkOut).
			AddRow(2, "Cabana 2", nil, nil))

	st, err := repo.Stats(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, 8, st.Reservations)
	assert.Equal(t, 2, st.Pending)
	assert.Equal(t, 5, st.Confirmed)
	assert.Equal(t, 0, st.Completed)
	assert.Equal(t, 6, st.Clients)

	require.Len(t, st.Units, 2)
	assert.True(t, st.Units[0].Occupied)
	require.NotNil(t, st.Units[0].ReservationID)
	assert.Equal(t, uint64(9), *st.Units[0].ReservationID)
	require.NotNil(t, st.Units[0].NextCheckIn)
	assert.Equal(t, checkOut, *st.Units[0].NextCheckIn)
	assert.False(t, st.Units[1].Occupied)
	assert.Nil(t, st.Units[1].NextCheckIn)
	assert.NoError(t, mock.ExpectationsWereMet())
}
