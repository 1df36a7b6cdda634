package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cabin-booking/internal/model"
)

func TestMessageThreadIsOldestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	t0 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at, id")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reservation_id", "sender", "body", "is_read", "created_at"}).
			AddRow(1, 7, model.SenderClient, "Olá!", false, t0).
			AddRow(2, 7, model.SenderSystem, "Reserva recebida", true, t0.Add(time.Minute)))

	got, err := NewMessageRepo(db).ListByReservation(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.SenderClient, got[0].Sender)
	assert.True(t, got[1].Read)
}

func TestMarkRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMessageRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE messages SET is_read = TRUE")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkRead(context.Background(), 1))

	// already read
	mock.ExpectExec(regexp.QuoteMeta("UPDATE messages SET is_read = TRUE")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM messages")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	require.NoError(t, repo.MarkRead(context.Background(), 2))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE messages SET is_read = TRUE")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM messages")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	assert.ErrorIs(t, repo.MarkRead(context.Background(), 3), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
