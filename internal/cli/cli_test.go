package cli

import (
	"bytes"
	"context"
	"database/sql"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cabin-booking/internal/config"
	"github.com/iliyamo/cabin-booking/internal/model"
	"github.com/iliyamo/cabin-booking/internal/utils"
)

func mockEnv(t *testing.T) (*Env, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Env{
		Config: config.Config{BcryptCost: 4},
		OpenDB: func(context.Context) (*sql.DB, error) { return db, nil },
	}, mock
}

func run(env *Env, args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	root := RootCmd(env)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestSeedSkipsExistingUnits(t *testing.T) {
	env, mock := mockEnv(t)
	insert := regexp.QuoteMeta("INSERT INTO units")
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectClose()

	out, _, err := run(env, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, `unit 1 "Cabana do Lago" created (id 1)`)
	assert.Contains(t, out, "unit 2 already exists, skipped")
	assert.Contains(t, out, "unit 3")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportWritesCSV(t *testing.T) {
	env, mock := mockEnv(t)
	in := time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)
	stamp := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cols := []string{"id", "unit_id", "client_id", "check_in", "check_out", "status",
		"adults", "children", "total_cents", "deposit_cents", "deposit_paid", "full_paid",
		"checked_in_at", "checked_out_at", "rating", "feedback", "origin",
		"notes", "created_at", "updated_at", "client_name", "client_phone", "unit_name"}
	rows := sqlmock.NewRows(cols).AddRow(7, 1, 5, in, in.AddDate(0, 0, 3), model.StatusConfirmed,
		2, 0, 187000, 93500, true, false,
		nil, nil, nil, "", model.OriginDirect,
		"", stamp, stamp, "Ana Souza", "5548999990000", "Cabana do Lago")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.status = ? AND r.check_out > ? ORDER BY r.check_in DESC")).
		WithArgs(model.StatusConfirmed, sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectClose()

	out, errOut, err := run(env, "export", "--status", "confirmed", "--from", "2025-03-01")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID,Client,Phone,Unit"))
	assert.Contains(t, lines[1], "Ana Souza")
	assert.Contains(t, lines[1], "2025-03-13")
	assert.Contains(t, errOut, "1 reservations exported")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportRejectsBadDate(t *testing.T) {
	env, mock := mockEnv(t)
	_, _, err := run(env, "export", "--to", "13/03/2025")
	assert.ErrorContains(t, err, "--to")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate(t *testing.T) {
	env, mock := mockEnv(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (username, password_hash, full_name, role)")).
		WithArgs("marta", sqlmock.AnyArg(), "Marta Lima", model.RoleAdmin).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectClose()

	out, _, err := run(env, "user", "create", "Marta", "--name", "Marta Lima", "--role", "admin", "--password", "s3cret-pass")
	require.NoError(t, err)
	assert.Contains(t, out, "user marta created (id 5, role admin)")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateChecksInput(t *testing.T) {
	env, mock := mockEnv(t)

	_, _, err := run(env, "user", "create", "marta", "--password", "short")
	assert.ErrorIs(t, err, utils.ErrWeakPassword)

	_, _, err = run(env, "user", "create", "marta", "--role", "owner", "--password", "s3cret-pass")
	assert.ErrorContains(t, err, "--role")

	_, _, err = run(env, "user", "create")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserDisable(t *testing.T) {
	env, mock := mockEnv(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET is_active=? WHERE username=?")).
		WithArgs(false, "marta").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectClose()

	out, _, err := run(env, "user", "disable", "marta")
	require.NoError(t, err)
	assert.Contains(t, out, "user marta disabled")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	env, mock := mockEnv(t)
	for _, table := range []string{"users", "units", "clients", "reservations", "messages", "audit_logs"} {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectClose()

	out, _, err := run(env, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date.")
	assert.NoError(t, mock.ExpectationsWereMet())
}
