// Package repository holds the MySQL data access code.  Repositories
// return the sentinel errors below so that higher layers can tell the
// failure scenarios apart without looking at driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
// Handlers translate it into 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write clashes with existing state, such
// as a duplicate phone number or deleting a client that still has
// reservations.  Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// ErrOverlap is returned by ReservationRepo.Create when another
// non-cancelled reservation of the unit already holds one of the nights.
var ErrOverlap = errors.New("reservation overlaps an existing stay")

// MySQL server error numbers.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
)

func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}
