// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the booking service to distinguish between different
// failure scenarios without string matching. ErrSoldOut is an expected
// business outcome rather than an internal error; ErrBusy marks
// transient lock contention that the booking layer may retry.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEventNotFound is returned when the requested event does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrSoldOut is returned when an event has no AVAILABLE ticket left.
// It is surfaced verbatim to the end user as an HTTP 409 response and
// must never be conflated with ErrBusy.
var ErrSoldOut = errors.New("sold out")

// ErrBusy is returned when the allocation transaction lost a lock race
// with a concurrent purchase for the same event. Callers may retry;
// handlers translate it into HTTP 503 with a Retry-After hint.
var ErrBusy = errors.New("storage busy")

// MySQL server error numbers signalling transient lock contention.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrLockDeadlock    = 1213
)

// isLockContention reports whether err is a MySQL lock-wait timeout or a
// deadlock-victim error. Both mean another transaction currently holds
// the locks this one needed; the transaction was (or must be) rolled
// back and can be safely retried.
func isLockContention(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == mysqlErrLockWaitTimeout || me.Number == mysqlErrLockDeadlock
}
