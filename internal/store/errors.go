package store

import (
	"errors"
	"strings"
)

// ErrDayNotFound reports a toggle against a day number the schedule
// does not contain.
var ErrDayNotFound = errors.New("schedule day not found")

// isSQLiteConflict reports whether the error is a SQLITE_BUSY or
// "database is locked" error. Both are concurrency errors that warrant
// a retry.
func isSQLiteConflict(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY") ||
		strings.Contains(err.Error(), "database is locked")
}
