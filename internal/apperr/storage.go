package apperr

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqliteCoder is satisfied by *sqlite.Error.
type sqliteCoder interface {
	Code() int
}

var _ sqliteCoder = (*sqlite.Error)(nil)

func sqliteCode(err error) (int, bool) {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code(), true
	}
	var coder sqliteCoder
	if errors.As(err, &coder) {
		return coder.Code(), true
	}
	return 0, false
}

// IsUniqueViolation reports whether err is a primary-key or unique constraint
// failure raised by SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if code, ok := sqliteCode(err); ok {
		switch code {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
		return false
	}
	// Drivers that do not expose extended codes still use SQLite's message.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// FromStorage classifies an error returned by a storage call. Callers handle
// sql.ErrNoRows themselves before calling it, since "no row" means NotFound
// for some operations and success for others.
func FromStorage(op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return Storage(op, err)
}
