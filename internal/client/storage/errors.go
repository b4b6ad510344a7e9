package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrStorageUnavailable means the store is not open.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageIO is any other engine fault.
	ErrStorageIO = errors.New("storage i/o error")
	// ErrConstraint is returned for duplicate keys.
	ErrConstraint = errors.New("constraint violation")
	// ErrNotFound means no record has the requested key.
	ErrNotFound = errors.New("not found")
)

// Classify wraps a database error with the matching store error kind.
// Errors that already carry a kind and context errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrStorageIO) ||
		errors.Is(err, ErrConstraint) || errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %w", ErrConstraint, err)
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
			return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
		}
		return fmt.Errorf("%w: %w", ErrStorageIO, err)
	}

	// database/sql does not export its closed-handle error.
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	return fmt.Errorf("%w: %w", ErrStorageIO, err)
}
