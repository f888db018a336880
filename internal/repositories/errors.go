package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// Store error taxonomy. Constraint races on github_id are resolved internally
// by re-lookup and never surface to callers.
var (
	// ErrMissingField indicates a required source identifier was absent
	// from the payload. Non-retryable, the event should be dropped.
	ErrMissingField = errors.New("required field is missing")

	// ErrInvalidForeignKey indicates a referenced row does not exist,
	// which means the caller sequenced its writes incorrectly.
	ErrInvalidForeignKey = errors.New("referenced entity does not exist")

	// ErrConnectionUnavailable indicates the store is unreachable.
	// Retryable by the caller with backoff.
	ErrConnectionUnavailable = errors.New("database connection unavailable")

	// ErrTimeout indicates the operation exceeded the connection deadline.
	ErrTimeout = errors.New("database operation timed out")
)

// isUniqueConstraint reports whether err is a UNIQUE violation, the signal
// that a concurrent insert won the race for the same source id.
func isUniqueConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// mapError converts driver-level failures into the store error taxonomy
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return fmt.Errorf("%w: %v", ErrInvalidForeignKey, err)
		}
		if sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if sqliteErr.Code == sqlite3.ErrCantOpen {
			return fmt.Errorf("%w: %v", ErrConnectionUnavailable, err)
		}
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", ErrConnectionUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return err
}
