// Package repositories provides PostgreSQL-backed implementations of all
// domain repository interfaces for the Gap-Intelligence platform.
package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// rowScanner abstracts pgx.Row and pgx.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// isNoRows reports whether err is the pgx no-rows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
