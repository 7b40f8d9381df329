package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	return pgErrorCode(err) == "23505"
}

// IsPgUndefinedTableError checks if error is caused by a missing table,
// which usually means EnsureSchema was not run for this prefix
func IsPgUndefinedTableError(err error) bool {
	return pgErrorCode(err) == "42P01"
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
