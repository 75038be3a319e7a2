// internal/repository/postgres/errors.go
package postgres

import (
	"errors"

	"github.com/lib/pq"

	"fairsplit/pkg/db"
)

const (
	codeUniqueViolation     pq.ErrorCode = "23505"
	codeForeignKeyViolation pq.ErrorCode = "23503"
	codeNumericOutOfRange   pq.ErrorCode = "22003"
)

func pqCode(err error) (pq.ErrorCode, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code, true
	}
	return "", false
}

func isUniqueViolation(err error) bool {
	code, ok := pqCode(err)
	return ok && code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	code, ok := pqCode(err)
	return ok && code == codeForeignKeyViolation
}

func isNumericOutOfRange(err error) bool {
	code, ok := pqCode(err)
	return ok && code == codeNumericOutOfRange
}

// wrapErr annotates a driver error with msg, tagging connectivity failures with
// util.ErrStoreUnavailable so callers can tell them apart from data errors.
func wrapErr(err error, format string, args ...interface{}) error {
	return db.WrapErr(err, format, args...)
}
