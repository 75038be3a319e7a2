// pkg/db/errors.go
package db

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// ErrUnavailable tags failures that say nothing about the data: lost or refused
// connections and server shutdowns.
var ErrUnavailable = errors.New("store unavailable")

const (
	codeTooManyConnections pq.ErrorCode = "53300"
	codeAdminShutdown      pq.ErrorCode = "57P01"
	codeCannotConnectNow   pq.ErrorCode = "57P03"

	classConnectionException pq.ErrorClass = "08"
)

// IsUnavailable reports whether err is a connectivity failure.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeTooManyConnections, codeAdminShutdown, codeCannotConnectNow:
			return true
		}
		return pqErr.Code.Class() == classConnectionException
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// WrapErr annotates err with a formatted message, tagging connectivity failures
// with ErrUnavailable so callers can tell them apart from data errors.
func WrapErr(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if IsUnavailable(err) && !errors.Is(err, ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", msg, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
