// internal/service/retry.go
package service

import (
	"context"

	"fairsplit/internal/util"
)

// readWithRetry runs a read-only call and repeats it once when the store reported
// itself unavailable. Writes must never go through here.
func readWithRetry[T any](ctx context.Context, read func() (T, error)) (T, error) {
	v, err := read()
	if err != nil && util.IsError(err, util.ErrStoreUnavailable) && ctx.Err() == nil {
		return read()
	}
	return v, err
}
