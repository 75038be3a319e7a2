// internal/api/types/response.go
package types

// PaginatedResponse is the envelope of paged listings such as a user's balance history.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	TotalCount int64 `json:"total_count"`
}
