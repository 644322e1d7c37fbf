package common

import "net/http"

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
	Total  int64 `json:"total"`
}

// ParseLimitOffset extracts limit and offset query parameters, clamping the
// limit to maxLimit.
func ParseLimitOffset(r *http.Request, defaultLimit, maxLimit int32) (limit, offset int32) {
	limit = int32(AtoiDefault(r.URL.Query().Get("limit"), int(defaultLimit)))
	offset = int32(AtoiDefault(r.URL.Query().Get("offset"), 0))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return
}
