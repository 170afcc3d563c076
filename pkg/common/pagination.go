package common

import (
	"net/http"
	"strconv"
)

// MaxQueryLimit caps how many items a list endpoint returns per request.
const MaxQueryLimit = 100

// QueryLimit extracts the "limit" query parameter from a request,
// falling back to the given default when absent or invalid.
func QueryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > MaxQueryLimit {
		return MaxQueryLimit
	}
	return limit
}
