package shared

import (
	"net/http"
	"strconv"
)

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ParsePagination reads limit and offset. A zero defaultLimit means
// "everything" unless the caller asks for a page.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	limit := defaultLimit
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Limit: limit, Offset: offset}
}

// Bounds clamps the page to n items and returns the slice bounds. It also
// records n as the total.
func (p *Pagination) Bounds(n int) (int, int) {
	p.Total = n
	start := min(p.Offset, n)
	if p.Limit <= 0 {
		return start, n
	}
	return start, min(start+p.Limit, n)
}
