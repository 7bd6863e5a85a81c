package shared

import "math"

// DefaultPageSize is used by listings when the caller does not specify one.
const DefaultPageSize = 10

// Pagination contains metadata for paginated listings. Pages are zero-based.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata, clamping page to >= 0.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// ClampPage normalizes a requested page number to >= 0.
func ClampPage(page int) int {
	if page < 0 {
		return 0
	}
	return page
}
