package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// SortParams is a parsed "sort" query value such as "-created_at".
type SortParams struct {
	Field string
	Desc  bool
}

// NewPaginationParams clamps page and limit into range and derives the offset.
func NewPaginationParams(page, limit int) PaginationParams {
	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if page > constants.MaxPage {
		page = constants.MaxPage
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	return NewPaginationParams(page, limit)
}

// GetSortParams reads the "sort" query parameter. A leading "-" means descending.
func GetSortParams(c *gin.Context) SortParams {
	return ParseSort(c.Query("sort"))
}

// ParseSort parses a sort expression such as "name" or "-due_date".
func ParseSort(raw string) SortParams {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "-") {
		return SortParams{Field: strings.TrimPrefix(raw, "-"), Desc: true}
	}
	return SortParams{Field: raw}
}

// TotalPages returns the number of pages needed for total items.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}

// NewPaginationResponse builds the pagination metadata for a page of results.
func NewPaginationResponse(params PaginationParams, total int64) PaginationResponse {
	return PaginationResponse{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: TotalPages(total, params.Limit),
	}
}
