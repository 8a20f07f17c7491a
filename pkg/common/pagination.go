// Package common holds small helpers shared across the HTTP handlers.
package common

import (
	"net/http"
	"strconv"
)

const (
	// DefaultPageLimit is applied when the caller omits a limit
	DefaultPageLimit = 50
	// MaxPageLimit caps how many items a single request may ask for
	MaxPageLimit = 200
)

// PageParams carries limit/offset pagination extracted from a request
type PageParams struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ExtractPageParams reads limit and offset query parameters, clamping
// them to sane bounds. Invalid or missing values fall back to defaults.
func ExtractPageParams(r *http.Request) PageParams {
	params := PageParams{Limit: DefaultPageLimit}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			if limit > MaxPageLimit {
				limit = MaxPageLimit
			}
			params.Limit = limit
		}
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			params.Offset = offset
		}
	}

	return params
}

// PageInfo describes the window a response covers
type PageInfo struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// NewPageInfo builds page metadata for a response
func NewPageInfo(params PageParams, total int) PageInfo {
	return PageInfo{
		Limit:   params.Limit,
		Offset:  params.Offset,
		Total:   total,
		HasMore: params.Offset+params.Limit < total,
	}
}
