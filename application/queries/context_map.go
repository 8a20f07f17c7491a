package queries

import "errors"

// ContextMapQuery finds the ideas in a profile semantically closest to
// a free-text query, without capturing the text as an idea
type ContextMapQuery struct {
	ProfileID string `json:"profile_id"`
	Text      string `json:"text"`
	Limit     int    `json:"limit"`
}

// Validate validates the query
func (q ContextMapQuery) Validate() error {
	if q.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	if q.Text == "" {
		return errors.New("text is required")
	}
	return nil
}

// ContextMatchDTO is one idea ranked against the query text
type ContextMatchDTO struct {
	Idea       IdeaDTO `json:"idea"`
	Similarity float64 `json:"similarity"`
}

// ContextMapResult represents the ranked neighborhood of a query text
type ContextMapResult struct {
	ProfileID string            `json:"profile_id"`
	Matches   []ContextMatchDTO `json:"matches"`
}
