package queries

import "errors"

// SearchIdeasQuery finds ideas in a profile matching a text query
// and/or tag filter
type SearchIdeasQuery struct {
	ProfileID string   `json:"profile_id"`
	Query     string   `json:"query"`
	Tags      []string `json:"tags"`
	Limit     int      `json:"limit"`
	Offset    int      `json:"offset"`
}

// Validate validates the query
func (q SearchIdeasQuery) Validate() error {
	if q.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	if q.Query == "" && len(q.Tags) == 0 {
		return errors.New("a text query or tag filter is required")
	}
	return nil
}

// SearchIdeasResult represents the result of an idea search
type SearchIdeasResult struct {
	ProfileID string    `json:"profile_id"`
	Ideas     []IdeaDTO `json:"ideas"`
	Total     int       `json:"total"`
}
