package queries

import "errors"

// ListProfilesQuery lists voice profiles
type ListProfilesQuery struct {
	Limit  int
	Offset int
}

// Validate validates the query
func (q ListProfilesQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if q.Offset < 0 {
		return errors.New("offset cannot be negative")
	}
	return nil
}

// ListProfilesResult represents the result of listing profiles
type ListProfilesResult struct {
	Profiles   []ProfileSummary `json:"profiles"`
	TotalCount int              `json:"totalCount"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset"`
}

// ProfileSummary represents a summary of a profile
type ProfileSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Preset    string `json:"preset"`
	IdeaCount int    `json:"ideaCount"`
	EdgeCount int    `json:"edgeCount"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}
