package queries

import "errors"

// GetIdeaQuery retrieves a single idea with its immediate neighborhood
type GetIdeaQuery struct {
	ProfileID string `json:"profile_id"`
	NodeID    string `json:"node_id"`
}

// Validate validates the query
func (q GetIdeaQuery) Validate() error {
	if q.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	if q.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}

// GetIdeaResult represents the result of fetching one idea
type GetIdeaResult struct {
	ID        string        `json:"id"`
	ProfileID string        `json:"profile_id"`
	Text      string        `json:"text"`
	Tags      []string      `json:"tags"`
	HasVector bool          `json:"has_vector"`
	Neighbors []NeighborDTO `json:"neighbors"`
	Version   int           `json:"version"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

// NeighborDTO is a linked idea, strongest link first
type NeighborDTO struct {
	NodeID  string  `json:"node_id"`
	Summary string  `json:"summary"`
	Weight  float64 `json:"weight"`
}
