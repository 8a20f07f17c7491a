package queries

import "errors"

// GetGraphQuery retrieves a profile's full idea graph
type GetGraphQuery struct {
	ProfileID string `json:"profile_id"`
}

// Validate validates the query
func (q GetGraphQuery) Validate() error {
	if q.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	return nil
}

// GetGraphResult represents the query result
type GetGraphResult struct {
	ProfileID string     `json:"profile_id"`
	Ideas     []IdeaDTO  `json:"ideas"`
	Edges     []EdgeDTO  `json:"edges"`
	Stats     GraphStats `json:"stats"`
}

// IdeaDTO is a data transfer object for ideas
type IdeaDTO struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Summary   string   `json:"summary"`
	Tags      []string `json:"tags"`
	HasVector bool     `json:"has_vector"`
	EdgeCount int      `json:"edge_count"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// EdgeDTO is a data transfer object for edges
type EdgeDTO struct {
	ID         string  `json:"id"`
	SourceID   string  `json:"source_id"`
	TargetID   string  `json:"target_id"`
	Weight     float64 `json:"weight"`
	Provenance string  `json:"provenance"`
}

// GraphStats summarizes the shape of a profile's graph
type GraphStats struct {
	IdeaCount    int     `json:"idea_count"`
	EdgeCount    int     `json:"edge_count"`
	ClusterCount int     `json:"cluster_count"`
	Density      float64 `json:"density"`
}
