package commands

import "errors"

// ResetProfileCommand clears a profile's ideas, edges, and vector
// partition. The profile record itself survives.
type ResetProfileCommand struct {
	ProfileID string `json:"profile_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd ResetProfileCommand) Validate() error {
	if cmd.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	return nil
}

// DeleteIdeaCommand removes one idea, its edges, and its vector
type DeleteIdeaCommand struct {
	ProfileID string `json:"profile_id" validate:"required,uuid"`
	NodeID    string `json:"node_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd DeleteIdeaCommand) Validate() error {
	if cmd.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}

// UpdateIdeaCommand replaces the text of an idea. The stale embedding
// is recomputed and the idea re-linked.
type UpdateIdeaCommand struct {
	ProfileID string `json:"profile_id" validate:"required,uuid"`
	NodeID    string `json:"node_id" validate:"required,uuid"`
	Text      string `json:"text" validate:"required,max=10000"`
}

// Validate validates the command
func (cmd UpdateIdeaCommand) Validate() error {
	if cmd.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	if cmd.Text == "" {
		return errors.New("idea text is required")
	}
	return nil
}
