package commands

import "errors"

// AutolinkIdeaCommand runs one autolink pass for a single anchor idea.
// Preset selects a named policy; leaving it empty uses the profile's
// configured policy. Unknown preset names fail, never silently default.
type AutolinkIdeaCommand struct {
	ProfileID string `json:"profile_id" validate:"required,uuid"`
	NodeID    string `json:"node_id" validate:"required,uuid"`
	Preset    string `json:"preset" validate:"omitempty"`
}

// Validate validates the command
func (cmd AutolinkIdeaCommand) Validate() error {
	if cmd.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	return nil
}

// AutolinkProfileCommand re-links every under-linked idea in a profile
type AutolinkProfileCommand struct {
	ProfileID string `json:"profile_id" validate:"required,uuid"`
	Preset    string `json:"preset" validate:"omitempty"`
}

// Validate validates the command
func (cmd AutolinkProfileCommand) Validate() error {
	if cmd.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	return nil
}

// LinkIdeasCommand creates a single manual edge between two ideas
type LinkIdeasCommand struct {
	ProfileID string  `json:"profile_id" validate:"required,uuid"`
	SourceID  string  `json:"source_id" validate:"required,uuid"`
	TargetID  string  `json:"target_id" validate:"required,uuid"`
	Weight    float64 `json:"weight" validate:"gte=0,lte=1"`
}

// Validate validates the command
func (cmd LinkIdeasCommand) Validate() error {
	if cmd.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	if cmd.SourceID == "" || cmd.TargetID == "" {
		return errors.New("source and target IDs are required")
	}
	if cmd.SourceID == cmd.TargetID {
		return errors.New("cannot link an idea to itself")
	}
	if cmd.Weight < 0 || cmd.Weight > 1 {
		return errors.New("weight must be between 0 and 1")
	}
	return nil
}
