package commands

import "errors"

// CreateProfileCommand creates a new voice profile. Preset selects the
// autolink policy; empty means the default preset.
type CreateProfileCommand struct {
	Name   string `json:"name" validate:"required,min=1,max=255"`
	Preset string `json:"preset" validate:"omitempty,oneof=default strict loose"`
}

// Validate validates the command
func (cmd CreateProfileCommand) Validate() error {
	if cmd.Name == "" {
		return errors.New("profile name is required")
	}
	if len(cmd.Name) > 255 {
		return errors.New("profile name exceeds maximum length")
	}
	return nil
}

// UpdateProfileCommand renames a profile or changes its autolink policy
type UpdateProfileCommand struct {
	ProfileID string `json:"profile_id" validate:"required,uuid"`
	Name      string `json:"name" validate:"omitempty,min=1,max=255"`
	Preset    string `json:"preset" validate:"omitempty"`

	// Custom policy knobs; applied only when Preset is "custom"
	MinCosine             *float64 `json:"min_cosine" validate:"omitempty,gte=-1,lte=1"`
	MaxDistance           *float64 `json:"max_distance" validate:"omitempty,gte=0,lte=2"`
	StrictMutual          *bool    `json:"strict_mutual"`
	MaxEdges              *int     `json:"max_edges" validate:"omitempty,gte=0"`
	KNeighbors            *int     `json:"k_neighbors" validate:"omitempty,gte=1"`
	FallbackMinCorpusSize *int     `json:"fallback_min_corpus_size" validate:"omitempty,gte=0"`
}

// Validate validates the command
func (cmd UpdateProfileCommand) Validate() error {
	if cmd.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	if cmd.Name == "" && cmd.Preset == "" && !cmd.HasCustomKnobs() {
		return errors.New("nothing to update")
	}
	return nil
}

// HasCustomKnobs reports whether any individual policy knob is set
func (cmd UpdateProfileCommand) HasCustomKnobs() bool {
	return cmd.MinCosine != nil || cmd.MaxDistance != nil || cmd.StrictMutual != nil ||
		cmd.MaxEdges != nil || cmd.KNeighbors != nil || cmd.FallbackMinCorpusSize != nil
}
