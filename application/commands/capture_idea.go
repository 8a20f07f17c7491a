package commands

import (
	"errors"
	"unicode/utf8"
)

// CaptureIdeaCommand captures a new idea into a profile. Tags are
// optional; when omitted the tagger derives them from the text.
type CaptureIdeaCommand struct {
	ProfileID string   `json:"profile_id" validate:"required,uuid"`
	Text      string   `json:"text" validate:"required,max=10000"`
	Tags      []string `json:"tags" validate:"max=20,dive,min=1,max=50"`

	// SkipAutolink suppresses the follow-up linking pass, for bulk imports
	SkipAutolink bool `json:"skip_autolink"`
}

// Validate validates the command
func (cmd CaptureIdeaCommand) Validate() error {
	if cmd.ProfileID == "" {
		return errors.New("profile ID is required")
	}
	if cmd.Text == "" {
		return errors.New("idea text is required")
	}
	if utf8.RuneCountInString(cmd.Text) > MaxIdeaTextLength {
		return errors.New("idea text exceeds maximum length")
	}
	if len(cmd.Tags) > MaxTags {
		return errors.New("too many tags")
	}
	return nil
}

const (
	MaxIdeaTextLength = 10000
	MaxTags           = 20
)
