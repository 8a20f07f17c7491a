package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"ideaweaver/domain/config"
	pkgerrors "ideaweaver/pkg/errors"
)

// IdeaText is a value object for the raw text of a captured idea
type IdeaText struct {
	text string
}

// NewIdeaText creates idea text with validation using default configuration
func NewIdeaText(text string) (IdeaText, error) {
	return NewIdeaTextWithConfig(text, config.DefaultDomainConfig())
}

// NewIdeaTextWithConfig creates idea text with validation and configuration
func NewIdeaTextWithConfig(text string, cfg *config.DomainConfig) (IdeaText, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text = strings.TrimSpace(text)

	if text == "" {
		return IdeaText{}, pkgerrors.ErrIdeaTextRequired
	}

	length := utf8.RuneCountInString(text)
	if length < cfg.MinIdeaLength {
		return IdeaText{}, fmt.Errorf("idea text too short: minimum %d characters required", cfg.MinIdeaLength)
	}

	if length > cfg.MaxIdeaLength {
		return IdeaText{}, fmt.Errorf("idea text exceeds maximum length of %d characters", cfg.MaxIdeaLength)
	}

	return IdeaText{text: text}, nil
}

// String returns the raw text
func (t IdeaText) String() string {
	return t.text
}

// IsEmpty checks if the text is empty
func (t IdeaText) IsEmpty() bool {
	return t.text == ""
}

// Equals checks if two idea texts are equal
func (t IdeaText) Equals(other IdeaText) bool {
	return t.text == other.text
}

// WordCount returns the approximate word count
func (t IdeaText) WordCount() int {
	return len(strings.Fields(t.text))
}

// Summary returns a truncated summary of the text
func (t IdeaText) Summary(maxLength int) string {
	if maxLength <= 0 {
		return ""
	}

	if utf8.RuneCountInString(t.text) <= maxLength {
		return t.text
	}

	runes := []rune(t.text)
	return string(runes[:maxLength-3]) + "..."
}

// MarshalJSON implements json.Marshaler
func (t IdeaText) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.text)), nil
}
