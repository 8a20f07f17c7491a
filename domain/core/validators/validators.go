package validators

import (
	"fmt"
	"regexp"
	"strings"

	"ideaweaver/domain/core/valueobjects"
	"ideaweaver/pkg/errors"
)

// IdeaValidator validates idea-related domain rules
type IdeaValidator struct {
	textMinLength int
	textMaxLength int
	tagMaxLength  int
	maxTags       int
	tagPattern    *regexp.Regexp
}

// NewIdeaValidator creates a new idea validator with default rules
func NewIdeaValidator() *IdeaValidator {
	return &IdeaValidator{
		textMinLength: 1,
		textMaxLength: 10000,
		tagMaxLength:  50,
		maxTags:       20,
		tagPattern:    regexp.MustCompile(`^[a-zA-Z0-9_-]+$`),
	}
}

// ValidateIdeaText validates the text value object
func (v *IdeaValidator) ValidateIdeaText(text valueobjects.IdeaText) error {
	validationErrors := errors.NewValidationErrors()

	trimmed := strings.TrimSpace(text.String())

	if len(trimmed) < v.textMinLength {
		validationErrors.AddError(errors.ErrIdeaTextRequired)
	}

	if len(trimmed) > v.textMaxLength {
		validationErrors.AddError(errors.NewDomainError(
			errors.DomainValidationError,
			"IDEA_TEXT_TOO_LONG",
			fmt.Sprintf("Idea text exceeds maximum length of %d characters", v.textMaxLength),
		).WithDetail("actual_length", len(trimmed)))
	}

	if strings.Contains(trimmed, "<script>") || strings.Contains(trimmed, "javascript:") {
		validationErrors.AddError(errors.NewDomainError(
			errors.DomainValidationError,
			"MALICIOUS_CONTENT",
			"Idea text contains potentially malicious code",
		).WithDetail("field", "text"))
	}

	if validationErrors.HasErrors() {
		return validationErrors
	}

	return nil
}

// ValidateTags validates a list of tags
func (v *IdeaValidator) ValidateTags(tags []string) error {
	if len(tags) > v.maxTags {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"TOO_MANY_TAGS",
			fmt.Sprintf("Cannot have more than %d tags", v.maxTags),
		).WithDetail("field", "tags").WithDetail("count", len(tags))
	}

	for _, tag := range tags {
		if err := v.validateTag(tag); err != nil {
			return err
		}
	}

	return nil
}

// validateTag validates a single tag
func (v *IdeaValidator) validateTag(tag string) error {
	tag = strings.TrimSpace(tag)

	if tag == "" {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"EMPTY_TAG",
			"Tag cannot be empty",
		).WithDetail("field", "tags")
	}

	if len(tag) > v.tagMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"TAG_TOO_LONG",
			fmt.Sprintf("Tag exceeds maximum length of %d characters", v.tagMaxLength),
		).WithDetail("field", "tags").WithDetail("tag", tag)
	}

	if !v.tagPattern.MatchString(tag) {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_TAG_FORMAT",
			"Tag contains invalid characters",
		).WithDetail("field", "tags").WithDetail("tag", tag)
	}

	return nil
}

// ProfileValidator validates profile-related domain rules
type ProfileValidator struct {
	nameMinLength    int
	nameMaxLength    int
	maxIdeasPerVoice int
}

// NewProfileValidator creates a new profile validator
func NewProfileValidator() *ProfileValidator {
	return &ProfileValidator{
		nameMinLength:    1,
		nameMaxLength:    255,
		maxIdeasPerVoice: 100000,
	}
}

// ValidateProfileName validates the profile name
func (v *ProfileValidator) ValidateProfileName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < v.nameMinLength {
		return errors.ErrProfileNameRequired
	}

	if len(name) > v.nameMaxLength {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"PROFILE_NAME_TOO_LONG",
			"Profile name exceeds maximum length",
		).WithDetail("max_length", v.nameMaxLength)
	}

	return nil
}

// ValidateIdeaCount validates the number of ideas in a profile
func (v *ProfileValidator) ValidateIdeaCount(count int) error {
	if count > v.maxIdeasPerVoice {
		return errors.NewDomainError(
			errors.DomainBusinessRuleError,
			"IDEA_LIMIT_EXCEEDED",
			"Maximum number of ideas in profile exceeded",
		).WithDetail("current", count).WithDetail("limit", v.maxIdeasPerVoice)
	}

	return nil
}

// EdgeValidator validates edge-related domain rules
type EdgeValidator struct{}

// NewEdgeValidator creates a new edge validator
func NewEdgeValidator() *EdgeValidator {
	return &EdgeValidator{}
}

// ValidateEdge validates an edge creation
func (v *EdgeValidator) ValidateEdge(sourceID, targetID string) error {
	if sourceID == targetID {
		return errors.ErrSelfReferentialEdge.
			WithDetail("node_id", sourceID)
	}

	return nil
}

// ValidateEdgeWeight validates the edge weight
func (v *EdgeValidator) ValidateEdgeWeight(weight float64) error {
	if weight < 0 || weight > 1 {
		return errors.NewDomainError(
			errors.DomainValidationError,
			"INVALID_EDGE_WEIGHT",
			"Edge weight must be between 0 and 1",
		).WithDetail("weight", weight)
	}

	return nil
}
