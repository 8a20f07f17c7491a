package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// ProfileID identifies a voice profile. All ideas and edges live inside
// exactly one profile; nothing crosses profile boundaries.
type ProfileID struct {
	value string
}

// NewProfileID creates a new random ProfileID
func NewProfileID() ProfileID {
	return ProfileID{value: uuid.New().String()}
}

// NewProfileIDFromString creates a ProfileID from an existing string
func NewProfileIDFromString(id string) (ProfileID, error) {
	if id == "" {
		return ProfileID{}, errors.New("profile ID cannot be empty")
	}
	if !isValidUUID(id) {
		return ProfileID{}, errors.New("profile ID must be a valid UUID")
	}
	return ProfileID{value: id}, nil
}

// String returns the string representation of the ProfileID
func (id ProfileID) String() string {
	return id.value
}

// Equals checks if two ProfileIDs are equal
func (id ProfileID) Equals(other ProfileID) bool {
	return id.value == other.value
}

// IsZero checks if the ProfileID is the zero value
func (id ProfileID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ProfileID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ProfileID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("ProfileID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
