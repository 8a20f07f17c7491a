package handlers

import "ideaweaver/domain/core/valueobjects"

// profileLockKey names the single lock serializing all graph writers
// for one profile. Capture, autolink, and reset share it, so no two of
// them mutate the same voice concurrently.
func profileLockKey(profileID valueobjects.ProfileID) string {
	return "profile_" + profileID.String()
}
