package handlers

import (
	"encoding/json"
	"net/http"

	"ideaweaver/application/commands"
	commandhandlers "ideaweaver/application/commands/handlers"
	"ideaweaver/application/queries"
	querybus "ideaweaver/application/queries/bus"
	"ideaweaver/pkg/common"
	pkgerrors "ideaweaver/pkg/errors"
	"ideaweaver/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	profiles *commandhandlers.ProfileHandler
	reset    *commandhandlers.ResetProfileHandler
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(
	profiles *commandhandlers.ProfileHandler,
	reset *commandhandlers.ResetProfileHandler,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		reset:    reset,
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// CreateProfileRequest represents the request body for creating a profile
type CreateProfileRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=255"`
	Preset string `json:"preset" validate:"omitempty,oneof=default strict loose"`
}

// UpdateProfileRequest represents the request body for updating a profile
type UpdateProfileRequest struct {
	Name                  string   `json:"name" validate:"omitempty,min=1,max=255"`
	Preset                string   `json:"preset" validate:"omitempty"`
	MinCosine             *float64 `json:"min_cosine" validate:"omitempty,gte=-1,lte=1"`
	MaxDistance           *float64 `json:"max_distance" validate:"omitempty,gte=0,lte=2"`
	StrictMutual          *bool    `json:"strict_mutual"`
	MaxEdges              *int     `json:"max_edges" validate:"omitempty,gte=0"`
	KNeighbors            *int     `json:"k_neighbors" validate:"omitempty,gte=1"`
	FallbackMinCorpusSize *int     `json:"fallback_min_corpus_size" validate:"omitempty,gte=0"`
}

// CreateProfile handles POST /profiles
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	cmd := commands.CreateProfileCommand{
		Name:   req.Name,
		Preset: req.Preset,
	}

	profileID, err := h.profiles.HandleCreate(r.Context(), cmd)
	if err != nil {
		h.logger.Error("Failed to create profile", zap.String("name", req.Name), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, map[string]string{
		"id":         profileID,
		"message":    "Profile created successfully",
		"created_at": utils.NowRFC3339(),
	})
}

// UpdateProfile handles PUT /profiles/{profileID}
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	cmd := commands.UpdateProfileCommand{
		ProfileID:             profileID,
		Name:                  req.Name,
		Preset:                req.Preset,
		MinCosine:             req.MinCosine,
		MaxDistance:           req.MaxDistance,
		StrictMutual:          req.StrictMutual,
		MaxEdges:              req.MaxEdges,
		KNeighbors:            req.KNeighbors,
		FallbackMinCorpusSize: req.FallbackMinCorpusSize,
	}

	if err := h.profiles.HandleUpdate(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to update profile", zap.String("profileID", profileID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"id":      profileID,
		"message": "Profile updated successfully",
	})
}

// DeleteProfile handles DELETE /profiles/{profileID}
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	if err := h.profiles.HandleDelete(r.Context(), profileID); err != nil {
		h.logger.Error("Failed to delete profile", zap.String("profileID", profileID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResetProfile handles POST /profiles/{profileID}/reset
func (h *ProfileHandler) ResetProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	cmd := commands.ResetProfileCommand{ProfileID: profileID}
	if err := h.reset.Handle(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to reset profile", zap.String("profileID", profileID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"id":      profileID,
		"message": "Profile reset successfully",
	})
}

// ListProfiles handles GET /profiles
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	page := common.ExtractPageParams(r)

	result, err := h.queryBus.Ask(r.Context(), queries.ListProfilesQuery{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		h.logger.Error("Failed to list profiles", zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// profileIDParam extracts and validates the profileID path parameter
func profileIDParam(w http.ResponseWriter, r *http.Request, errs *pkgerrors.ErrorHandler) (string, bool) {
	profileID := chi.URLParam(r, "profileID")
	if profileID == "" {
		errs.HandleStatus(w, r, http.StatusBadRequest, "Profile ID is required")
		return "", false
	}
	if _, err := uuid.Parse(profileID); err != nil {
		errs.HandleStatus(w, r, http.StatusBadRequest, "Invalid profile ID format")
		return "", false
	}
	return profileID, true
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
