package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"ideaweaver/application/services"
	"ideaweaver/domain/core/entities"
	"ideaweaver/domain/core/valueobjects"
	pkgerrors "ideaweaver/pkg/errors"
	"ideaweaver/pkg/utils"

	"go.uber.org/zap"
)

const defaultMaxContextChars = 8000

// CollectiveHandler handles working-set selection and composition
type CollectiveHandler struct {
	collective *services.CollectiveService
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewCollectiveHandler creates a new collective handler
func NewCollectiveHandler(
	collective *services.CollectiveService,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *CollectiveHandler {
	return &CollectiveHandler{
		collective: collective,
		errors:     errorHandler,
		logger:     logger,
	}
}

// SelectRequest represents the request body for assembling a working set
type SelectRequest struct {
	SeedIDs    []string `json:"seed_ids" validate:"required,min=1,dive,uuid"`
	Expand     bool     `json:"expand"`
	MaxContext int      `json:"max_context" validate:"omitempty,gte=0"`
}

// ComposeRequest represents the request body for drafting from a working set
type ComposeRequest struct {
	SeedIDs         []string `json:"seed_ids" validate:"required,min=1,dive,uuid"`
	Intent          string   `json:"intent" validate:"omitempty,max=2000"`
	Expand          bool     `json:"expand"`
	MaxContext      int      `json:"max_context" validate:"omitempty,gte=0"`
	MaxContextChars int      `json:"max_context_chars" validate:"omitempty,gte=0"`
}

// selectedIdeaDTO is one idea in a selection response
type selectedIdeaDTO struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Tags      []string `json:"tags"`
	Seed      bool     `json:"seed"`
	CreatedAt string   `json:"created_at"`
}

// Select handles POST /profiles/{profileID}/collective/select
func (h *CollectiveHandler) Select(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	pid, seedIDs, err := parseSelection(profileID, req.SeedIDs)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	selection, err := h.collective.Select(r.Context(), pid, seedIDs, req.Expand, req.MaxContext)
	if err != nil {
		h.logger.Error("Selection failed", zap.String("profileID", profileID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	ideas := make([]selectedIdeaDTO, 0, len(selection.Seeds)+len(selection.Expanded))
	for _, node := range selection.Seeds {
		ideas = append(ideas, selectedIdea(node, true))
	}
	for _, node := range selection.Expanded {
		ideas = append(ideas, selectedIdea(node, false))
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"profile_id": profileID,
		"ideas":      ideas,
	})
}

// Compose handles POST /profiles/{profileID}/collective/compose
func (h *CollectiveHandler) Compose(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	var req ComposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	pid, seedIDs, err := parseSelection(profileID, req.SeedIDs)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	maxContextChars := req.MaxContextChars
	if maxContextChars <= 0 {
		maxContextChars = defaultMaxContextChars
	}

	output, err := h.collective.Compose(r.Context(), pid, seedIDs, req.Intent, req.Expand, req.MaxContext, maxContextChars)
	if err != nil {
		h.logger.Error("Composition failed", zap.String("profileID", profileID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"profile_id": profileID,
		"text":       output,
	})
}

func parseSelection(profileID string, seedIDs []string) (valueobjects.ProfileID, []valueobjects.NodeID, error) {
	pid, err := valueobjects.NewProfileIDFromString(profileID)
	if err != nil {
		return valueobjects.ProfileID{}, nil, pkgerrors.NewValidationError(err.Error())
	}

	ids := make([]valueobjects.NodeID, 0, len(seedIDs))
	for _, raw := range seedIDs {
		id, err := valueobjects.NewNodeIDFromString(raw)
		if err != nil {
			return valueobjects.ProfileID{}, nil, pkgerrors.NewValidationError("invalid seed ID: " + raw)
		}
		ids = append(ids, id)
	}
	return pid, ids, nil
}

func selectedIdea(node *entities.Node, seed bool) selectedIdeaDTO {
	return selectedIdeaDTO{
		ID:        node.ID().String(),
		Text:      node.Text().String(),
		Tags:      node.Tags(),
		Seed:      seed,
		CreatedAt: node.CreatedAt().Format(time.RFC3339),
	}
}
