package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

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

// IdeaHandler handles idea-related HTTP requests
type IdeaHandler struct {
	capture    *commandhandlers.CaptureIdeaOrchestrator
	updateIdea *commandhandlers.UpdateIdeaHandler
	deleteIdea *commandhandlers.DeleteIdeaHandler
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewIdeaHandler creates a new idea handler
func NewIdeaHandler(
	capture *commandhandlers.CaptureIdeaOrchestrator,
	updateIdea *commandhandlers.UpdateIdeaHandler,
	deleteIdea *commandhandlers.DeleteIdeaHandler,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *IdeaHandler {
	return &IdeaHandler{
		capture:    capture,
		updateIdea: updateIdea,
		deleteIdea: deleteIdea,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}
}

// CaptureIdeaRequest represents the request body for capturing an idea
type CaptureIdeaRequest struct {
	Text         string   `json:"text" validate:"required,max=10000"`
	Tags         []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	SkipAutolink bool     `json:"skip_autolink"`
}

// UpdateIdeaRequest represents the request body for updating an idea
type UpdateIdeaRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// CaptureIdea handles POST /profiles/{profileID}/ideas
func (h *IdeaHandler) CaptureIdea(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	var req CaptureIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	cmd := commands.CaptureIdeaCommand{
		ProfileID:    profileID,
		Text:         req.Text,
		Tags:         req.Tags,
		SkipAutolink: req.SkipAutolink,
	}

	node, err := h.capture.Handle(r.Context(), cmd)
	if err != nil {
		h.logger.Error("Failed to capture idea", zap.String("profileID", profileID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"id":         node.ID().String(),
		"tags":       node.Tags(),
		"has_vector": node.HasVector(),
		"created_at": node.CreatedAt().Format(time.RFC3339),
	})
}

// GetIdea handles GET /profiles/{profileID}/ideas/{nodeID}
func (h *IdeaHandler) GetIdea(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r, h.errors)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetIdeaQuery{
		ProfileID: profileID,
		NodeID:    nodeID,
	})
	if err != nil {
		h.logger.Error("Failed to get idea",
			zap.String("profileID", profileID),
			zap.String("nodeID", nodeID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// UpdateIdea handles PUT /profiles/{profileID}/ideas/{nodeID}
func (h *IdeaHandler) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r, h.errors)
	if !ok {
		return
	}

	var req UpdateIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	cmd := commands.UpdateIdeaCommand{
		ProfileID: profileID,
		NodeID:    nodeID,
		Text:      req.Text,
	}

	if err := h.updateIdea.Handle(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to update idea",
			zap.String("profileID", profileID),
			zap.String("nodeID", nodeID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]string{
		"id":      nodeID,
		"message": "Idea updated successfully",
	})
}

// DeleteIdea handles DELETE /profiles/{profileID}/ideas/{nodeID}
func (h *IdeaHandler) DeleteIdea(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r, h.errors)
	if !ok {
		return
	}

	cmd := commands.DeleteIdeaCommand{
		ProfileID: profileID,
		NodeID:    nodeID,
	}

	if err := h.deleteIdea.Handle(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to delete idea",
			zap.String("profileID", profileID),
			zap.String("nodeID", nodeID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SearchIdeas handles GET /profiles/{profileID}/ideas
func (h *IdeaHandler) SearchIdeas(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	page := common.ExtractPageParams(r)
	var tags []string
	if raw := r.URL.Query().Get("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	result, err := h.queryBus.Ask(r.Context(), queries.SearchIdeasQuery{
		ProfileID: profileID,
		Query:     r.URL.Query().Get("q"),
		Tags:      tags,
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		h.logger.Error("Failed to search ideas", zap.String("profileID", profileID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// nodeIDParam extracts and validates the nodeID path parameter
func nodeIDParam(w http.ResponseWriter, r *http.Request, errs *pkgerrors.ErrorHandler) (string, bool) {
	nodeID := chi.URLParam(r, "nodeID")
	if nodeID == "" {
		errs.HandleStatus(w, r, http.StatusBadRequest, "Node ID is required")
		return "", false
	}
	if _, err := uuid.Parse(nodeID); err != nil {
		errs.HandleStatus(w, r, http.StatusBadRequest, "Invalid node ID format")
		return "", false
	}
	return nodeID, true
}
