package handlers

import (
	"encoding/json"
	"net/http"

	"ideaweaver/application/commands"
	commandhandlers "ideaweaver/application/commands/handlers"
	"ideaweaver/application/services"
	pkgerrors "ideaweaver/pkg/errors"
	"ideaweaver/pkg/observability"
	"ideaweaver/pkg/utils"

	"go.uber.org/zap"
)

// LinkHandler handles edge creation: autolink passes and manual links
type LinkHandler struct {
	autolink  *commandhandlers.AutolinkHandler
	linkIdeas *commandhandlers.LinkIdeasHandler
	metrics   *observability.Metrics
	errors    *pkgerrors.ErrorHandler
	logger    *zap.Logger
}

// NewLinkHandler creates a new link handler
func NewLinkHandler(
	autolink *commandhandlers.AutolinkHandler,
	linkIdeas *commandhandlers.LinkIdeasHandler,
	metrics *observability.Metrics,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		autolink:  autolink,
		linkIdeas: linkIdeas,
		metrics:   metrics,
		errors:    errorHandler,
		logger:    logger,
	}
}

// AutolinkRequest represents the request body for an autolink pass
type AutolinkRequest struct {
	Preset string `json:"preset" validate:"omitempty"`
}

// ManualLinkRequest represents the request body for a manual edge
type ManualLinkRequest struct {
	SourceID string  `json:"source_id" validate:"required,uuid"`
	TargetID string  `json:"target_id" validate:"required,uuid"`
	Weight   float64 `json:"weight" validate:"gte=0,lte=1"`
}

// autolinkEdgeDTO is one written edge in an autolink response
type autolinkEdgeDTO struct {
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id"`
	Weight   float64 `json:"weight"`
}

// AutolinkIdea handles POST /profiles/{profileID}/ideas/{nodeID}/autolink
func (h *LinkHandler) AutolinkIdea(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}
	nodeID, ok := nodeIDParam(w, r, h.errors)
	if !ok {
		return
	}

	var req AutolinkRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	cmd := commands.AutolinkIdeaCommand{
		ProfileID: profileID,
		NodeID:    nodeID,
		Preset:    req.Preset,
	}

	result, err := h.autolink.HandleIdea(r.Context(), cmd)
	if err != nil {
		h.logger.Error("Autolink pass failed",
			zap.String("profileID", profileID),
			zap.String("nodeID", nodeID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	h.metrics.RecordAutolinkPass(r.Context(), len(result.Edges), result.UsedFallback)

	respondJSON(w, h.logger, http.StatusOK, autolinkResponse(result))
}

// AutolinkProfile handles POST /profiles/{profileID}/autolink
func (h *LinkHandler) AutolinkProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	var req AutolinkRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	cmd := commands.AutolinkProfileCommand{
		ProfileID: profileID,
		Preset:    req.Preset,
	}

	results, err := h.autolink.HandleProfile(r.Context(), cmd)
	if err != nil {
		h.logger.Error("Profile autolink failed", zap.String("profileID", profileID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	passes := make([]map[string]interface{}, 0, len(results))
	for _, result := range results {
		h.metrics.RecordAutolinkPass(r.Context(), len(result.Edges), result.UsedFallback)
		passes = append(passes, autolinkResponse(result))
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"profile_id": profileID,
		"passes":     passes,
	})
}

// LinkIdeas handles POST /profiles/{profileID}/edges
func (h *LinkHandler) LinkIdeas(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	var req ManualLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	cmd := commands.LinkIdeasCommand{
		ProfileID: profileID,
		SourceID:  req.SourceID,
		TargetID:  req.TargetID,
		Weight:    req.Weight,
	}

	if err := h.linkIdeas.Handle(r.Context(), cmd); err != nil {
		h.logger.Error("Manual link failed",
			zap.String("profileID", profileID),
			zap.String("sourceID", req.SourceID),
			zap.String("targetID", req.TargetID),
			zap.Error(err),
		)
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, map[string]string{
		"message": "Edge created successfully",
	})
}

func autolinkResponse(result *services.AutolinkResult) map[string]interface{} {
	edges := make([]autolinkEdgeDTO, 0, len(result.Edges))
	for _, edge := range result.Edges {
		edges = append(edges, autolinkEdgeDTO{
			SourceID: edge.SourceID().String(),
			TargetID: edge.TargetID().String(),
			Weight:   edge.Weight(),
		})
	}
	return map[string]interface{}{
		"anchor_id":     result.AnchorID.String(),
		"edges":         edges,
		"used_fallback": result.UsedFallback,
		"provenance":    result.Provenance,
		"stats": map[string]int{
			"considered": result.Considered,
			"linked":     result.Linked,
		},
	}
}
