package handlers

import (
	"encoding/json"
	"net/http"

	"ideaweaver/application/queries"
	querybus "ideaweaver/application/queries/bus"
	pkgerrors "ideaweaver/pkg/errors"
	"ideaweaver/pkg/utils"

	"go.uber.org/zap"
)

// GraphHandler handles graph read requests
type GraphHandler struct {
	queryBus *querybus.QueryBus
	errors   *pkgerrors.ErrorHandler
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(queryBus *querybus.QueryBus, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		queryBus: queryBus,
		errors:   errorHandler,
		logger:   logger,
	}
}

// GetGraph handles GET /profiles/{profileID}/graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetGraphQuery{
		ProfileID: profileID,
	})
	if err != nil {
		h.logger.Error("Failed to get graph", zap.String("profileID", profileID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

// ContextMapRequest represents the request body for probing a profile's
// neighborhood with free text
type ContextMapRequest struct {
	Text  string `json:"text" validate:"required,max=10000"`
	Limit int    `json:"limit" validate:"omitempty,gte=0,lte=100"`
}

// GetContextMap handles POST /profiles/{profileID}/context-map
func (h *GraphHandler) GetContextMap(w http.ResponseWriter, r *http.Request) {
	profileID, ok := profileIDParam(w, r, h.errors)
	if !ok {
		return
	}

	var req ContextMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.errors.HandleStatus(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ContextMapQuery{
		ProfileID: profileID,
		Text:      req.Text,
		Limit:     req.Limit,
	})
	if err != nil {
		h.logger.Error("Failed to compute context map", zap.String("profileID", profileID), zap.Error(err))
		h.errors.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}
