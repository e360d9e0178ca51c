package handler

import (
	"net/http"

	"cliplabel/internal/service"
	"cliplabel/internal/transport/rest/middleware"
)

// ConsensusHandler handles consensus preview and auto-submit endpoints
type ConsensusHandler struct {
	consensusSvc     *service.ConsensusService
	defaultThreshold float64
}

// NewConsensusHandler creates a new consensus handler
func NewConsensusHandler(consensusSvc *service.ConsensusService, defaultThreshold float64) *ConsensusHandler {
	return &ConsensusHandler{consensusSvc: consensusSvc, defaultThreshold: defaultThreshold}
}

// PreviewRequest is the request body for a consensus preview
type PreviewRequest struct {
	VideoID      string   `json:"videoId" validate:"required"`
	ProjectID    string   `json:"projectId" validate:"required"`
	GroupID      string   `json:"groupId" validate:"required"`
	AnnotatorIDs []string `json:"annotatorIds"`
}

// Preview handles POST /v1/consensus/preview
func (h *ConsensusHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.consensusSvc.Preview(r.Context(), req.VideoID, req.ProjectID, req.GroupID, req.AnnotatorIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// AutoSubmitRequest is the request body for a consensus auto-submit. A zero
// threshold falls back to the configured default.
type AutoSubmitRequest struct {
	VideoID      string   `json:"videoId" validate:"required"`
	ProjectID    string   `json:"projectId" validate:"required"`
	GroupID      string   `json:"groupId" validate:"required"`
	AnnotatorIDs []string `json:"annotatorIds"`
	Threshold    float64  `json:"threshold"`
}

// AutoSubmit handles POST /v1/consensus/auto-submit
func (h *ConsensusHandler) AutoSubmit(w http.ResponseWriter, r *http.Request) {
	var req AutoSubmitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = h.defaultThreshold
	}

	reviewerID := middleware.GetUserID(r.Context())
	result, err := h.consensusSvc.AutoSubmit(r.Context(), req.VideoID, req.ProjectID, req.GroupID, req.AnnotatorIDs, reviewerID, threshold)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
