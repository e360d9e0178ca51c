package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"cliplabel/internal/model"
	"cliplabel/internal/service"
	"cliplabel/internal/transport/rest/middleware"
)

// AnswerHandler handles answer submission, ground-truth commits, admin
// overrides and review endpoints
type AnswerHandler struct {
	answerSvc   *service.AnswerService
	accuracySvc *service.AccuracyService
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(answerSvc *service.AnswerService, accuracySvc *service.AccuracyService) *AnswerHandler {
	return &AnswerHandler{answerSvc: answerSvc, accuracySvc: accuracySvc}
}

// SubmitGroupRequest is the request body for any group submission. Answers
// are keyed by question text.
type SubmitGroupRequest struct {
	VideoID          string             `json:"videoId" validate:"required"`
	ProjectID        string             `json:"projectId" validate:"required"`
	GroupID          string             `json:"groupId" validate:"required"`
	Answers          map[string]string  `json:"answers"`
	ConfidenceScores map[string]float64 `json:"confidenceScores"`
	Notes            map[string]string  `json:"notes"`
}

func (req *SubmitGroupRequest) submission() service.GroupSubmission {
	return service.GroupSubmission{
		VideoID:          req.VideoID,
		ProjectID:        req.ProjectID,
		GroupID:          req.GroupID,
		Answers:          req.Answers,
		ConfidenceScores: req.ConfidenceScores,
		Notes:            req.Notes,
	}
}

// SubmitAnswers handles POST /v1/answers
func (h *AnswerHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req SubmitGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.answerSvc.SubmitAnswerGroup(r.Context(), req.submission(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SubmitGroundTruth handles POST /v1/ground-truth
func (h *AnswerHandler) SubmitGroundTruth(w http.ResponseWriter, r *http.Request) {
	var req SubmitGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reviewerID := middleware.GetUserID(r.Context())
	if err := h.answerSvc.SubmitGroundTruthGroup(r.Context(), req.submission(), reviewerID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "committed"})
}

// OverrideGroundTruth handles POST /v1/ground-truth/overrides
func (h *AnswerHandler) OverrideGroundTruth(w http.ResponseWriter, r *http.Request) {
	var req SubmitGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	adminID := middleware.GetUserID(r.Context())
	if err := h.answerSvc.OverrideGroundTruthGroup(r.Context(), req.submission(), adminID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "overridden"})
}

// SubmitReviewRequest is the request body for reviewing an annotator answer
type SubmitReviewRequest struct {
	AnswerID string             `json:"answerId" validate:"required"`
	Status   model.ReviewStatus `json:"status" validate:"required"`
	Comment  string             `json:"comment"`
}

// SubmitReview handles POST /v1/reviews
func (h *AnswerHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	reviewerID := middleware.GetUserID(r.Context())
	review, err := h.accuracySvc.SubmitReview(r.Context(), req.AnswerID, reviewerID, req.Status, req.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

// ReviewsByAnswer handles GET /v1/answers/{id}/reviews
func (h *AnswerHandler) ReviewsByAnswer(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.accuracySvc.ReviewsByAnswer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

// ReviewsByProject handles GET /v1/projects/{id}/reviews
func (h *AnswerHandler) ReviewsByProject(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.accuracySvc.ReviewsByProject(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}
