package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"cliplabel/internal/model"
	"cliplabel/internal/service"
)

// CatalogHandler handles question, question-group and schema endpoints
type CatalogHandler struct {
	catalogSvc *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogSvc *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// CreateQuestionRequest is the request body for creating a question
type CreateQuestionRequest struct {
	Text          string             `json:"text" validate:"required"`
	DisplayText   string             `json:"displayText"`
	Type          model.QuestionType `json:"type" validate:"required"`
	Options       []string           `json:"options"`
	DisplayValues []string           `json:"displayValues"`
	OptionWeights []float64          `json:"optionWeights"`
	DefaultOption string             `json:"defaultOption"`
}

// CreateQuestion handles POST /v1/catalog/questions
func (h *CatalogHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	question := &model.Question{
		Text:          req.Text,
		DisplayText:   req.DisplayText,
		Type:          req.Type,
		Options:       req.Options,
		DisplayValues: req.DisplayValues,
		OptionWeights: req.OptionWeights,
		DefaultOption: req.DefaultOption,
	}
	if err := h.catalogSvc.CreateQuestion(r.Context(), question); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, question)
}

// GetQuestion handles GET /v1/catalog/questions/{id}
func (h *CatalogHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.catalogSvc.GetQuestion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

// ListQuestions handles GET /v1/catalog/questions
func (h *CatalogHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	questions, err := h.catalogSvc.ListQuestions(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// UpdateDisplayTextRequest is the request body for renaming a question's
// display text
type UpdateDisplayTextRequest struct {
	DisplayText string `json:"displayText" validate:"required"`
}

// UpdateQuestionDisplayText handles PUT /v1/catalog/questions/{id}/display
func (h *CatalogHandler) UpdateQuestionDisplayText(w http.ResponseWriter, r *http.Request) {
	var req UpdateDisplayTextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.catalogSvc.UpdateQuestionDisplayText(r.Context(), mux.Vars(r)["id"], req.DisplayText); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// AppendOptionRequest is the request body for appending a question option
type AppendOptionRequest struct {
	Option       string  `json:"option" validate:"required"`
	DisplayValue string  `json:"displayValue"`
	Weight       float64 `json:"weight"`
}

// AppendOption handles POST /v1/catalog/questions/{id}/options
func (h *CatalogHandler) AppendOption(w http.ResponseWriter, r *http.Request) {
	var req AppendOptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.catalogSvc.AppendOption(r.Context(), mux.Vars(r)["id"], req.Option, req.DisplayValue, req.Weight); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "appended"})
}

// ArchiveQuestion handles POST /v1/catalog/questions/{id}/archive
func (h *CatalogHandler) ArchiveQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogSvc.ArchiveQuestion(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

// CreateGroupRequest is the request body for creating a question group
type CreateGroupRequest struct {
	Title                string   `json:"title" validate:"required"`
	DisplayTitle         string   `json:"displayTitle"`
	Description          string   `json:"description"`
	IsReusable           bool     `json:"isReusable"`
	IsAutoSubmit         bool     `json:"isAutoSubmit"`
	VerificationFunction string   `json:"verificationFunction"`
	QuestionIDs          []string `json:"questionIds" validate:"required,min=1"`
}

// CreateGroup handles POST /v1/catalog/groups
func (h *CatalogHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	group := &model.QuestionGroup{
		Title:                req.Title,
		DisplayTitle:         req.DisplayTitle,
		Description:          req.Description,
		IsReusable:           req.IsReusable,
		IsAutoSubmit:         req.IsAutoSubmit,
		VerificationFunction: req.VerificationFunction,
		QuestionIDs:          req.QuestionIDs,
	}
	if err := h.catalogSvc.CreateGroup(r.Context(), group); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// GetGroup handles GET /v1/catalog/groups/{id}
func (h *CatalogHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.catalogSvc.GetGroup(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// ListGroups handles GET /v1/catalog/groups
func (h *CatalogHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	groups, err := h.catalogSvc.ListGroups(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// GroupQuestions handles GET /v1/catalog/groups/{id}/questions
func (h *CatalogHandler) GroupQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalogSvc.GroupQuestions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

// ArchiveGroup handles POST /v1/catalog/groups/{id}/archive
func (h *CatalogHandler) ArchiveGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogSvc.ArchiveGroup(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

// CreateSchemaRequest is the request body for creating a schema
type CreateSchemaRequest struct {
	Name             string   `json:"name" validate:"required"`
	QuestionGroupIDs []string `json:"questionGroupIds" validate:"required,min=1"`
}

// CreateSchema handles POST /v1/catalog/schemas
func (h *CatalogHandler) CreateSchema(w http.ResponseWriter, r *http.Request) {
	var req CreateSchemaRequest
	if !decodeBody(w, r, &req) {
		return
	}

	schema := &model.Schema{
		Name:             req.Name,
		QuestionGroupIDs: req.QuestionGroupIDs,
	}
	if err := h.catalogSvc.CreateSchema(r.Context(), schema); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, schema)
}

// GetSchema handles GET /v1/catalog/schemas/{id}
func (h *CatalogHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.catalogSvc.GetSchema(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

// ListSchemas handles GET /v1/catalog/schemas
func (h *CatalogHandler) ListSchemas(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	schemas, err := h.catalogSvc.ListSchemas(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"schemas": schemas})
}

// UpdateSchemaGroupsRequest is the request body for replacing a schema's
// ordered group list
type UpdateSchemaGroupsRequest struct {
	QuestionGroupIDs []string `json:"questionGroupIds" validate:"required,min=1"`
}

// UpdateSchemaGroups handles PUT /v1/catalog/schemas/{id}/groups
func (h *CatalogHandler) UpdateSchemaGroups(w http.ResponseWriter, r *http.Request) {
	var req UpdateSchemaGroupsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.catalogSvc.UpdateSchemaGroups(r.Context(), mux.Vars(r)["id"], req.QuestionGroupIDs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ArchiveSchema handles POST /v1/catalog/schemas/{id}/archive
func (h *CatalogHandler) ArchiveSchema(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogSvc.ArchiveSchema(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}
