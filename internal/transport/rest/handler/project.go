package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cliplabel/internal/model"
	"cliplabel/internal/service"
)

// ProjectHandler handles project lifecycle, assignment, progress and
// leaderboard endpoints
type ProjectHandler struct {
	projectSvc  *service.ProjectService
	accuracySvc *service.AccuracyService
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectSvc *service.ProjectService, accuracySvc *service.AccuracyService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc, accuracySvc: accuracySvc}
}

// CreateProjectRequest is the request body for creating a project
type CreateProjectRequest struct {
	Name     string   `json:"name" validate:"required"`
	SchemaID string   `json:"schemaId" validate:"required"`
	VideoIDs []string `json:"videoIds" validate:"required,min=1"`
}

// CreateProject handles POST /v1/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	project, err := h.projectSvc.Create(r.Context(), req.Name, req.SchemaID, req.VideoIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// GetProject handles GET /v1/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// ListProjects handles GET /v1/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	projects, err := h.projectSvc.List(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"projects": projects})
}

// AssignRequest is the request body for granting a project role
type AssignRequest struct {
	UserID string     `json:"userId" validate:"required"`
	Role   model.Role `json:"role" validate:"required"`
	Weight float64    `json:"weight"`
}

// Assign handles POST /v1/projects/{id}/assignments
func (h *ProjectHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.projectSvc.Assign(r.Context(), mux.Vars(r)["id"], req.UserID, req.Role, req.Weight); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "assigned"})
}

// Revoke handles DELETE /v1/projects/{id}/assignments/{userId}
func (h *ProjectHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.projectSvc.Revoke(r.Context(), vars["id"], vars["userId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// ArchiveProject handles POST /v1/projects/{id}/archive
func (h *ProjectHandler) ArchiveProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projectSvc.Archive(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

// ArchiveVideo handles POST /v1/projects/{id}/videos/{videoId}/archive
func (h *ProjectHandler) ArchiveVideo(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.projectSvc.ArchiveVideo(r.Context(), vars["id"], vars["videoId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}

// Progress handles GET /v1/projects/{id}/progress
func (h *ProjectHandler) Progress(w http.ResponseWriter, r *http.Request) {
	allowStale := r.URL.Query().Get("fresh") != "true"
	progress, err := h.projectSvc.Progress(r.Context(), mux.Vars(r)["id"], allowStale)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// Accuracy handles GET /v1/projects/{id}/accuracy?role=annotator|reviewer
func (h *ProjectHandler) Accuracy(w http.ResponseWriter, r *http.Request) {
	role := model.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = model.RoleAnnotator
	}
	result, err := h.accuracySvc.AccuracyFor(r.Context(), mux.Vars(r)["id"], role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"role": role, "accuracy": result})
}

// Leaderboard handles GET /v1/projects/{id}/leaderboard?role=...&limit=N
func (h *ProjectHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	role := model.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = model.RoleAnnotator
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.accuracySvc.Leaderboard(r.Context(), mux.Vars(r)["id"], role, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"role": role, "leaderboard": entries})
}
