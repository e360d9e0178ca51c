package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"cliplabel/internal/apperr"
	"cliplabel/internal/cache"
	"cliplabel/internal/model"
	"cliplabel/internal/repository"
)

// ProjectService manages projects, role assignments and the annotation →
// training mode transition.
type ProjectService struct {
	projectRepo   repository.ProjectRepo
	schemaRepo    repository.SchemaRepo
	groupRepo     repository.GroupRepo
	questionRepo  repository.QuestionRepo
	answerRepo    repository.AnswerRepo
	progressCache cache.ProgressCache
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repository.ProjectRepo,
	schemaRepo repository.SchemaRepo,
	groupRepo repository.GroupRepo,
	questionRepo repository.QuestionRepo,
	answerRepo repository.AnswerRepo,
	progressCache cache.ProgressCache,
) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		schemaRepo:    schemaRepo,
		groupRepo:     groupRepo,
		questionRepo:  questionRepo,
		answerRepo:    answerRepo,
		progressCache: progressCache,
	}
}

// Create binds a schema and a video set into a new project in annotation mode.
func (s *ProjectService) Create(ctx context.Context, name, schemaID string, videoIDs []string) (*model.Project, error) {
	if name == "" {
		return nil, apperr.Validation("project name is required")
	}
	if len(videoIDs) == 0 {
		return nil, apperr.Validation("project %q needs at least one video", name)
	}

	schema, err := s.schemaRepo.GetByID(ctx, schemaID)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, apperr.NotFound("schema %s not found", schemaID)
	}
	if schema.IsArchived {
		return nil, apperr.Archived("schema %s is archived", schemaID)
	}

	videos := make([]model.ProjectVideo, 0, len(videoIDs))
	seen := make(map[string]bool, len(videoIDs))
	for _, id := range videoIDs {
		if id == "" || seen[id] {
			return nil, apperr.Validation("video ids must be unique and non-empty")
		}
		seen[id] = true
		videos = append(videos, model.ProjectVideo{VideoID: id})
	}

	project := &model.Project{
		Name:     name,
		SchemaID: schemaID,
		Videos:   videos,
		Mode:     model.ModeAnnotation,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Get retrieves a project by id, failing with NotFound for unknown ids.
func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("project %s not found", id)
	}
	return project, nil
}

// List lists projects, active-only when requested
func (s *ProjectService) List(ctx context.Context, activeOnly bool) ([]*model.Project, error) {
	return s.projectRepo.List(ctx, activeOnly)
}

// getActive fetches a project and rejects archived ones.
func (s *ProjectService) getActive(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.IsArchived {
		return nil, apperr.Archived("project %s is archived", id)
	}
	return project, nil
}

// Assign grants a user a role on the project. Re-assigning replaces the
// existing grant; weight scales human consensus votes and defaults to 1.0.
func (s *ProjectService) Assign(ctx context.Context, projectID, userID string, role model.Role, weight float64) error {
	if userID == "" {
		return apperr.Validation("user id is required")
	}
	if !role.Valid() {
		return apperr.Validation("unknown role %q", role)
	}
	if weight < 0 {
		return apperr.Validation("assignment weight must not be negative")
	}

	project, err := s.getActive(ctx, projectID)
	if err != nil {
		return err
	}

	assignment := model.Assignment{
		UserID:    userID,
		Role:      role,
		Weight:    weight,
		GrantedAt: time.Now(),
	}
	replaced := false
	for i := range project.Assignments {
		if project.Assignments[i].UserID == userID {
			project.Assignments[i] = assignment
			replaced = true
			break
		}
	}
	if !replaced {
		project.Assignments = append(project.Assignments, assignment)
	}
	return s.projectRepo.Update(ctx, project)
}

// Revoke removes a user's assignment from the project.
func (s *ProjectService) Revoke(ctx context.Context, projectID, userID string) error {
	project, err := s.getActive(ctx, projectID)
	if err != nil {
		return err
	}

	kept := project.Assignments[:0]
	found := false
	for _, a := range project.Assignments {
		if a.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return apperr.NotFound("user %s has no assignment on project %s", userID, projectID)
	}
	project.Assignments = kept
	return s.projectRepo.Update(ctx, project)
}

// Archive soft-deletes a project
func (s *ProjectService) Archive(ctx context.Context, id string) error {
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if project.IsArchived {
		return nil
	}
	project.IsArchived = true
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return err
	}
	if err := s.progressCache.Delete(ctx, id); err != nil {
		log.Printf("Warning: failed to drop progress cache for %s: %v", id, err)
	}
	return nil
}

// ArchiveVideo hides a clip from new submissions and from the completeness
// check, then recomputes the mode. Answer history stays intact.
func (s *ProjectService) ArchiveVideo(ctx context.Context, projectID, videoID string) error {
	project, err := s.getActive(ctx, projectID)
	if err != nil {
		return err
	}

	found := false
	for i := range project.Videos {
		if project.Videos[i].VideoID == videoID {
			project.Videos[i].IsArchived = true
			found = true
			break
		}
	}
	if !found {
		return apperr.NotFound("video %s is not part of project %s", videoID, projectID)
	}
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return err
	}
	return s.RecomputeMode(ctx, projectID)
}

// SchemaQuestions returns the active questions reachable through the
// project's schema, in schema order.
func (s *ProjectService) SchemaQuestions(ctx context.Context, project *model.Project) ([]*model.Question, error) {
	schema, err := s.schemaRepo.GetByID(ctx, project.SchemaID)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, apperr.NotFound("schema %s not found", project.SchemaID)
	}

	groups, err := s.groupRepo.GetByIDs(ctx, schema.QuestionGroupIDs)
	if err != nil {
		return nil, err
	}
	groupByID := make(map[string]*model.QuestionGroup, len(groups))
	for _, g := range groups {
		groupByID[g.ID] = g
	}

	var questionIDs []string
	for _, gid := range schema.QuestionGroupIDs {
		g, ok := groupByID[gid]
		if !ok || g.IsArchived {
			continue
		}
		questionIDs = append(questionIDs, g.QuestionIDs...)
	}
	if len(questionIDs) == 0 {
		return nil, nil
	}

	questions, err := s.questionRepo.GetByIDs(ctx, questionIDs)
	if err != nil {
		return nil, err
	}
	questionByID := make(map[string]*model.Question, len(questions))
	for _, q := range questions {
		questionByID[q.ID] = q
	}

	ordered := make([]*model.Question, 0, len(questionIDs))
	for _, qid := range questionIDs {
		if q, ok := questionByID[qid]; ok && !q.IsArchived {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// Progress reports ground-truth coverage over active videos and questions.
// When allowStale is set a recent cached snapshot may be served instead of
// recomputing from the store.
func (s *ProjectService) Progress(ctx context.Context, projectID string, allowStale bool) (*cache.Progress, error) {
	if allowStale {
		if cached, err := s.progressCache.Get(ctx, projectID); err == nil && cached != nil {
			return cached, nil
		}
	}

	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	total, completed, err := s.coverage(ctx, project)
	if err != nil {
		return nil, err
	}

	progress := &cache.Progress{
		ProjectID:  projectID,
		TotalSlots: total,
		Completed:  completed,
		Mode:       string(project.Mode),
		ComputedAt: time.Now(),
	}
	if err := s.progressCache.Set(ctx, progress); err != nil {
		log.Printf("Warning: failed to cache progress for %s: %v", projectID, err)
	}
	return progress, nil
}

// RecomputeMode flips the project to training mode once every active
// (video, question) pair has ground truth. The transition is forward-only:
// archival after the flip never downgrades a project back to annotation.
func (s *ProjectService) RecomputeMode(ctx context.Context, projectID string) error {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if project.IsArchived || project.Mode == model.ModeTraining {
		return nil
	}

	total, completed, err := s.coverage(ctx, project)
	if err != nil {
		return fmt.Errorf("mode recompute for %s: %w", projectID, err)
	}
	if total == 0 || completed < total {
		return nil
	}

	if err := s.projectRepo.SetMode(ctx, projectID, model.ModeTraining); err != nil {
		return err
	}
	log.Printf("project %s switched to training mode (%d/%d slots)", projectID, completed, total)
	if err := s.progressCache.Delete(ctx, projectID); err != nil {
		log.Printf("Warning: failed to drop progress cache for %s: %v", projectID, err)
	}
	return nil
}

// coverage counts (active video × active schema question) slots and how many
// of them have a ground-truth answer.
func (s *ProjectService) coverage(ctx context.Context, project *model.Project) (total, completed int, err error) {
	questions, err := s.SchemaQuestions(ctx, project)
	if err != nil {
		return 0, 0, err
	}
	videoIDs := project.ActiveVideoIDs()
	total = len(videoIDs) * len(questions)
	if total == 0 {
		return 0, 0, nil
	}

	truths, err := s.answerRepo.ListGroundTruthByProject(ctx, project.ID)
	if err != nil {
		return 0, 0, err
	}
	covered := make(map[string]bool, len(truths))
	for _, t := range truths {
		covered[t.VideoID+"\x00"+t.QuestionID] = true
	}

	for _, vid := range videoIDs {
		for _, q := range questions {
			if covered[vid+"\x00"+q.ID] {
				completed++
			}
		}
	}
	return total, completed, nil
}
