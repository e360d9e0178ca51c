package service

import (
	"context"
	"fmt"

	"cliplabel/internal/apperr"
	"cliplabel/internal/model"
	"cliplabel/internal/repository"
	"cliplabel/internal/verify"
)

// GroupSubmission is one question-group submission against a video. Answers
// are keyed by question text, the question's stable identity.
type GroupSubmission struct {
	VideoID          string
	ProjectID        string
	GroupID          string
	Answers          map[string]string
	ConfidenceScores map[string]float64
	Notes            map[string]string
}

// resolvedAnswer pairs a submitted value with its catalog question.
type resolvedAnswer struct {
	question   *model.Question
	value      string
	confidence *float64
	notes      string
}

// AnswerService is the answer store: it validates and persists annotator
// submissions, ground-truth commits and admin overrides. Every group write
// runs inside one store transaction so partial answer sets never persist.
type AnswerService struct {
	projectSvc   *ProjectService
	groupRepo    repository.GroupRepo
	schemaRepo   repository.SchemaRepo
	questionRepo repository.QuestionRepo
	answerRepo   repository.AnswerRepo
	ledgerRepo   repository.LedgerRepo
	verifiers    *verify.Registry
}

// NewAnswerService creates a new answer service
func NewAnswerService(
	projectSvc *ProjectService,
	groupRepo repository.GroupRepo,
	schemaRepo repository.SchemaRepo,
	questionRepo repository.QuestionRepo,
	answerRepo repository.AnswerRepo,
	ledgerRepo repository.LedgerRepo,
	verifiers *verify.Registry,
) *AnswerService {
	return &AnswerService{
		projectSvc:   projectSvc,
		groupRepo:    groupRepo,
		schemaRepo:   schemaRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
		ledgerRepo:   ledgerRepo,
		verifiers:    verifiers,
	}
}

// SubmitAnswerGroup validates and upserts one annotator's (or model's)
// answers for a question group. In training mode the result carries
// immediate correctness feedback against ground truth.
func (s *AnswerService) SubmitAnswerGroup(ctx context.Context, sub GroupSubmission, userID string) (*model.SubmitResult, error) {
	project, resolved, err := s.prepare(ctx, sub, userID, model.RoleAnnotator, model.RoleModel)
	if err != nil {
		return nil, err
	}

	err = s.answerRepo.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, ra := range resolved {
			answer := &model.Answer{
				VideoID:         sub.VideoID,
				QuestionID:      ra.question.ID,
				ProjectID:       sub.ProjectID,
				UserID:          userID,
				Value:           ra.value,
				ConfidenceScore: ra.confidence,
				Notes:           ra.notes,
			}
			if err := s.answerRepo.UpsertAnswer(txCtx, answer); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &model.SubmitResult{Mode: project.Mode}
	if project.Mode == model.ModeTraining {
		feedback, err := s.trainingFeedback(ctx, sub, resolved)
		if err != nil {
			return nil, fmt.Errorf("training feedback: %w", err)
		}
		result.Feedback = feedback
	}
	return result, nil
}

// SubmitGroundTruthGroup commits a reviewer's ground truth for a question
// group and re-checks the project mode afterwards.
func (s *AnswerService) SubmitGroundTruthGroup(ctx context.Context, sub GroupSubmission, reviewerID string) error {
	_, resolved, err := s.prepare(ctx, sub, reviewerID, model.RoleReviewer)
	if err != nil {
		return err
	}

	err = s.answerRepo.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, ra := range resolved {
			answer := &model.Answer{
				VideoID:       sub.VideoID,
				QuestionID:    ra.question.ID,
				ProjectID:     sub.ProjectID,
				IsGroundTruth: true,
				Value:         ra.value,
				Notes:         ra.notes,
				ReviewerID:    reviewerID,
				AttributedTo:  reviewerID,
			}
			if _, err := s.answerRepo.UpsertGroundTruth(txCtx, answer); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.projectSvc.RecomputeMode(ctx, sub.ProjectID)
}

// OverrideGroundTruthGroup replaces committed ground truth as a project
// admin, appending one override-log entry per changed question.
func (s *AnswerService) OverrideGroundTruthGroup(ctx context.Context, sub GroupSubmission, adminID string) error {
	_, resolved, err := s.prepare(ctx, sub, adminID, model.RoleAdmin)
	if err != nil {
		return err
	}

	err = s.answerRepo.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, ra := range resolved {
			previous, err := s.answerRepo.GetGroundTruth(txCtx, sub.VideoID, ra.question.ID, sub.ProjectID)
			if err != nil {
				return err
			}

			answer := &model.Answer{
				VideoID:       sub.VideoID,
				QuestionID:    ra.question.ID,
				ProjectID:     sub.ProjectID,
				IsGroundTruth: true,
				Value:         ra.value,
				Notes:         ra.notes,
				AttributedTo:  adminID,
			}
			written, err := s.answerRepo.UpsertGroundTruth(txCtx, answer)
			if err != nil {
				return err
			}
			if previous == nil || previous.Value == ra.value {
				continue
			}

			entry := &model.OverrideEntry{
				AnswerID:      written.ID,
				AdminID:       adminID,
				VideoID:       sub.VideoID,
				QuestionID:    ra.question.ID,
				ProjectID:     sub.ProjectID,
				PreviousValue: previous.Value,
				NewValue:      ra.value,
			}
			if err := s.ledgerRepo.AppendOverride(txCtx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.projectSvc.RecomputeMode(ctx, sub.ProjectID)
}

// prepare runs the ordered precondition chain shared by all three write
// paths: project live, role held, video live, group in schema, questions in
// group, values type-checked, verification predicate satisfied. It returns
// the submission resolved against the catalog, in group question order.
func (s *AnswerService) prepare(ctx context.Context, sub GroupSubmission, userID string, allowed ...model.Role) (*model.Project, []resolvedAnswer, error) {
	project, err := s.projectSvc.Get(ctx, sub.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if project.IsArchived {
		return nil, nil, apperr.Archived("project %s is archived", sub.ProjectID)
	}

	assignment := project.AssignmentFor(userID)
	if assignment == nil {
		return nil, nil, apperr.Permission("user %s has no assignment on project %s", userID, sub.ProjectID)
	}
	roleOK := false
	for _, role := range allowed {
		if assignment.Role == role {
			roleOK = true
			break
		}
	}
	if !roleOK {
		return nil, nil, apperr.Permission("role %s may not perform this operation", assignment.Role)
	}

	if !project.HasVideo(sub.VideoID) {
		return nil, nil, apperr.NotFound("video %s is not part of project %s", sub.VideoID, sub.ProjectID)
	}
	if !project.VideoActive(sub.VideoID) {
		return nil, nil, apperr.Archived("video %s is archived", sub.VideoID)
	}

	group, err := s.groupRepo.GetByID(ctx, sub.GroupID)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, apperr.NotFound("question group %s not found", sub.GroupID)
	}
	if group.IsArchived {
		return nil, nil, apperr.Archived("question group %s is archived", sub.GroupID)
	}

	schema, err := s.schemaRepo.GetByID(ctx, project.SchemaID)
	if err != nil {
		return nil, nil, err
	}
	if schema == nil {
		return nil, nil, apperr.NotFound("schema %s not found", project.SchemaID)
	}
	if !schema.HasGroup(group.ID) {
		return nil, nil, apperr.Validation("group %q is not part of the project's schema", group.Title)
	}

	questions, err := s.questionRepo.GetByIDs(ctx, group.QuestionIDs)
	if err != nil {
		return nil, nil, err
	}
	byText := make(map[string]*model.Question, len(questions))
	byID := make(map[string]*model.Question, len(questions))
	for _, q := range questions {
		byText[q.Text] = q
		byID[q.ID] = q
	}

	answers := make(map[string]string, len(sub.Answers))
	for text, value := range sub.Answers {
		if _, ok := byText[text]; !ok {
			return nil, nil, apperr.Validation("question %q does not belong to group %q", text, group.Title)
		}
		answers[text] = value
	}
	if group.IsAutoSubmit {
		// Auto-submit groups fill unanswered questions from their defaults.
		for _, q := range questions {
			if _, answered := answers[q.Text]; !answered && q.DefaultOption != "" && !q.IsArchived {
				answers[q.Text] = q.DefaultOption
			}
		}
	}
	if len(answers) == 0 {
		return nil, nil, apperr.Validation("submission for group %q has no answers", group.Title)
	}

	resolved := make([]resolvedAnswer, 0, len(answers))
	for _, qid := range group.QuestionIDs {
		q, ok := byID[qid]
		if !ok {
			return nil, nil, apperr.NotFound("question %s not found", qid)
		}
		value, answered := answers[q.Text]
		if !answered {
			continue
		}
		if q.IsArchived {
			return nil, nil, apperr.Archived("question %q is archived", q.Text)
		}
		if q.Type == model.QuestionTypeSingle && !q.HasOption(value) {
			return nil, nil, apperr.Validation("value %q is not an option of %q", value, q.Text)
		}

		ra := resolvedAnswer{question: q, value: value, notes: sub.Notes[q.Text]}
		if c, ok := sub.ConfidenceScores[q.Text]; ok {
			if c < 0 || c > 1 {
				return nil, nil, apperr.Validation("confidence for %q must be in [0,1]", q.Text)
			}
			conf := c
			ra.confidence = &conf
		}
		resolved = append(resolved, ra)
	}

	if group.VerificationFunction != "" {
		fn, ok := s.verifiers.Lookup(group.VerificationFunction)
		if !ok {
			// Fail closed: an unregistered name rejects the submission.
			return nil, nil, apperr.Configuration("unknown verification function %q", group.VerificationFunction)
		}
		if ok, message := fn(answers); !ok {
			return nil, nil, apperr.Verification("group %q rejected: %s", group.Title, message)
		}
	}

	return project, resolved, nil
}

// trainingFeedback compares a fresh submission against current ground truth.
func (s *AnswerService) trainingFeedback(ctx context.Context, sub GroupSubmission, resolved []resolvedAnswer) ([]model.QuestionFeedback, error) {
	questionIDs := make([]string, len(resolved))
	for i, ra := range resolved {
		questionIDs[i] = ra.question.ID
	}

	truths, err := s.answerRepo.ListGroundTruth(ctx, sub.ProjectID, sub.VideoID, questionIDs)
	if err != nil {
		return nil, err
	}
	truthByQuestion := make(map[string]*model.Answer, len(truths))
	for _, t := range truths {
		truthByQuestion[t.QuestionID] = t
	}

	feedback := make([]model.QuestionFeedback, 0, len(resolved))
	for _, ra := range resolved {
		truth, ok := truthByQuestion[ra.question.ID]
		if !ok {
			continue
		}
		feedback = append(feedback, model.QuestionFeedback{
			QuestionText: ra.question.Text,
			Correct:      ra.value == truth.Value,
			GroundTruth:  truth.Value,
		})
	}
	return feedback, nil
}
