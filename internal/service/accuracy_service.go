package service

import (
	"context"
	"log"

	"cliplabel/internal/apperr"
	"cliplabel/internal/cache"
	"cliplabel/internal/model"
	"cliplabel/internal/repository"
)

// Tally counts correct answers against a denominator that only includes
// questions with committed ground truth.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// AccuracyService derives annotator and reviewer accuracy from the answer
// store and the override log. Metrics are a pure fold over current state,
// recomputed on demand; only the display leaderboard is cached.
type AccuracyService struct {
	projectSvc  *ProjectService
	answerRepo  repository.AnswerRepo
	ledgerRepo  repository.LedgerRepo
	leaderboard cache.LeaderboardCache
}

// NewAccuracyService creates a new accuracy service
func NewAccuracyService(
	projectSvc *ProjectService,
	answerRepo repository.AnswerRepo,
	ledgerRepo repository.LedgerRepo,
	leaderboard cache.LeaderboardCache,
) *AccuracyService {
	return &AccuracyService{
		projectSvc:  projectSvc,
		answerRepo:  answerRepo,
		ledgerRepo:  ledgerRepo,
		leaderboard: leaderboard,
	}
}

// AccuracyFor computes per-user, per-question accuracy for one role.
// Annotator accuracy compares submitted values against current ground truth;
// reviewer accuracy counts an initial ground-truth commit as correct unless
// the override log shows an admin replaced it. Archived projects may still
// be queried: accuracy is a historical read.
func (s *AccuracyService) AccuracyFor(ctx context.Context, projectID string, role model.Role) (map[string]map[string]*Tally, error) {
	if role != model.RoleAnnotator && role != model.RoleReviewer {
		return nil, apperr.Validation("accuracy is defined for annotator and reviewer roles, not %q", role)
	}

	project, err := s.projectSvc.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var result map[string]map[string]*Tally
	if role == model.RoleAnnotator {
		result, err = s.annotatorAccuracy(ctx, projectID)
	} else {
		result, err = s.reviewerAccuracy(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}

	s.refreshLeaderboard(ctx, project.ID, role, result)
	return result, nil
}

func (s *AccuracyService) annotatorAccuracy(ctx context.Context, projectID string) (map[string]map[string]*Tally, error) {
	truths, err := s.answerRepo.ListGroundTruthByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	truthValue := make(map[string]string, len(truths))
	for _, t := range truths {
		truthValue[t.VideoID+"\x00"+t.QuestionID] = t.Value
	}

	answers, err := s.answerRepo.ListAnnotatorAnswers(ctx, projectID)
	if err != nil {
		return nil, err
	}

	result := make(map[string]map[string]*Tally)
	for _, a := range answers {
		truth, hasTruth := truthValue[a.VideoID+"\x00"+a.QuestionID]
		if !hasTruth {
			// Questions without ground truth stay out of the denominator.
			continue
		}
		tally := tallyFor(result, a.UserID, a.QuestionID)
		tally.Total++
		if a.Value == truth {
			tally.Correct++
		}
	}
	return result, nil
}

func (s *AccuracyService) reviewerAccuracy(ctx context.Context, projectID string) (map[string]map[string]*Tally, error) {
	truths, err := s.answerRepo.ListGroundTruthByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	overrides, err := s.ledgerRepo.ListOverridesByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	overridden := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		overridden[o.AnswerID] = true
	}

	result := make(map[string]map[string]*Tally)
	for _, t := range truths {
		if t.ReviewerID == "" {
			// Admin-initiated slot with no reviewer commit behind it.
			continue
		}
		tally := tallyFor(result, t.ReviewerID, t.QuestionID)
		tally.Total++
		if !overridden[t.ID] {
			tally.Correct++
		}
	}
	return result, nil
}

func tallyFor(result map[string]map[string]*Tally, userID, questionID string) *Tally {
	byQuestion, ok := result[userID]
	if !ok {
		byQuestion = make(map[string]*Tally)
		result[userID] = byQuestion
	}
	tally, ok := byQuestion[questionID]
	if !ok {
		tally = &Tally{}
		byQuestion[questionID] = tally
	}
	return tally
}

// refreshLeaderboard pushes each user's overall percentage into the display
// ZSET. Failures only log; the computed result is what matters.
func (s *AccuracyService) refreshLeaderboard(ctx context.Context, projectID string, role model.Role, result map[string]map[string]*Tally) {
	for userID, byQuestion := range result {
		correct, total := 0, 0
		for _, t := range byQuestion {
			correct += t.Correct
			total += t.Total
		}
		if total == 0 {
			continue
		}
		score := 100 * float64(correct) / float64(total)
		if err := s.leaderboard.UpdateScore(ctx, projectID, role, userID, score); err != nil {
			log.Printf("Warning: leaderboard update for %s failed: %v", userID, err)
		}
	}
}

// Leaderboard returns the cached accuracy board for display.
func (s *AccuracyService) Leaderboard(ctx context.Context, projectID string, role model.Role, limit int) ([]cache.LeaderboardEntry, error) {
	if role != model.RoleAnnotator && role != model.RoleReviewer {
		return nil, apperr.Validation("leaderboard is defined for annotator and reviewer roles, not %q", role)
	}
	if limit <= 0 {
		limit = 10
	}
	return s.leaderboard.GetTop(ctx, projectID, role, limit)
}

// SubmitReview records a reviewer's approve/reject verdict on an annotator
// answer. The answer itself is never mutated.
func (s *AccuracyService) SubmitReview(ctx context.Context, answerID, reviewerID string, status model.ReviewStatus, comment string) (*model.Review, error) {
	if status != model.ReviewApproved && status != model.ReviewRejected {
		return nil, apperr.Validation("unknown review status %q", status)
	}

	answer, err := s.answerRepo.GetByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	if answer == nil {
		return nil, apperr.NotFound("answer %s not found", answerID)
	}
	if answer.IsGroundTruth {
		return nil, apperr.Validation("reviews apply to annotator answers, not ground truth")
	}

	project, err := s.projectSvc.Get(ctx, answer.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.IsArchived {
		return nil, apperr.Archived("project %s is archived", project.ID)
	}
	assignment := project.AssignmentFor(reviewerID)
	if assignment == nil || assignment.Role != model.RoleReviewer {
		return nil, apperr.Permission("user %s is not a reviewer on project %s", reviewerID, project.ID)
	}

	review := &model.Review{
		AnswerID:   answerID,
		ProjectID:  answer.ProjectID,
		ReviewerID: reviewerID,
		Status:     status,
		Comment:    comment,
	}
	if err := s.ledgerRepo.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ReviewsByAnswer lists the review decisions recorded for one answer.
func (s *AccuracyService) ReviewsByAnswer(ctx context.Context, answerID string) ([]*model.Review, error) {
	return s.ledgerRepo.ListReviewsByAnswer(ctx, answerID)
}

// ReviewsByProject lists all review decisions in a project for audit display.
func (s *AccuracyService) ReviewsByProject(ctx context.Context, projectID string) ([]*model.Review, error) {
	return s.ledgerRepo.ListReviewsByProject(ctx, projectID)
}
