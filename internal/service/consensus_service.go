package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cliplabel/internal/apperr"
	"cliplabel/internal/model"
	"cliplabel/internal/repository"
)

// ErrNoConsensus reports that the weighted agreement did not clear the
// auto-submit threshold and a reviewer must decide manually.
var ErrNoConsensus = errors.New("no consensus")

// ConsensusResult is a preload for the reviewer, never a commit by itself.
// Shares carry each proposed value's fraction of the total vote weight;
// Unresolved lists the questions a reviewer has to settle manually.
type ConsensusResult struct {
	Proposed   map[string]string  `json:"proposed"`
	Shares     map[string]float64 `json:"shares"`
	Unresolved []string           `json:"unresolved,omitempty"`
}

// ConsensusService computes the weighted-majority suggestion from annotator
// answers. Results are recomputed from store state on every call; nothing is
// cached across requests.
//
// Tie-break rule, applied uniformly: among options with the equal highest
// weighted sum, the question's default option wins when it is one of them,
// otherwise the lexicographically smallest option value wins.
type ConsensusService struct {
	projectSvc   *ProjectService
	answerSvc    *AnswerService
	groupRepo    repository.GroupRepo
	questionRepo repository.QuestionRepo
	answerRepo   repository.AnswerRepo
}

// NewConsensusService creates a new consensus service
func NewConsensusService(
	projectSvc *ProjectService,
	answerSvc *AnswerService,
	groupRepo repository.GroupRepo,
	questionRepo repository.QuestionRepo,
	answerRepo repository.AnswerRepo,
) *ConsensusService {
	return &ConsensusService{
		projectSvc:   projectSvc,
		answerSvc:    answerSvc,
		groupRepo:    groupRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
	}
}

// Preview computes the suggested ground truth for one question group on one
// video, restricted to the given annotators.
func (s *ConsensusService) Preview(ctx context.Context, videoID, projectID, groupID string, annotatorIDs []string) (*ConsensusResult, error) {
	project, err := s.projectSvc.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.HasVideo(videoID) {
		return nil, apperr.NotFound("video %s is not part of project %s", videoID, projectID)
	}
	if len(annotatorIDs) == 0 {
		return nil, apperr.Validation("consensus needs at least one annotator")
	}

	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperr.NotFound("question group %s not found", groupID)
	}

	questions, err := s.questionRepo.GetByIDs(ctx, group.QuestionIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	votes, err := s.answerRepo.ListVotes(ctx, videoID, projectID, group.QuestionIDs, annotatorIDs)
	if err != nil {
		return nil, err
	}
	votesByQuestion := make(map[string][]*model.Answer)
	for _, v := range votes {
		votesByQuestion[v.QuestionID] = append(votesByQuestion[v.QuestionID], v)
	}

	result := &ConsensusResult{
		Proposed: make(map[string]string),
		Shares:   make(map[string]float64),
	}
	for _, qid := range group.QuestionIDs {
		q, ok := byID[qid]
		if !ok || q.IsArchived {
			continue
		}
		qVotes := votesByQuestion[qid]

		if q.Type == model.QuestionTypeDescription {
			if value, ok := unanimousText(qVotes); ok {
				result.Proposed[q.Text] = value
				result.Shares[q.Text] = 1.0
			} else {
				result.Unresolved = append(result.Unresolved, q.Text)
			}
			continue
		}

		winner, share, ok := s.tally(project, q, qVotes)
		if !ok {
			result.Unresolved = append(result.Unresolved, q.Text)
			continue
		}
		result.Proposed[q.Text] = winner
		result.Shares[q.Text] = share
	}
	return result, nil
}

// AutoSubmit commits the preview as ground truth under the reviewer's name
// when every question clears the weighted-agreement threshold. Below the
// threshold it returns ErrNoConsensus along with the preview so the reviewer
// can decide manually.
func (s *ConsensusService) AutoSubmit(ctx context.Context, videoID, projectID, groupID string, annotatorIDs []string, reviewerID string, threshold float64) (*ConsensusResult, error) {
	if threshold < 0 || threshold > 1 {
		return nil, apperr.Validation("threshold must be in [0,1]")
	}

	result, err := s.Preview(ctx, videoID, projectID, groupID, annotatorIDs)
	if err != nil {
		return nil, err
	}
	if len(result.Unresolved) > 0 {
		return result, fmt.Errorf("%w: unresolved questions %v", ErrNoConsensus, result.Unresolved)
	}
	if len(result.Proposed) == 0 {
		return result, fmt.Errorf("%w: no votes", ErrNoConsensus)
	}
	for text, share := range result.Shares {
		if share < threshold {
			return result, fmt.Errorf("%w: %q has share %.2f below threshold %.2f", ErrNoConsensus, text, share, threshold)
		}
	}

	sub := GroupSubmission{
		VideoID:   videoID,
		ProjectID: projectID,
		GroupID:   groupID,
		Answers:   result.Proposed,
	}
	if err := s.answerSvc.SubmitGroundTruthGroup(ctx, sub, reviewerID); err != nil {
		return nil, err
	}
	return result, nil
}

// tally sums weighted votes per option and picks the winner. Votes whose
// value is not among the current options carry no weight; they may predate
// an option append and can never win.
func (s *ConsensusService) tally(project *model.Project, q *model.Question, votes []*model.Answer) (winner string, share float64, ok bool) {
	weights := make(map[string]float64, len(q.Options))
	total := 0.0
	for _, v := range votes {
		if !q.HasOption(v.Value) {
			continue
		}
		w := q.OptionWeight(v.Value) * voterWeight(project, v)
		weights[v.Value] += w
		total += w
	}
	if total == 0 {
		return "", 0, false
	}

	best := 0.0
	var tied []string
	for _, opt := range q.Options {
		w := weights[opt]
		if w == 0 {
			continue
		}
		switch {
		case w > best:
			best = w
			tied = []string{opt}
		case w == best:
			tied = append(tied, opt)
		}
	}

	winner = tied[0]
	if len(tied) > 1 {
		winner = breakTie(q, tied)
	}
	return winner, weights[winner] / total, true
}

// voterWeight is the per-vote multiplier beyond the option weight: model
// users contribute their confidence, humans their assignment weight, both
// defaulting to 1.0.
func voterWeight(project *model.Project, vote *model.Answer) float64 {
	assignment := project.AssignmentFor(vote.UserID)
	if assignment == nil {
		return 1.0
	}
	if assignment.Role == model.RoleModel {
		if vote.ConfidenceScore != nil {
			return *vote.ConfidenceScore
		}
		return 1.0
	}
	return assignment.VoteWeight()
}

func breakTie(q *model.Question, tied []string) string {
	for _, opt := range tied {
		if opt == q.DefaultOption {
			return opt
		}
	}
	sort.Strings(tied)
	return tied[0]
}

// unanimousText resolves a description question only when every vote agrees
// exactly.
func unanimousText(votes []*model.Answer) (string, bool) {
	if len(votes) == 0 {
		return "", false
	}
	first := votes[0].Value
	for _, v := range votes[1:] {
		if v.Value != first {
			return "", false
		}
	}
	return first, true
}
