package service

import (
	"context"
	"fmt"

	"cliplabel/internal/cache"
	"cliplabel/internal/model"
)

// In-memory repository stubs. They mirror the store semantics the services
// rely on: upsert-by-key answers, GetByID returning (nil, nil) on a miss,
// and a transaction wrapper that discards buffered writes when fn fails.

type stubQuestionRepo struct {
	questions map[string]*model.Question
	seq       int
}

func newStubQuestionRepo() *stubQuestionRepo {
	return &stubQuestionRepo{questions: make(map[string]*model.Question)}
}

func (r *stubQuestionRepo) Create(ctx context.Context, q *model.Question) error {
	if q.ID == "" {
		r.seq++
		q.ID = fmt.Sprintf("q%d", r.seq)
	}
	r.questions[q.ID] = q
	return nil
}

func (r *stubQuestionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	return r.questions[id], nil
}

func (r *stubQuestionRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.Question, error) {
	var out []*model.Question
	for _, id := range ids {
		if q, ok := r.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *stubQuestionRepo) GetByText(ctx context.Context, text string) (*model.Question, error) {
	for _, q := range r.questions {
		if q.Text == text {
			return q, nil
		}
	}
	return nil, nil
}

func (r *stubQuestionRepo) Update(ctx context.Context, q *model.Question) error {
	r.questions[q.ID] = q
	return nil
}

func (r *stubQuestionRepo) List(ctx context.Context, activeOnly bool) ([]*model.Question, error) {
	var out []*model.Question
	for _, q := range r.questions {
		if activeOnly && q.IsArchived {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

type stubGroupRepo struct {
	groups map[string]*model.QuestionGroup
	seq    int
}

func newStubGroupRepo() *stubGroupRepo {
	return &stubGroupRepo{groups: make(map[string]*model.QuestionGroup)}
}

func (r *stubGroupRepo) Create(ctx context.Context, g *model.QuestionGroup) error {
	if g.ID == "" {
		r.seq++
		g.ID = fmt.Sprintf("g%d", r.seq)
	}
	r.groups[g.ID] = g
	return nil
}

func (r *stubGroupRepo) GetByID(ctx context.Context, id string) (*model.QuestionGroup, error) {
	return r.groups[id], nil
}

func (r *stubGroupRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.QuestionGroup, error) {
	var out []*model.QuestionGroup
	for _, id := range ids {
		if g, ok := r.groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *stubGroupRepo) GetByTitle(ctx context.Context, title string) (*model.QuestionGroup, error) {
	for _, g := range r.groups {
		if g.Title == title {
			return g, nil
		}
	}
	return nil, nil
}

func (r *stubGroupRepo) Update(ctx context.Context, g *model.QuestionGroup) error {
	r.groups[g.ID] = g
	return nil
}

func (r *stubGroupRepo) List(ctx context.Context, activeOnly bool) ([]*model.QuestionGroup, error) {
	var out []*model.QuestionGroup
	for _, g := range r.groups {
		if activeOnly && g.IsArchived {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

type stubSchemaRepo struct {
	schemas map[string]*model.Schema
	seq     int
}

func newStubSchemaRepo() *stubSchemaRepo {
	return &stubSchemaRepo{schemas: make(map[string]*model.Schema)}
}

func (r *stubSchemaRepo) Create(ctx context.Context, s *model.Schema) error {
	if s.ID == "" {
		r.seq++
		s.ID = fmt.Sprintf("s%d", r.seq)
	}
	r.schemas[s.ID] = s
	return nil
}

func (r *stubSchemaRepo) GetByID(ctx context.Context, id string) (*model.Schema, error) {
	return r.schemas[id], nil
}

func (r *stubSchemaRepo) Update(ctx context.Context, s *model.Schema) error {
	r.schemas[s.ID] = s
	return nil
}

func (r *stubSchemaRepo) List(ctx context.Context, activeOnly bool) ([]*model.Schema, error) {
	var out []*model.Schema
	for _, s := range r.schemas {
		if activeOnly && s.IsArchived {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

type stubProjectRepo struct {
	projects map[string]*model.Project
	seq      int
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{projects: make(map[string]*model.Project)}
}

func (r *stubProjectRepo) Create(ctx context.Context, p *model.Project) error {
	if p.ID == "" {
		r.seq++
		p.ID = fmt.Sprintf("p%d", r.seq)
	}
	r.projects[p.ID] = p
	return nil
}

func (r *stubProjectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	return r.projects[id], nil
}

func (r *stubProjectRepo) Update(ctx context.Context, p *model.Project) error {
	r.projects[p.ID] = p
	return nil
}

func (r *stubProjectRepo) SetMode(ctx context.Context, id string, mode model.ProjectMode) error {
	if p, ok := r.projects[id]; ok {
		p.Mode = mode
	}
	return nil
}

func (r *stubProjectRepo) List(ctx context.Context, activeOnly bool) ([]*model.Project, error) {
	var out []*model.Project
	for _, p := range r.projects {
		if activeOnly && p.IsArchived {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// answerKey matches the store's unique indexes: the ground-truth row drops
// the user dimension.
func answerKey(a *model.Answer) string {
	if a.IsGroundTruth {
		return "gt\x00" + a.VideoID + "\x00" + a.QuestionID + "\x00" + a.ProjectID
	}
	return "u\x00" + a.VideoID + "\x00" + a.QuestionID + "\x00" + a.ProjectID + "\x00" + a.UserID
}

type stubAnswerRepo struct {
	answers map[string]*model.Answer
	seq     int
	// pending buffers writes inside WithTransaction so a failing callback
	// leaves the visible state untouched.
	pending map[string]*model.Answer
}

func newStubAnswerRepo() *stubAnswerRepo {
	return &stubAnswerRepo{answers: make(map[string]*model.Answer)}
}

func (r *stubAnswerRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.pending = make(map[string]*model.Answer)
	err := fn(ctx)
	if err == nil {
		for k, a := range r.pending {
			r.answers[k] = a
		}
	}
	r.pending = nil
	return err
}

func (r *stubAnswerRepo) lookup(key string) *model.Answer {
	if r.pending != nil {
		if a, ok := r.pending[key]; ok {
			return a
		}
	}
	return r.answers[key]
}

func (r *stubAnswerRepo) store(key string, a *model.Answer) {
	if r.pending != nil {
		r.pending[key] = a
		return
	}
	r.answers[key] = a
}

func (r *stubAnswerRepo) UpsertAnswer(ctx context.Context, a *model.Answer) error {
	key := answerKey(a)
	if existing := r.lookup(key); existing != nil {
		a.ID = existing.ID
	} else {
		r.seq++
		a.ID = fmt.Sprintf("a%d", r.seq)
	}
	r.store(key, a)
	return nil
}

func (r *stubAnswerRepo) UpsertGroundTruth(ctx context.Context, a *model.Answer) (*model.Answer, error) {
	key := answerKey(a)
	if existing := r.lookup(key); existing != nil {
		a.ID = existing.ID
		// The initial reviewer sticks; only AttributedTo follows the writer.
		if existing.ReviewerID != "" {
			a.ReviewerID = existing.ReviewerID
		}
	} else {
		r.seq++
		a.ID = fmt.Sprintf("a%d", r.seq)
	}
	r.store(key, a)
	return a, nil
}

func (r *stubAnswerRepo) GetByID(ctx context.Context, id string) (*model.Answer, error) {
	for _, a := range r.answers {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *stubAnswerRepo) GetGroundTruth(ctx context.Context, videoID, questionID, projectID string) (*model.Answer, error) {
	key := answerKey(&model.Answer{VideoID: videoID, QuestionID: questionID, ProjectID: projectID, IsGroundTruth: true})
	return r.lookup(key), nil
}

func (r *stubAnswerRepo) ListGroundTruth(ctx context.Context, projectID, videoID string, questionIDs []string) ([]*model.Answer, error) {
	var out []*model.Answer
	for _, qid := range questionIDs {
		if a, err := r.GetGroundTruth(ctx, videoID, qid, projectID); err == nil && a != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAnswerRepo) ListGroundTruthByProject(ctx context.Context, projectID string) ([]*model.Answer, error) {
	var out []*model.Answer
	for _, a := range r.answers {
		if a.IsGroundTruth && a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAnswerRepo) ListAnnotatorAnswers(ctx context.Context, projectID string) ([]*model.Answer, error) {
	var out []*model.Answer
	for _, a := range r.answers {
		if !a.IsGroundTruth && a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAnswerRepo) ListVotes(ctx context.Context, videoID, projectID string, questionIDs, userIDs []string) ([]*model.Answer, error) {
	wantQ := make(map[string]bool, len(questionIDs))
	for _, id := range questionIDs {
		wantQ[id] = true
	}
	wantU := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		wantU[id] = true
	}

	var out []*model.Answer
	for _, a := range r.answers {
		if a.IsGroundTruth || a.VideoID != videoID || a.ProjectID != projectID {
			continue
		}
		if !wantQ[a.QuestionID] || !wantU[a.UserID] {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

type stubLedgerRepo struct {
	overrides []*model.OverrideEntry
	reviews   []*model.Review
	seq       int
}

func newStubLedgerRepo() *stubLedgerRepo {
	return &stubLedgerRepo{}
}

func (r *stubLedgerRepo) AppendOverride(ctx context.Context, e *model.OverrideEntry) error {
	r.seq++
	e.ID = fmt.Sprintf("o%d", r.seq)
	r.overrides = append(r.overrides, e)
	return nil
}

func (r *stubLedgerRepo) ListOverridesByProject(ctx context.Context, projectID string) ([]*model.OverrideEntry, error) {
	var out []*model.OverrideEntry
	for _, e := range r.overrides {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) CreateReview(ctx context.Context, review *model.Review) error {
	r.seq++
	review.ID = fmt.Sprintf("r%d", r.seq)
	r.reviews = append(r.reviews, review)
	return nil
}

func (r *stubLedgerRepo) ListReviewsByAnswer(ctx context.Context, answerID string) ([]*model.Review, error) {
	var out []*model.Review
	for _, rv := range r.reviews {
		if rv.AnswerID == answerID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) ListReviewsByProject(ctx context.Context, projectID string) ([]*model.Review, error) {
	var out []*model.Review
	for _, rv := range r.reviews {
		if rv.ProjectID == projectID {
			out = append(out, rv)
		}
	}
	return out, nil
}

type stubProgressCache struct {
	snapshots map[string]*cache.Progress
}

func newStubProgressCache() *stubProgressCache {
	return &stubProgressCache{snapshots: make(map[string]*cache.Progress)}
}

func (c *stubProgressCache) Set(ctx context.Context, p *cache.Progress) error {
	c.snapshots[p.ProjectID] = p
	return nil
}

func (c *stubProgressCache) Get(ctx context.Context, projectID string) (*cache.Progress, error) {
	return c.snapshots[projectID], nil
}

func (c *stubProgressCache) Delete(ctx context.Context, projectID string) error {
	delete(c.snapshots, projectID)
	return nil
}

type stubLeaderboard struct {
	scores map[string]float64 // projectID:role:userID
}

func newStubLeaderboard() *stubLeaderboard {
	return &stubLeaderboard{scores: make(map[string]float64)}
}

func (c *stubLeaderboard) UpdateScore(ctx context.Context, projectID string, role model.Role, userID string, score float64) error {
	c.scores[projectID+":"+string(role)+":"+userID] = score
	return nil
}

func (c *stubLeaderboard) GetTop(ctx context.Context, projectID string, role model.Role, limit int) ([]cache.LeaderboardEntry, error) {
	var entries []cache.LeaderboardEntry
	prefix := projectID + ":" + string(role) + ":"
	for key, score := range c.scores {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			entries = append(entries, cache.LeaderboardEntry{UserID: key[len(prefix):], Score: score})
		}
	}
	return entries, nil
}

func (c *stubLeaderboard) GetRank(ctx context.Context, projectID string, role model.Role, userID string) (int64, error) {
	return 0, nil
}
