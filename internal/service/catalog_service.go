package service

import (
	"context"

	"cliplabel/internal/apperr"
	"cliplabel/internal/model"
	"cliplabel/internal/repository"
	"cliplabel/internal/verify"
)

// CatalogService manages the immutable-after-publish question catalog:
// questions, question groups and schemas.
type CatalogService struct {
	questionRepo repository.QuestionRepo
	groupRepo    repository.GroupRepo
	schemaRepo   repository.SchemaRepo
	verifiers    *verify.Registry
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	questionRepo repository.QuestionRepo,
	groupRepo repository.GroupRepo,
	schemaRepo repository.SchemaRepo,
	verifiers *verify.Registry,
) *CatalogService {
	return &CatalogService{
		questionRepo: questionRepo,
		groupRepo:    groupRepo,
		schemaRepo:   schemaRepo,
		verifiers:    verifiers,
	}
}

// CreateQuestion validates and stores a new question. Weights default to 1.0
// per option when omitted.
func (s *CatalogService) CreateQuestion(ctx context.Context, q *model.Question) error {
	if q.Text == "" {
		return apperr.Validation("question text is required")
	}
	if q.DisplayText == "" {
		q.DisplayText = q.Text
	}

	switch q.Type {
	case model.QuestionTypeSingle:
		if len(q.Options) == 0 {
			return apperr.Validation("single-type question %q needs at least one option", q.Text)
		}
	case model.QuestionTypeDescription:
		if len(q.Options) > 0 || q.DefaultOption != "" {
			return apperr.Validation("description-type question %q cannot carry options", q.Text)
		}
	default:
		return apperr.Validation("unknown question type %q", q.Type)
	}

	if q.DisplayValues == nil && len(q.Options) > 0 {
		q.DisplayValues = append([]string(nil), q.Options...)
	}
	if q.OptionWeights == nil && len(q.Options) > 0 {
		q.OptionWeights = make([]float64, len(q.Options))
		for i := range q.OptionWeights {
			q.OptionWeights[i] = 1.0
		}
	}
	if len(q.Options) != len(q.DisplayValues) || len(q.Options) != len(q.OptionWeights) {
		return apperr.Validation("options, display values and weights of %q must be the same length", q.Text)
	}
	if q.DefaultOption != "" && !q.HasOption(q.DefaultOption) {
		return apperr.Validation("default option %q of %q is not among its options", q.DefaultOption, q.Text)
	}

	return s.questionRepo.Create(ctx, q)
}

// GetQuestion retrieves a question by id
func (s *CatalogService) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, apperr.NotFound("question %s not found", id)
	}
	return q, nil
}

// ListQuestions lists catalog questions, active-only when requested
func (s *CatalogService) ListQuestions(ctx context.Context, activeOnly bool) ([]*model.Question, error) {
	return s.questionRepo.List(ctx, activeOnly)
}

// UpdateQuestionDisplayText changes the mutable display text. The identity
// text never changes.
func (s *CatalogService) UpdateQuestionDisplayText(ctx context.Context, id, displayText string) error {
	q, err := s.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if q.IsArchived {
		return apperr.Archived("question %s is archived", id)
	}
	if displayText == "" {
		return apperr.Validation("display text must not be empty")
	}
	q.DisplayText = displayText
	return s.questionRepo.Update(ctx, q)
}

// AppendOption appends one option with its display value and weight. Options
// are never removed or reordered, so historical answers stay resolvable.
func (s *CatalogService) AppendOption(ctx context.Context, id, option, displayValue string, weight float64) error {
	q, err := s.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if q.IsArchived {
		return apperr.Archived("question %s is archived", id)
	}
	if q.Type != model.QuestionTypeSingle {
		return apperr.Validation("question %q does not take options", q.Text)
	}
	if option == "" {
		return apperr.Validation("option value must not be empty")
	}
	if q.HasOption(option) {
		return apperr.Conflict("question %q already has option %q", q.Text, option)
	}
	if displayValue == "" {
		displayValue = option
	}
	if weight <= 0 {
		weight = 1.0
	}

	q.Options = append(q.Options, option)
	q.DisplayValues = append(q.DisplayValues, displayValue)
	q.OptionWeights = append(q.OptionWeights, weight)
	return s.questionRepo.Update(ctx, q)
}

// ArchiveQuestion soft-deletes a question. History is preserved.
func (s *CatalogService) ArchiveQuestion(ctx context.Context, id string) error {
	q, err := s.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if q.IsArchived {
		return nil
	}
	q.IsArchived = true
	return s.questionRepo.Update(ctx, q)
}

// CreateGroup validates and stores a question group. The verification
// function name is resolved eagerly so unknown names fail here, long before
// any submission references the group.
func (s *CatalogService) CreateGroup(ctx context.Context, g *model.QuestionGroup) error {
	if g.Title == "" {
		return apperr.Validation("group title is required")
	}
	if g.DisplayTitle == "" {
		g.DisplayTitle = g.Title
	}
	if g.VerificationFunction != "" && !s.verifiers.Has(g.VerificationFunction) {
		return apperr.Configuration("unknown verification function %q", g.VerificationFunction)
	}
	if len(g.QuestionIDs) == 0 {
		return apperr.Validation("group %q needs at least one question", g.Title)
	}

	seen := make(map[string]bool, len(g.QuestionIDs))
	for _, id := range g.QuestionIDs {
		if seen[id] {
			return apperr.Validation("group %q references question %s twice", g.Title, id)
		}
		seen[id] = true
	}

	questions, err := s.questionRepo.GetByIDs(ctx, g.QuestionIDs)
	if err != nil {
		return err
	}
	byID := make(map[string]*model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	for _, id := range g.QuestionIDs {
		q, ok := byID[id]
		if !ok {
			return apperr.NotFound("question %s not found", id)
		}
		if q.IsArchived {
			return apperr.Archived("question %s is archived", id)
		}
	}

	return s.groupRepo.Create(ctx, g)
}

// GetGroup retrieves a group by id
func (s *CatalogService) GetGroup(ctx context.Context, id string) (*model.QuestionGroup, error) {
	g, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, apperr.NotFound("question group %s not found", id)
	}
	return g, nil
}

// ListGroups lists question groups, active-only when requested
func (s *CatalogService) ListGroups(ctx context.Context, activeOnly bool) ([]*model.QuestionGroup, error) {
	return s.groupRepo.List(ctx, activeOnly)
}

// GroupQuestions returns the active questions of a group in group order.
// An archived group yields an empty set rather than an error; that is the
// visibility-filtering exception to the fail-loud policy.
func (s *CatalogService) GroupQuestions(ctx context.Context, groupID string) ([]*model.Question, error) {
	g, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if g.IsArchived {
		return []*model.Question{}, nil
	}

	questions, err := s.questionRepo.GetByIDs(ctx, g.QuestionIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	ordered := make([]*model.Question, 0, len(g.QuestionIDs))
	for _, id := range g.QuestionIDs {
		if q, ok := byID[id]; ok && !q.IsArchived {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// ArchiveGroup soft-deletes a question group
func (s *CatalogService) ArchiveGroup(ctx context.Context, id string) error {
	g, err := s.GetGroup(ctx, id)
	if err != nil {
		return err
	}
	if g.IsArchived {
		return nil
	}
	g.IsArchived = true
	return s.groupRepo.Update(ctx, g)
}

// CreateSchema validates and stores a schema. Non-reusable groups may belong
// to at most one schema.
func (s *CatalogService) CreateSchema(ctx context.Context, schema *model.Schema) error {
	if schema.Name == "" {
		return apperr.Validation("schema name is required")
	}
	if err := s.validateSchemaGroups(ctx, schema.ID, schema.QuestionGroupIDs); err != nil {
		return err
	}
	return s.schemaRepo.Create(ctx, schema)
}

// GetSchema retrieves a schema by id
func (s *CatalogService) GetSchema(ctx context.Context, id string) (*model.Schema, error) {
	schema, err := s.schemaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, apperr.NotFound("schema %s not found", id)
	}
	return schema, nil
}

// ListSchemas lists schemas, active-only when requested
func (s *CatalogService) ListSchemas(ctx context.Context, activeOnly bool) ([]*model.Schema, error) {
	return s.schemaRepo.List(ctx, activeOnly)
}

// UpdateSchemaGroups replaces the ordered group list, re-validating group
// existence, archival state and reusability.
func (s *CatalogService) UpdateSchemaGroups(ctx context.Context, schemaID string, groupIDs []string) error {
	schema, err := s.GetSchema(ctx, schemaID)
	if err != nil {
		return err
	}
	if schema.IsArchived {
		return apperr.Archived("schema %s is archived", schemaID)
	}
	if err := s.validateSchemaGroups(ctx, schemaID, groupIDs); err != nil {
		return err
	}
	schema.QuestionGroupIDs = groupIDs
	return s.schemaRepo.Update(ctx, schema)
}

// ArchiveSchema soft-deletes a schema
func (s *CatalogService) ArchiveSchema(ctx context.Context, id string) error {
	schema, err := s.GetSchema(ctx, id)
	if err != nil {
		return err
	}
	if schema.IsArchived {
		return nil
	}
	schema.IsArchived = true
	return s.schemaRepo.Update(ctx, schema)
}

func (s *CatalogService) validateSchemaGroups(ctx context.Context, schemaID string, groupIDs []string) error {
	if len(groupIDs) == 0 {
		return apperr.Validation("schema needs at least one question group")
	}

	seen := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		if seen[id] {
			return apperr.Validation("schema references group %s twice", id)
		}
		seen[id] = true
	}

	groups, err := s.groupRepo.GetByIDs(ctx, groupIDs)
	if err != nil {
		return err
	}
	byID := make(map[string]*model.QuestionGroup, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}

	var nonReusable []string
	for _, id := range groupIDs {
		g, ok := byID[id]
		if !ok {
			return apperr.NotFound("question group %s not found", id)
		}
		if g.IsArchived {
			return apperr.Archived("question group %s is archived", id)
		}
		if !g.IsReusable {
			nonReusable = append(nonReusable, id)
		}
	}
	if len(nonReusable) == 0 {
		return nil
	}

	schemas, err := s.schemaRepo.List(ctx, true)
	if err != nil {
		return err
	}
	for _, other := range schemas {
		if other.ID == schemaID {
			continue
		}
		for _, id := range nonReusable {
			if other.HasGroup(id) {
				return apperr.Validation("group %s is not reusable and already belongs to schema %q", id, other.Name)
			}
		}
	}
	return nil
}
