package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cliplabel/internal/apperr"
	"cliplabel/internal/model"
)

func TestCreateQuestionDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	q := &model.Question{
		Text:    "Vehicle type",
		Type:    model.QuestionTypeSingle,
		Options: []string{"car", "bike"},
	}
	require.NoError(t, env.catalogSvc.CreateQuestion(ctx, q))
	require.Equal(t, "Vehicle type", q.DisplayText)
	require.Equal(t, []string{"car", "bike"}, q.DisplayValues)
	require.Equal(t, []float64{1.0, 1.0}, q.OptionWeights)

	cases := []*model.Question{
		{Type: model.QuestionTypeSingle, Options: []string{"a"}},                                             // no text
		{Text: "x", Type: model.QuestionTypeSingle},                                                          // no options
		{Text: "x", Type: model.QuestionTypeDescription, Options: []string{"a"}},                             // options on description
		{Text: "x", Type: "scale"},                                                                           // unknown type
		{Text: "x", Type: model.QuestionTypeSingle, Options: []string{"a"}, OptionWeights: []float64{1, 2}},  // length mismatch
		{Text: "x", Type: model.QuestionTypeSingle, Options: []string{"a"}, DefaultOption: "b"},              // foreign default
	}
	for _, c := range cases {
		require.True(t, apperr.IsKind(env.catalogSvc.CreateQuestion(ctx, c), apperr.KindValidation))
	}
}

func TestUpdateDisplayTextKeepsIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.catalogSvc.UpdateQuestionDisplayText(ctx, env.countQ.ID, "Headcount"))

	q, err := env.catalogSvc.GetQuestion(ctx, env.countQ.ID)
	require.NoError(t, err)
	require.Equal(t, "Headcount", q.DisplayText)
	require.Equal(t, "Number of people", q.Text)

	err = env.catalogSvc.UpdateQuestionDisplayText(ctx, env.countQ.ID, "")
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAppendOptionNeverRemoves(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.catalogSvc.AppendOption(ctx, env.countQ.ID, "10+", "ten or more", 0.5))

	q, err := env.catalogSvc.GetQuestion(ctx, env.countQ.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"0", "1", "2", "3+", "10+"}, q.Options)
	require.Equal(t, 0.5, q.OptionWeights[4])

	err = env.catalogSvc.AppendOption(ctx, env.countQ.ID, "10+", "", 0)
	require.True(t, apperr.IsKind(err, apperr.KindConflict))

	err = env.catalogSvc.AppendOption(ctx, env.sceneQ.ID, "x", "", 0)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestArchiveQuestionIsSoft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.catalogSvc.ArchiveQuestion(ctx, env.countQ.ID))
	// Idempotent.
	require.NoError(t, env.catalogSvc.ArchiveQuestion(ctx, env.countQ.ID))

	// Still retrievable by id, just not listed as active.
	q, err := env.catalogSvc.GetQuestion(ctx, env.countQ.ID)
	require.NoError(t, err)
	require.True(t, q.IsArchived)

	active, err := env.catalogSvc.ListQuestions(ctx, true)
	require.NoError(t, err)
	for _, it := range active {
		require.NotEqual(t, env.countQ.ID, it.ID)
	}

	err = env.catalogSvc.AppendOption(ctx, env.countQ.ID, "5", "", 0)
	require.True(t, apperr.IsKind(err, apperr.KindArchived))
}

func TestArchivedQuestionRejectsNewAnswers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.catalogSvc.ArchiveQuestion(ctx, env.countQ.ID))

	_, err := env.answerSvc.SubmitAnswerGroup(ctx, env.submission("v1", map[string]string{
		"Number of people": "1",
	}), "alice")
	require.True(t, apperr.IsKind(err, apperr.KindArchived))
}

func TestCreateGroupValidatesVerificationFunction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	g := &model.QuestionGroup{
		Title:                "bad-fn",
		VerificationFunction: "does_not_exist",
		QuestionIDs:          []string{env.countQ.ID},
	}
	require.True(t, apperr.IsKind(env.catalogSvc.CreateGroup(ctx, g), apperr.KindConfiguration))

	g.VerificationFunction = "all_non_empty"
	require.NoError(t, env.catalogSvc.CreateGroup(ctx, g))
}

func TestCreateGroupValidatesQuestions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.catalogSvc.CreateGroup(ctx, &model.QuestionGroup{Title: "g", QuestionIDs: []string{"missing"}})
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))

	err = env.catalogSvc.CreateGroup(ctx, &model.QuestionGroup{Title: "g", QuestionIDs: []string{env.countQ.ID, env.countQ.ID}})
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	require.NoError(t, env.catalogSvc.ArchiveQuestion(ctx, env.sceneQ.ID))
	err = env.catalogSvc.CreateGroup(ctx, &model.QuestionGroup{Title: "g", QuestionIDs: []string{env.sceneQ.ID}})
	require.True(t, apperr.IsKind(err, apperr.KindArchived))
}

func TestGroupQuestionsFiltersArchived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.catalogSvc.ArchiveQuestion(ctx, env.sceneQ.ID))

	questions, err := env.catalogSvc.GroupQuestions(ctx, env.group.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.Equal(t, env.countQ.ID, questions[0].ID)

	// An archived group yields an empty set, not an error.
	require.NoError(t, env.catalogSvc.ArchiveGroup(ctx, env.group.ID))
	questions, err = env.catalogSvc.GroupQuestions(ctx, env.group.ID)
	require.NoError(t, err)
	require.Empty(t, questions)
}

func TestSchemaReusabilityRule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	exclusive := &model.QuestionGroup{
		Title:       "exclusive",
		IsReusable:  false,
		QuestionIDs: []string{env.countQ.ID},
	}
	require.NoError(t, env.catalogSvc.CreateGroup(ctx, exclusive))

	first := &model.Schema{Name: "first", QuestionGroupIDs: []string{exclusive.ID}}
	require.NoError(t, env.catalogSvc.CreateSchema(ctx, first))

	// A non-reusable group may not join a second schema.
	second := &model.Schema{Name: "second", QuestionGroupIDs: []string{exclusive.ID}}
	err := env.catalogSvc.CreateSchema(ctx, second)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	// The reusable group from the fixture is fine anywhere.
	third := &model.Schema{Name: "third", QuestionGroupIDs: []string{env.group.ID}}
	require.NoError(t, env.catalogSvc.CreateSchema(ctx, third))
}

func TestUpdateSchemaGroupsRevalidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	err := env.catalogSvc.UpdateSchemaGroups(ctx, env.schema.ID, nil)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))

	err = env.catalogSvc.UpdateSchemaGroups(ctx, env.schema.ID, []string{"missing"})
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))

	other := &model.QuestionGroup{Title: "other", IsReusable: true, QuestionIDs: []string{env.sceneQ.ID}}
	require.NoError(t, env.catalogSvc.CreateGroup(ctx, other))
	require.NoError(t, env.catalogSvc.UpdateSchemaGroups(ctx, env.schema.ID, []string{env.group.ID, other.ID}))

	schema, err := env.catalogSvc.GetSchema(ctx, env.schema.ID)
	require.NoError(t, err)
	require.Equal(t, []string{env.group.ID, other.ID}, schema.QuestionGroupIDs)
}
