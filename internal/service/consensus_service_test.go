package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cliplabel/internal/apperr"
	"cliplabel/internal/model"
)

func (env *testEnv) vote(t *testing.T, userID, videoID, value string, confidence ...float64) {
	t.Helper()
	sub := env.submission(videoID, map[string]string{"Number of people": value})
	if len(confidence) > 0 {
		sub.ConfidenceScores = map[string]float64{"Number of people": confidence[0]}
	}
	_, err := env.answerSvc.SubmitAnswerGroup(context.Background(), sub, userID)
	require.NoError(t, err)
}

func (env *testEnv) describe(t *testing.T, userID, videoID, text string) {
	t.Helper()
	_, err := env.answerSvc.SubmitAnswerGroup(context.Background(), env.submission(videoID, map[string]string{
		"Describe the people": text,
	}), userID)
	require.NoError(t, err)
}

func TestPreviewMajorityWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.vote(t, "alice", "v1", "1")
	env.vote(t, "bob", "v1", "1")
	env.vote(t, "detector", "v1", "2")

	result, err := env.consensusSvc.Preview(ctx, "v1", env.project.ID, env.group.ID, []string{"alice", "bob", "detector"})
	require.NoError(t, err)
	require.Equal(t, "1", result.Proposed["Number of people"])
	require.InDelta(t, 2.0/3.0, result.Shares["Number of people"], 1e-9)
	require.Contains(t, result.Unresolved, "Describe the people")
}

func TestPreviewWeightsHumansAndModels(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// senior's assignment weight is 2.0; the model votes at confidence 0.6.
	env.vote(t, "senior", "v1", "2")
	env.vote(t, "alice", "v1", "1")
	env.vote(t, "detector", "v1", "1", 0.6)

	result, err := env.consensusSvc.Preview(ctx, "v1", env.project.ID, env.group.ID, []string{"alice", "senior", "detector"})
	require.NoError(t, err)
	// "2" carries 2.0 against 1.0 + 0.6 for "1".
	require.Equal(t, "2", result.Proposed["Number of people"])
	require.InDelta(t, 2.0/3.6, result.Shares["Number of people"], 1e-9)
}

func TestPreviewTieBreaksToDefaultOption(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.vote(t, "alice", "v1", "0")
	env.vote(t, "bob", "v1", "2")

	result, err := env.consensusSvc.Preview(ctx, "v1", env.project.ID, env.group.ID, []string{"alice", "bob"})
	require.NoError(t, err)
	// "0" is the default option and wins the tie.
	require.Equal(t, "0", result.Proposed["Number of people"])
	require.InDelta(t, 0.5, result.Shares["Number of people"], 1e-9)
}

func TestPreviewTieBreaksLexicallyWithoutDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.vote(t, "alice", "v1", "2")
	env.vote(t, "bob", "v1", "1")

	result, err := env.consensusSvc.Preview(ctx, "v1", env.project.ID, env.group.ID, []string{"alice", "bob"})
	require.NoError(t, err)
	require.Equal(t, "1", result.Proposed["Number of people"])
}

func TestPreviewDescriptionNeedsUnanimity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.describe(t, "alice", "v1", "one cyclist")
	env.describe(t, "bob", "v1", "one cyclist")

	result, err := env.consensusSvc.Preview(ctx, "v1", env.project.ID, env.group.ID, []string{"alice", "bob"})
	require.NoError(t, err)
	require.Equal(t, "one cyclist", result.Proposed["Describe the people"])
	require.Equal(t, 1.0, result.Shares["Describe the people"])

	env.describe(t, "bob", "v1", "a cyclist")
	result, err = env.consensusSvc.Preview(ctx, "v1", env.project.ID, env.group.ID, []string{"alice", "bob"})
	require.NoError(t, err)
	require.Contains(t, result.Unresolved, "Describe the people")
}

func TestPreviewIgnoresStaleOptionValues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.vote(t, "alice", "v1", "1")
	env.vote(t, "bob", "v1", "2")
	env.vote(t, "senior", "v1", "2")

	// Options are append-only in the product, but the tally must tolerate a
	// vote value missing from the option list: it carries no weight.
	env.countQ.Options = []string{"0", "2", "3+"}

	result, err := env.consensusSvc.Preview(ctx, "v1", env.project.ID, env.group.ID, []string{"alice", "bob", "senior"})
	require.NoError(t, err)
	require.Equal(t, "2", result.Proposed["Number of people"])
	require.Equal(t, 1.0, result.Shares["Number of people"])
}

func TestPreviewValidatesInputs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.consensusSvc.Preview(ctx, "nope", env.project.ID, env.group.ID, []string{"alice"})
	require.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = env.consensusSvc.Preview(ctx, "v1", env.project.ID, env.group.ID, nil)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAutoSubmitCommitsAboveThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.vote(t, "alice", "v1", "1")
	env.vote(t, "bob", "v1", "1")
	env.vote(t, "senior", "v1", "1")
	env.describe(t, "alice", "v1", "one person")
	env.describe(t, "bob", "v1", "one person")
	env.describe(t, "senior", "v1", "one person")

	result, err := env.consensusSvc.AutoSubmit(ctx, "v1", env.project.ID, env.group.ID,
		[]string{"alice", "bob", "senior"}, "rita", 0.75)
	require.NoError(t, err)
	require.Equal(t, "1", result.Proposed["Number of people"])

	truth, err := env.answerRepo.GetGroundTruth(ctx, "v1", env.countQ.ID, env.project.ID)
	require.NoError(t, err)
	require.NotNil(t, truth)
	require.Equal(t, "1", truth.Value)
	require.Equal(t, "rita", truth.ReviewerID)
}

func TestAutoSubmitRefusesBelowThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.vote(t, "alice", "v1", "1")
	env.vote(t, "bob", "v1", "1")
	env.vote(t, "senior", "v1", "2")
	env.describe(t, "alice", "v1", "x")
	env.describe(t, "bob", "v1", "x")
	env.describe(t, "senior", "v1", "x")

	// "1" and "2" tie at weight 2.0 each; the tie-break winner still only
	// holds share 0.5, below the 0.75 bar.
	result, err := env.consensusSvc.AutoSubmit(ctx, "v1", env.project.ID, env.group.ID,
		[]string{"alice", "bob", "senior"}, "rita", 0.75)
	require.ErrorIs(t, err, ErrNoConsensus)
	require.NotNil(t, result)

	truth, err := env.answerRepo.GetGroundTruth(ctx, "v1", env.countQ.ID, env.project.ID)
	require.NoError(t, err)
	require.Nil(t, truth)
}

func TestAutoSubmitRefusesUnresolved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.vote(t, "alice", "v1", "1")
	env.vote(t, "bob", "v1", "1")
	env.describe(t, "alice", "v1", "one person")
	env.describe(t, "bob", "v1", "someone")

	_, err := env.consensusSvc.AutoSubmit(ctx, "v1", env.project.ID, env.group.ID,
		[]string{"alice", "bob"}, "rita", 0.5)
	require.ErrorIs(t, err, ErrNoConsensus)
}

func TestAutoSubmitValidatesThreshold(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.consensusSvc.AutoSubmit(context.Background(), "v1", env.project.ID, env.group.ID,
		[]string{"alice"}, "rita", 1.2)
	require.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAutoSubmitRespectsModelConfidence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.vote(t, "detector", "v1", "3+", 0.9)
	env.describe(t, "detector", "v1", "crowd")

	result, err := env.consensusSvc.AutoSubmit(ctx, "v1", env.project.ID, env.group.ID,
		[]string{"detector"}, "rita", 0.9)
	require.NoError(t, err)
	require.Equal(t, "3+", result.Proposed["Number of people"])

	project, err := env.projectSvc.Get(ctx, env.project.ID)
	require.NoError(t, err)
	require.Equal(t, model.ModeAnnotation, project.Mode)
}
