package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillscreen/resume-screener/internal/models"
)

func TestScoreFuser_Fuse(t *testing.T) {
	fuser := NewScoreFuser(0.6, 0.4)

	final, err := fuser.Fuse(88, 0.82)
	require.NoError(t, err)
	assert.InDelta(t, 85.6, final, 1e-9)

	final, err = fuser.Fuse(40, 0.31)
	require.NoError(t, err)
	assert.InDelta(t, 36.4, final, 1e-9)
}

func TestScoreFuser_FuseBounds(t *testing.T) {
	fuser := NewScoreFuser(0.6, 0.4)

	final, err := fuser.Fuse(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, final)

	final, err = fuser.Fuse(100, 1)
	require.NoError(t, err)
	assert.Equal(t, 100.0, final)
}

func TestScoreFuser_FuseRejectsOutOfRangeInputs(t *testing.T) {
	fuser := NewScoreFuser(0.6, 0.4)

	_, err := fuser.Fuse(101, 0.5)
	assert.ErrorIs(t, err, ErrInvalidScoreInput)

	_, err = fuser.Fuse(-1, 0.5)
	assert.ErrorIs(t, err, ErrInvalidScoreInput)

	_, err = fuser.Fuse(50, 1.2)
	assert.ErrorIs(t, err, ErrInvalidScoreInput)

	_, err = fuser.Fuse(50, -0.1)
	assert.ErrorIs(t, err, ErrInvalidScoreInput)
}

func TestScoreFuser_CustomWeights(t *testing.T) {
	fuser := NewScoreFuser(0.5, 0.5)

	final, err := fuser.Fuse(80, 0.6)
	require.NoError(t, err)
	assert.InDelta(t, 70.0, final, 1e-9)
}

func TestScoreFuser_DefaultWeights(t *testing.T) {
	fuser := NewScoreFuser(0, 0)

	final, err := fuser.Fuse(88, 0.82)
	require.NoError(t, err)
	assert.InDelta(t, 85.6, final, 1e-9)
}

func TestRankResults_OrdersByFinalScoreDescending(t *testing.T) {
	results := []models.ScreeningResult{
		{CandidateName: "low", FinalScore: 36.4, Status: models.ResultScored},
		{CandidateName: "high", FinalScore: 85.6, Status: models.ResultScored},
		{CandidateName: "mid", FinalScore: 50.0, Status: models.ResultScored},
	}

	RankResults(results)

	assert.Equal(t, "high", results[0].CandidateName)
	assert.Equal(t, "mid", results[1].CandidateName)
	assert.Equal(t, "low", results[2].CandidateName)
}

func TestRankResults_TiesKeepUploadOrder(t *testing.T) {
	results := []models.ScreeningResult{
		{CandidateName: "first", Position: 0, FinalScore: 70, Status: models.ResultScored},
		{CandidateName: "second", Position: 1, FinalScore: 70, Status: models.ResultScored},
		{CandidateName: "third", Position: 2, FinalScore: 70, Status: models.ResultScored},
	}

	RankResults(results)

	assert.Equal(t, "first", results[0].CandidateName)
	assert.Equal(t, "second", results[1].CandidateName)
	assert.Equal(t, "third", results[2].CandidateName)
}

func TestRankResults_Idempotent(t *testing.T) {
	results := []models.ScreeningResult{
		{CandidateName: "b", Position: 1, FinalScore: 70, Status: models.ResultScored},
		{CandidateName: "a", Position: 0, FinalScore: 90, Status: models.ResultScored},
		{CandidateName: "c", Position: 2, FinalScore: 70, Status: models.ResultFailed},
	}

	RankResults(results)
	first := append([]models.ScreeningResult(nil), results...)
	RankResults(results)

	assert.Equal(t, first, results)
}

func TestRankResults_FailedSinkBelowScored(t *testing.T) {
	results := []models.ScreeningResult{
		{CandidateName: "broken", FinalScore: 0, Status: models.ResultFailed},
		{CandidateName: "zero", FinalScore: 0, Status: models.ResultScored},
		{CandidateName: "good", FinalScore: 90, Status: models.ResultScored},
	}

	RankResults(results)

	assert.Equal(t, "good", results[0].CandidateName)
	assert.Equal(t, "zero", results[1].CandidateName)
	assert.Equal(t, "broken", results[2].CandidateName)
}
