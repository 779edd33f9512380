package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"skillscreen/resume-screener/internal/models"
)

func TestExportToCSV(t *testing.T) {
	results := []models.ScreeningResult{
		{
			CandidateName:   "Jane Doe",
			Status:          models.ResultScored,
			LLMScore:        88,
			SimilarityScore: 0.82,
			FinalScore:      85.6,
			Summary:         "Strong fit, direct Go experience.",
			MatchingSkills:  datatypes.NewJSONSlice([]string{"Go", "PostgreSQL"}),
			MissingSkills:   datatypes.NewJSONSlice([]string{"Kubernetes"}),
		},
		{
			CandidateName:   "John Smith",
			Status:          models.ResultScored,
			LLMScore:        40,
			SimilarityScore: 0.31,
			FinalScore:      36.4,
			Summary:         "Limited backend exposure.",
			MatchingSkills:  datatypes.NewJSONSlice([]string{"Python"}),
			MissingSkills:   datatypes.NewJSONSlice([]string{"Go", "PostgreSQL"}),
		},
	}

	data, err := NewExportService().ToCSV(results)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"candidate_name", "final_score", "llm_score", "similarity_score",
		"summary", "matching_skills", "missing_skills",
	}, records[0])

	assert.Equal(t, "Jane Doe", records[1][0])
	assert.Equal(t, "85.60", records[1][1])
	assert.Equal(t, "88.00", records[1][2])
	assert.Equal(t, "0.8200", records[1][3])
	assert.Equal(t, "Go; PostgreSQL", records[1][5])
	assert.Equal(t, "Kubernetes", records[1][6])

	assert.Equal(t, "John Smith", records[2][0])
	assert.Equal(t, "36.40", records[2][1])
}

func TestExportToCSV_EmptyResults(t *testing.T) {
	data, err := NewExportService().ToCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestExportToCSV_QuotesEmbeddedCommas(t *testing.T) {
	results := []models.ScreeningResult{
		{
			CandidateName: "Doe, Jane",
			Status:        models.ResultScored,
			Summary:       "Knows Go, SQL, and \"cloud\" things",
		},
	}

	data, err := NewExportService().ToCSV(results)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Doe, Jane", records[1][0])
	assert.Equal(t, "Knows Go, SQL, and \"cloud\" things", records[1][4])
}

func TestExportToXLSX(t *testing.T) {
	screening := &models.Screening{
		JobTitle: "Backend Engineer",
		Results: []models.ScreeningResult{
			{
				CandidateName:  "Jane Doe",
				Status:         models.ResultScored,
				FinalScore:     85.6,
				Summary:        "Strong fit.",
				MatchingSkills: datatypes.NewJSONSlice([]string{"Go"}),
			},
		},
	}

	data, err := NewExportService().ToXLSX(screening)
	require.NoError(t, err)
	// XLSX is a zip container, check the magic bytes.
	require.True(t, len(data) > 4)
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}
