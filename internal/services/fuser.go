package services

import (
	"fmt"
	"sort"

	"skillscreen/resume-screener/internal/models"
)

// ScoreFuser combines the LLM score and the embedding similarity into the
// final candidate score.
type ScoreFuser struct {
	llmWeight        float64
	similarityWeight float64
}

func NewScoreFuser(llmWeight, similarityWeight float64) *ScoreFuser {
	if llmWeight <= 0 && similarityWeight <= 0 {
		llmWeight = 0.6
		similarityWeight = 0.4
	}
	return &ScoreFuser{
		llmWeight:        llmWeight,
		similarityWeight: similarityWeight,
	}
}

// Fuse computes llmWeight·llmScore + similarityWeight·(similarity·100),
// clamped to [0,100]. llmScore must be in [0,100] and similarity in [0,1].
func (f *ScoreFuser) Fuse(llmScore, similarity float64) (float64, error) {
	if llmScore < 0 || llmScore > 100 {
		return 0, fmt.Errorf("%w: llm score %.2f not in [0,100]", ErrInvalidScoreInput, llmScore)
	}
	if similarity < 0 || similarity > 1 {
		return 0, fmt.Errorf("%w: similarity %.4f not in [0,1]", ErrInvalidScoreInput, similarity)
	}

	final := f.llmWeight*llmScore + f.similarityWeight*similarity*100

	if final < 0 {
		final = 0
	}
	if final > 100 {
		final = 100
	}

	return final, nil
}

// RankResults sorts results by final score descending. The sort is stable so
// ties keep upload order; failed results sink below every scored one.
func RankResults(results []models.ScreeningResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Status != results[j].Status {
			return results[i].Status == models.ResultScored
		}
		return results[i].FinalScore > results[j].FinalScore
	})
}
