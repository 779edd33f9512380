package services

import "math"

// CosineSimilarity computes dot(a,b) / (|a|·|b|). Returns 0 when either
// vector has zero magnitude or the dimensions differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// NormalizeSimilarity maps a raw cosine value from [-1,1] into [0,1] by
// clamping negatives to 0. Scoring treats anti-correlated documents the same
// as unrelated ones.
func NormalizeSimilarity(sim float64) float64 {
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
