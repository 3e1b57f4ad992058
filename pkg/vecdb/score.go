package vecdb

import "math"

// occurrenceLogBase damps the occurrence weight so that repeat counts give
// a gentle, saturating boost instead of dominating pure similarity.
const occurrenceLogBase = 50

// CosineSimilarity computes the cosine similarity of two vectors. Zero
// vectors and mismatched lengths yield 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Score combines cosine similarity with a log-damped occurrence weight.
func Score(similarity float64, occurrence int) float64 {
	weight := math.Log(float64(occurrence)+1) / math.Log(occurrenceLogBase)
	return similarity * weight
}
