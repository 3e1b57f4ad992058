package vecdb

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("CosineSimilarity() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestScoreOccurrenceWeight(t *testing.T) {
	// Equal similarity: the more frequent entry must score strictly higher.
	if Score(0.8, 5) <= Score(0.8, 1) {
		t.Error("occurrence 5 should outscore occurrence 1 at equal similarity")
	}
	// Equal occurrence: the closer match must score strictly higher.
	if Score(0.9, 1) <= Score(0.5, 1) {
		t.Error("similarity 0.9 should outscore similarity 0.5 at equal occurrence")
	}
	// The damping is gentle: heavy repetition cannot make a weak match
	// beat a strong one with moderate frequency.
	if Score(0.3, 50) >= Score(0.95, 3) {
		t.Error("occurrence weight should saturate instead of dominating similarity")
	}
}
