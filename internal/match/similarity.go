package match

import "math"

// Cosine returns the cosine similarity between two vectors, in [-1,1].
// Mismatched dimensions or zero-norm vectors yield 0.
func Cosine(a, b []float32) float64 {
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

// Cos01 maps cosine similarity into [0,1]: opposed vectors score 0,
// orthogonal 0.5, identical 1. Degenerate input (mismatched dimensions,
// zero norm) scores 0 rather than 0.5.
func Cos01(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var normA, normB float64
	for i := range a {
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return (Cosine(a, b) + 1) / 2
}
