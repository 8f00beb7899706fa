// Package vector provides L2 normalization and dot product helpers for
// fixed-length embedding vectors.
package vector

import "math"

// normEpsilon guards against division by zero when normalizing an all-zero
// vector. The result is a (near-)zero vector, not an error.
const normEpsilon = 1e-9

// Normalize returns v scaled to unit L2 norm: v / (||v|| + 1e-9).
// The input is not modified.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	norm := L2Norm(v) + normEpsilon
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Dot returns the inner product of two vectors. For vectors already normalized
// with Normalize this is the cosine similarity, which keeps the search loop a
// single dot product per document.
func Dot(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x * x)
	}
	return math.Sqrt(sum)
}
