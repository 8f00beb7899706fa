package vector

import (
	"math"
	"testing"
)

func TestNormalize_UnitNorm(t *testing.T) {
	v := []float32{3, 4}
	n := Normalize(v)
	if got := L2Norm(n); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("norm after Normalize = %f, want 1", got)
	}
	if v[0] != 3 || v[1] != 4 {
		t.Error("Normalize should not modify its input")
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	n := Normalize([]float32{0, 0, 0})
	for i, x := range n {
		if x != 0 {
			t.Errorf("component %d = %f, want 0", i, x)
		}
	}
}

func TestDot(t *testing.T) {
	if got := Dot([]float32{1, 0}, []float32{1, 0}); got != 1 {
		t.Errorf("Dot identical = %f, want 1", got)
	}
	if got := Dot([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("Dot orthogonal = %f, want 0", got)
	}
	if got := Dot([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("Dot length mismatch = %f, want 0", got)
	}
}

func TestDot_CosineOfNormalized(t *testing.T) {
	a := Normalize([]float32{2, 0, 0})
	b := Normalize([]float32{5, 0, 0})
	if got := Dot(a, b); math.Abs(got-1.0) > 1e-6 {
		t.Errorf("cosine of parallel vectors = %f, want 1", got)
	}
}
