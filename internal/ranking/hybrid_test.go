package ranking

import (
	"math"
	"testing"
)

func TestHybridScore_NoTextQuery(t *testing.T) {
	if got := HybridScore(0.8, 0, false, 0.5); got != 0.8 {
		t.Errorf("no BM25 signal: got %f, want vector score 0.8", got)
	}
	if got := HybridScore(0.8, 0, false, 0.0); got != 0.8 {
		t.Errorf("no BM25 signal at weight 0: got %f, want 0.8", got)
	}
}

func TestHybridScore_PureVector(t *testing.T) {
	if got := HybridScore(0.7, 25.0, true, 1.0); got != 0.7 {
		t.Errorf("weight 1.0: got %f, want 0.7", got)
	}
	if got := HybridScore(0.7, 25.0, true, 0.999); got != 0.7 {
		t.Errorf("weight 0.999: got %f, want 0.7", got)
	}
}

func TestHybridScore_PureText(t *testing.T) {
	if got := HybridScore(0.4, 5.0, true, 0.0); got != 0.5 {
		t.Errorf("weight 0: got %f, want bm25/10 = 0.5", got)
	}
	if got := HybridScore(0.4, 25.0, true, 0.0); got != 1.0 {
		t.Errorf("weight 0 clamped: got %f, want 1.0", got)
	}
	// Zero BM25 falls back to the vector score so self-similarity survives.
	if got := HybridScore(0.4, 0, true, 0.0); got != 0.4 {
		t.Errorf("weight 0 with bm25=0: got %f, want vector score 0.4", got)
	}
}

func TestHybridScore_Blend(t *testing.T) {
	got := HybridScore(0.6, 4.0, true, 0.5)
	want := 0.5*0.6 + 0.5*0.4
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("blend: got %f, want %f", got, want)
	}
}

func TestHybridScore_BlendClampsBM25(t *testing.T) {
	got := HybridScore(0.0, 100.0, true, 0.5)
	if got != 0.5 {
		t.Errorf("blend with huge bm25: got %f, want 0.5", got)
	}
	got = HybridScore(0.0, -3.0, true, 0.5)
	if got != 0.0 {
		t.Errorf("blend with negative bm25: got %f, want 0", got)
	}
}
