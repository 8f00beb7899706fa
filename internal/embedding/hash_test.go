package embedding

import (
	"context"
	"math"
	"testing"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(16)
	ctx := context.Background()
	a, err := e.Embed(ctx, "same text")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(ctx, "same text")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text should yield the same embedding")
		}
	}
	c, _ := e.Embed(ctx, "different text")
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should yield different embeddings")
	}
}

func TestHashEmbedder_UnitLength(t *testing.T) {
	e := NewHashEmbedder(32)
	emb, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if len(emb) != 32 {
		t.Fatalf("dimensions = %d, want 32", len(emb))
	}
	var sum float64
	for _, v := range emb {
		sum += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-5 {
		t.Errorf("norm = %f, want 1", math.Sqrt(sum))
	}
}

func TestHashEmbedder_Batch(t *testing.T) {
	e := NewHashEmbedder(8)
	out, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || len(out[0]) != 8 {
		t.Errorf("batch shape wrong: %d x %d", len(out), len(out[0]))
	}
}
