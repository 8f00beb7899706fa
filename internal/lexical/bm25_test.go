package lexical

import (
	"math"
	"testing"

	"github.com/kensaku-io/kensaku/internal/models"
)

func doc(id, text string) *models.Document {
	return &models.Document{ID: id, Text: text}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("Hello, World! foo-bar 42")
	want := []string{"hello", "world", "foo", "bar", "42"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenize_Diacritics(t *testing.T) {
	got := Tokenize("Café Zürich")
	if len(got) != 2 || got[0] != "cafe" || got[1] != "zurich" {
		t.Errorf("Tokenize diacritics = %v, want [cafe zurich]", got)
	}
}

func TestTokenize_Empty(t *testing.T) {
	if got := Tokenize("  ,,, !!! "); len(got) != 0 {
		t.Errorf("Tokenize punctuation-only = %v, want empty", got)
	}
}

func TestBuild_Empty(t *testing.T) {
	if idx := Build(nil, DefaultK1, DefaultB); idx != nil {
		t.Error("Build of empty set should return nil")
	}
}

func TestBuild_Stats(t *testing.T) {
	idx := Build([]*models.Document{
		doc("a", "the quick brown fox"),
		doc("b", "the lazy dog"),
	}, DefaultK1, DefaultB)
	if idx.Size() != 2 {
		t.Fatalf("Size = %d, want 2", idx.Size())
	}
	if idx.docFreqs["the"] != 2 {
		t.Errorf("df(the) = %d, want 2", idx.docFreqs["the"])
	}
	if idx.docFreqs["fox"] != 1 {
		t.Errorf("df(fox) = %d, want 1", idx.docFreqs["fox"])
	}
	if idx.avgDocLen != 3.5 {
		t.Errorf("avgDocLen = %f, want 3.5", idx.avgDocLen)
	}
}

func TestBuild_DistinctTermsCountedOnce(t *testing.T) {
	idx := Build([]*models.Document{doc("a", "go go go")}, DefaultK1, DefaultB)
	if idx.docFreqs["go"] != 1 {
		t.Errorf("df(go) = %d, want 1 (once per document, not per occurrence)", idx.docFreqs["go"])
	}
	if idx.docLens["a"] != 3 {
		t.Errorf("docLen = %d, want 3", idx.docLens["a"])
	}
}

func TestScore_MatchesFormula(t *testing.T) {
	docs := []*models.Document{
		doc("a", "apple banana"),
		doc("b", "banana cherry"),
		doc("c", "cherry date"),
	}
	idx := Build(docs, DefaultK1, DefaultB)

	// Single term "apple": df=1, N=3, tf=1, docLen=2, avgDocLen=2.
	idf := math.Log((3 - 1 + 0.5) / (1 + 0.5))
	want := idf * 1 * (DefaultK1 + 1) / (1 + DefaultK1*(1-DefaultB+DefaultB*1.0))
	if got := idx.Score("apple", "a"); math.Abs(got-want) > 1e-12 {
		t.Errorf("Score = %f, want %f", got, want)
	}
}

func TestScore_NegativeIDFAccepted(t *testing.T) {
	// "common" in all 3 docs: idf = ln(0.5/3.5) < 0 and must not be clamped.
	docs := []*models.Document{
		doc("a", "common alpha"),
		doc("b", "common beta"),
		doc("c", "common gamma"),
	}
	idx := Build(docs, DefaultK1, DefaultB)
	if got := idx.Score("common", "a"); got >= 0 {
		t.Errorf("Score with df > N/2 = %f, want negative", got)
	}
}

func TestSearch_DropsNonPositive(t *testing.T) {
	docs := []*models.Document{
		doc("a", "common alpha"),
		doc("b", "common beta"),
		doc("c", "common gamma"),
	}
	idx := Build(docs, DefaultK1, DefaultB)
	if hits := idx.Search("common", 10); len(hits) != 0 {
		t.Errorf("negative-score hits should be discarded, got %v", hits)
	}
	if hits := idx.Search("unrelated", 10); len(hits) != 0 {
		t.Errorf("no-overlap query should yield no hits, got %v", hits)
	}
}

func TestSearch_RanksByOverlap(t *testing.T) {
	// The query terms sit in a minority of the corpus so their IDF stays
	// positive: df(go)=2, df(concurrency)=1 out of N=5.
	docs := []*models.Document{
		doc("a", "go concurrency patterns"),
		doc("b", "go standard library"),
		doc("c", "python basics"),
		doc("d", "rust ownership"),
		doc("e", "java streams"),
	}
	idx := Build(docs, DefaultK1, DefaultB)
	hits := idx.Search("go concurrency", 10)
	if len(hits) < 2 || hits[0].ID != "a" {
		t.Fatalf("expected doc a first, got %v", hits)
	}
	if hits[1].ID != "b" {
		t.Errorf("expected doc b second, got %v", hits)
	}
	for _, h := range hits {
		if h.ID == "c" {
			t.Error("doc c has no overlap and should not be a hit")
		}
	}
}

func TestSearch_TopK(t *testing.T) {
	// df(fish)=3 out of N=7 keeps idf positive, so all three fish docs
	// are hits and topK truncates them.
	docs := []*models.Document{
		doc("a", "fish one"),
		doc("b", "fish two"),
		doc("c", "fish three"),
		doc("d", "lizard"),
		doc("e", "bird"),
		doc("f", "cat"),
		doc("g", "dog"),
	}
	idx := Build(docs, DefaultK1, DefaultB)
	if hits := idx.Search("fish", 2); len(hits) != 2 {
		t.Errorf("Search topK=2 returned %d hits", len(hits))
	}
}
