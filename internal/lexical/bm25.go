package lexical

import (
	"math"
	"sort"

	"github.com/kensaku-io/kensaku/internal/models"
)

// Default Okapi BM25 tuning parameters.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// Index is a BM25 lexical index. It is a pure derived artifact of the current
// document set: rebuilt in full after any mutation and reconstructible from the
// document table alone. Zero documents means no index (callers hold nil).
type Index struct {
	k1 float64
	b  float64

	termFreqs map[string]map[string]int // doc ID -> term -> occurrences
	docLens   map[string]int            // doc ID -> token count
	docFreqs  map[string]int            // term -> number of docs containing it
	avgDocLen float64
}

// Hit is a single lexical search result.
type Hit struct {
	ID    string
	Score float64
}

// Build constructs an index over docs with the given tuning parameters.
// Returns nil when docs is empty.
func Build(docs []*models.Document, k1, b float64) *Index {
	if len(docs) == 0 {
		return nil
	}
	idx := &Index{
		k1:        k1,
		b:         b,
		termFreqs: make(map[string]map[string]int, len(docs)),
		docLens:   make(map[string]int, len(docs)),
		docFreqs:  make(map[string]int),
	}
	var totalLen int
	for _, doc := range docs {
		tokens := Tokenize(doc.Text)
		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		idx.termFreqs[doc.ID] = freqs
		idx.docLens[doc.ID] = len(tokens)
		totalLen += len(tokens)
		// Document frequency counts each distinct term once per document.
		for term := range freqs {
			idx.docFreqs[term]++
		}
	}
	idx.avgDocLen = float64(totalLen) / float64(len(docs))
	return idx
}

// Size returns the number of indexed documents.
func (idx *Index) Size() int {
	return len(idx.docLens)
}

// Score returns the BM25 score of query against the document with the given ID.
// Unknown IDs score 0.
func (idx *Index) Score(query string, id string) float64 {
	freqs, ok := idx.termFreqs[id]
	if !ok {
		return 0
	}
	return idx.score(Tokenize(query), id, freqs)
}

func (idx *Index) score(queryTerms []string, id string, freqs map[string]int) float64 {
	if idx.avgDocLen == 0 {
		return 0
	}
	n := float64(len(idx.docLens))
	docLen := float64(idx.docLens[id])
	var total float64
	for _, term := range queryTerms {
		tf := float64(freqs[term])
		if tf == 0 {
			continue
		}
		df := float64(idx.docFreqs[term])
		// IDF may go negative for terms present in more than half the corpus;
		// that is accepted, not clamped.
		idf := math.Log((n - df + 0.5) / (df + 0.5))
		total += idf * tf * (idx.k1 + 1) / (tf + idx.k1*(1-idx.b+idx.b*docLen/idx.avgDocLen))
	}
	return total
}

// ScoreAll returns the BM25 score of query against every indexed document.
// Documents with no overlapping terms score 0 and are omitted.
func (idx *Index) ScoreAll(query string) map[string]float64 {
	queryTerms := Tokenize(query)
	scores := make(map[string]float64)
	for id, freqs := range idx.termFreqs {
		if s := idx.score(queryTerms, id, freqs); s != 0 {
			scores[id] = s
		}
	}
	return scores
}

// Search scores query against every document and returns the top k hits in
// descending score order, discarding zero-or-negative scores. A query with no
// lexical overlap yields no hits.
func (idx *Index) Search(query string, k int) []Hit {
	scores := idx.ScoreAll(query)
	hits := make([]Hit, 0, len(scores))
	for id, s := range scores {
		if s > 0 {
			hits = append(hits, Hit{ID: id, Score: s})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
