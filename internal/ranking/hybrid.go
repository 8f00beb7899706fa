// Package ranking combines vector similarity and BM25 scores into one ranked score.
package ranking

// bm25Divisor maps the unbounded BM25 range onto [0,1]. This is a fixed, coarse
// normalization kept bit-for-bit for score compatibility; see DESIGN.md.
const bm25Divisor = 10.0

// Weight thresholds below/above which the blend degenerates to a single signal.
const (
	pureVectorWeight = 0.999
	pureTextWeight   = 0.001
)

// HybridScore blends a cosine similarity in [-1,1] and a raw BM25 score >= 0
// under weight in [0,1]. hasBM25 is false when no text query was available, in
// which case the vector score is returned unchanged.
//
// weight >= 0.999 is pure-vector mode. weight <= 0.001 is pure-text mode,
// except that a zero BM25 score falls back to the vector score so exact-match
// self-similarity survives even there. Otherwise the normalized BM25 score is
// blended linearly: weight*vector + (1-weight)*clamp(bm25/10, 0, 1).
func HybridScore(vectorScore, bm25Score float64, hasBM25 bool, weight float64) float64 {
	if !hasBM25 {
		return vectorScore
	}
	switch {
	case weight >= pureVectorWeight:
		return vectorScore
	case weight <= pureTextWeight:
		if bm25Score == 0 {
			return vectorScore
		}
		return normalizeBM25(bm25Score)
	default:
		return weight*vectorScore + (1-weight)*normalizeBM25(bm25Score)
	}
}

func normalizeBM25(score float64) float64 {
	n := score / bm25Divisor
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}
