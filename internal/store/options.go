// Package store owns the document table, the normalized-embedding cache, and
// the lexical index, and exposes add, delete, search, and reset over them.
package store

import (
	"github.com/kensaku-io/kensaku/internal/lexical"
	"github.com/kensaku-io/kensaku/internal/models"
)

// DefaultNumResults is the result count used when neither the search options
// nor the config specify one.
const DefaultNumResults = 10

// DefaultHybridWeight is the default blend between vector and lexical scores.
const DefaultHybridWeight = 0.5

// Config is supplied at store construction. Dimension is immutable for the
// life of the store and is the sole basis for embedding-length validation.
type Config struct {
	Name              string
	Dimension         int
	DefaultNumResults int
	// MinThreshold drops results whose cosine similarity is below it.
	// Nil means no minimum (0).
	MinThreshold *float64
	// HybridWeight in [0,1]: 1 is pure vector, 0 is pure lexical.
	HybridWeight float64
	K1           float64
	B            float64
}

// DefaultConfig returns a Config with the documented defaults. Callers may
// override any field, including setting HybridWeight to an explicit 0.
func DefaultConfig(name string, dimension int) Config {
	return Config{
		Name:              name,
		Dimension:         dimension,
		DefaultNumResults: DefaultNumResults,
		HybridWeight:      DefaultHybridWeight,
		K1:                lexical.DefaultK1,
		B:                 lexical.DefaultB,
	}
}

// Validate checks the config for construction.
func (c *Config) Validate() error {
	if c.Dimension <= 0 {
		return models.Invalidf("dimension must be positive, got %d", c.Dimension)
	}
	if c.HybridWeight < 0 || c.HybridWeight > 1 {
		return models.Invalidf("hybrid weight must be in [0,1], got %g", c.HybridWeight)
	}
	if c.DefaultNumResults <= 0 {
		return models.Invalidf("default num results must be positive, got %d", c.DefaultNumResults)
	}
	if c.K1 <= 0 {
		return models.Invalidf("k1 must be positive, got %g", c.K1)
	}
	if c.B < 0 || c.B > 1 {
		return models.Invalidf("b must be in [0,1], got %g", c.B)
	}
	return nil
}

// SearchOptions are per-query overrides. The zero value uses config defaults.
type SearchOptions struct {
	// NumResults caps the result count; 0 means Config.DefaultNumResults.
	NumResults int
	// Threshold overrides Config.MinThreshold for this query when non-nil.
	Threshold *float64
	// Filter narrows the search to documents whose metadata contains every
	// key/value pair (exact string equality). Nil matches everything.
	Filter map[string]string
}
