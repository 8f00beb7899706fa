// Package models defines core data structures for documents, search results, and errors.
package models

import "time"

// Document is a stored (text, embedding, metadata) tuple. Documents are immutable
// once constructed; an update is a delete followed by a reinsert under the same ID.
type Document struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float32         `json:"embedding"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy so callers cannot mutate store-owned state.
func (d *Document) Clone() *Document {
	out := &Document{
		ID:        d.ID,
		Text:      d.Text,
		Embedding: append([]float32(nil), d.Embedding...),
		CreatedAt: d.CreatedAt,
	}
	if d.Metadata != nil {
		out.Metadata = make(map[string]string, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// SearchResult is a read-only projection of a document produced by search.
type SearchResult struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Score     float64           `json:"score"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
