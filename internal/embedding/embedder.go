// Package embedding defines the embedding-producer capability consumed by the
// ingestion pipeline. Model inference itself lives outside the engine; the
// store only ever sees already-produced fixed-length vectors.
package embedding

import "context"

// Embedder produces vector embeddings for text. Implementations are expected
// to load any underlying model once and reuse it; Close releases it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
