package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kensaku-io/kensaku/internal/embedding"
	"github.com/kensaku-io/kensaku/internal/extract"
	"github.com/kensaku-io/kensaku/internal/fileid"
	"github.com/kensaku-io/kensaku/internal/models"
	"github.com/kensaku-io/kensaku/internal/store"
)

// Ingester turns files and raw text into chunked, embedded documents.
type Ingester struct {
	store        *store.Store
	embedder     embedding.Embedder
	extractor    *extract.Extractor
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger // optional; when set, logs ingestion events
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(g *Ingester) { g.logger = l }
}

// NewIngester creates an ingester. extractor may be nil, in which case
// IngestFile treats every file as plain text.
func NewIngester(s *store.Store, embedder embedding.Embedder, extractor *extract.Extractor, chunkSize, chunkOverlap int, opts ...Option) *Ingester {
	g := &Ingester{
		store:        s,
		embedder:     embedder,
		extractor:    extractor,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IngestText chunks text, embeds each chunk, and adds the chunks to the store
// under the shared fileID. An empty fileID gets a fresh UUID. Re-ingesting
// under an existing fileID replaces that ingestion's previous chunks; they are
// removed only after the replacement embeddings are ready.
// Returns the fileID and the document IDs of the chunks.
func (g *Ingester) IngestText(ctx context.Context, text, fileID string) (string, []string, error) {
	if fileID == "" {
		fileID = uuid.New().String()
	}
	chunks, err := Chunk(text, g.chunkSize, g.chunkOverlap)
	if err != nil {
		return "", nil, err
	}
	if len(chunks) == 0 {
		return "", nil, models.Invalidf("nothing to ingest: text is empty")
	}

	// Embed before touching the store: an embedding failure must leave any
	// previous ingestion under this fileID intact.
	embeddings, err := g.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return "", nil, fmt.Errorf("embed chunks: %w", err)
	}
	metadatas := make([]map[string]string, len(chunks))
	for i, chunk := range chunks {
		metadatas[i] = map[string]string{
			MetaOriginalFileID: fileID,
			MetaChunkIndex:     strconv.Itoa(i),
			MetaText:           chunk,
			MetaType:           TypeFileChunk,
		}
	}

	if err := g.store.DeleteByFilter(ctx, map[string]string{
		MetaOriginalFileID: fileID,
		MetaType:           TypeFileChunk,
	}); err != nil {
		return "", nil, fmt.Errorf("remove previous chunks for %s: %w", fileID, err)
	}
	ids, err := g.store.AddBatch(ctx, chunks, embeddings, nil, metadatas)
	if err != nil {
		return fileID, nil, err
	}
	if g.logger != nil {
		g.logger.Debug("text ingested", zap.String("file_id", fileID), zap.Int("chunks", len(ids)))
	}
	return fileID, ids, nil
}

// IngestFile extracts text from the file at path and ingests it. The fileID is
// derived deterministically from the absolute path, so re-ingesting a changed
// file replaces its previous chunks.
func (g *Ingester) IngestFile(ctx context.Context, path string) (string, []string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", nil, fmt.Errorf("absolute path: %w", err)
	}
	text, err := g.extractText(absPath)
	if err != nil {
		return "", nil, models.Invalidf("read ingestion file %s: %v", absPath, err)
	}
	fileID := fileid.FileID(absPath)
	id, ids, err := g.IngestText(ctx, text, fileID)
	if err != nil {
		return "", nil, err
	}
	if g.logger != nil {
		g.logger.Debug("file ingested", zap.String("path", absPath), zap.String("file_id", id))
	}
	return id, ids, nil
}

// RemoveFile deletes every chunk previously ingested from path.
func (g *Ingester) RemoveFile(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}
	return g.store.DeleteByFilter(ctx, map[string]string{
		MetaOriginalFileID: fileid.FileID(absPath),
		MetaType:           TypeFileChunk,
	})
}

func (g *Ingester) extractText(path string) (string, error) {
	if g.extractor != nil {
		return g.extractor.Extract(path)
	}
	return extract.PlainFile(path)
}
