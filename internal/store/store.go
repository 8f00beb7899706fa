package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kensaku-io/kensaku/internal/lexical"
	"github.com/kensaku-io/kensaku/internal/models"
	"github.com/kensaku-io/kensaku/internal/persist"
	"github.com/kensaku-io/kensaku/internal/ranking"
	"github.com/kensaku-io/kensaku/internal/vector"
)

// Store is the document store. The document table, the normalized-embedding
// cache, and the lexical index are guarded by one RWMutex: exactly one
// mutation is in flight at a time, and reads observe the state after the most
// recently committed mutation.
//
// Invariant: a normalized cache entry exists if and only if its document ID
// exists in the table. Every insert and remove touches both in the same
// critical section. The lexical index is rebuilt in full after each mutation.
//
// Persistence strictly follows the in-memory commit and fans out concurrently
// per document with no ordering guarantee between documents. A persistence
// failure is surfaced to the caller but the in-memory state stays committed;
// disk may lag memory until the next successful write.
type Store struct {
	cfg     Config
	adapter persist.Adapter
	logger  *zap.Logger // optional; when set, logs mutations and load issues

	mu         sync.RWMutex
	docs       map[string]*models.Document
	normalized map[string][]float32
	lexical    *lexical.Index // nil when the store is empty
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open constructs a store over adapter and loads every persisted document,
// rebuilding the normalized-embedding cache and the lexical index from
// scratch. Per-record load failures are not fatal: the returned store keeps
// every document that did load, and the error (a *models.LoadError) lists the
// records that did not. Callers should treat a non-nil store with a
// *models.LoadError as usable.
func Open(ctx context.Context, cfg Config, adapter persist.Adapter, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Store{
		cfg:        cfg,
		adapter:    adapter,
		docs:       make(map[string]*models.Document),
		normalized: make(map[string][]float32),
	}
	for _, opt := range opts {
		opt(s)
	}

	docs, err := adapter.LoadAll(ctx)
	var failures []models.RecordFailure
	if err != nil {
		var loadErr *models.LoadError
		if !errors.As(err, &loadErr) {
			return nil, fmt.Errorf("load documents: %w", err)
		}
		failures = loadErr.Failures
	}
	for _, doc := range docs {
		if len(doc.Embedding) != cfg.Dimension {
			failures = append(failures, models.RecordFailure{
				Record: doc.ID,
				Err:    &models.DimensionMismatchError{Expected: cfg.Dimension, Got: len(doc.Embedding)},
			})
			continue
		}
		s.docs[doc.ID] = doc
		s.normalized[doc.ID] = vector.Normalize(doc.Embedding)
	}
	s.rebuildLexicalLocked()

	if s.logger != nil {
		s.logger.Info("store opened",
			zap.String("name", cfg.Name),
			zap.Int("dimension", cfg.Dimension),
			zap.Int("documents", len(s.docs)),
			zap.Int("failed_records", len(failures)))
	}
	if len(failures) > 0 {
		return s, &models.LoadError{Failures: failures}
	}
	return s, nil
}

// Config returns the store configuration.
func (s *Store) Config() Config {
	return s.cfg
}

// rebuildLexicalLocked recomputes the lexical index from the current document
// set. Caller must hold the write lock (or have exclusive access during Open).
func (s *Store) rebuildLexicalLocked() {
	if len(s.docs) == 0 {
		s.lexical = nil
		return
	}
	docs := make([]*models.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	s.lexical = lexical.Build(docs, s.cfg.K1, s.cfg.B)
}

// AddBatch validates and inserts a batch of documents. ids and metadatas may
// be nil; empty ID entries get a generated UUID. Inserting under an existing
// ID replaces that document (delete-then-reinsert update semantics); the
// previous metadata carries over unless the batch supplies a replacement.
//
// Validation runs in full before any mutation, so a failed batch never
// touches memory: ids length, metadatas length, embeddings length, then every
// embedding's dimension. On success the in-memory commit (table, cache,
// lexical rebuild) completes before persistence is issued; persistence fans
// out concurrently per document and a persistence error does not roll the
// commit back.
func (s *Store) AddBatch(ctx context.Context, texts []string, embeddings [][]float32, ids []string, metadatas []map[string]string) ([]string, error) {
	if ids != nil && len(ids) != len(texts) {
		return nil, models.Invalidf("ids length %d does not match texts length %d", len(ids), len(texts))
	}
	if metadatas != nil && len(metadatas) != len(texts) {
		return nil, models.Invalidf("metadatas length %d does not match texts length %d", len(metadatas), len(texts))
	}
	if len(embeddings) != len(texts) {
		return nil, models.Invalidf("embeddings length %d does not match texts length %d", len(embeddings), len(texts))
	}
	if len(texts) == 0 {
		return nil, nil
	}
	for _, emb := range embeddings {
		if len(emb) != s.cfg.Dimension {
			return nil, &models.DimensionMismatchError{Expected: s.cfg.Dimension, Got: len(emb)}
		}
	}

	outIDs := make([]string, len(texts))
	for i := range texts {
		if ids != nil && ids[i] != "" {
			outIDs[i] = ids[i]
		} else {
			outIDs[i] = uuid.New().String()
		}
	}

	saved := make([]*models.Document, 0, len(texts))
	s.mu.Lock()
	now := time.Now()
	for i, text := range texts {
		doc := &models.Document{
			ID:        outIDs[i],
			Text:      text,
			Embedding: append([]float32(nil), embeddings[i]...),
			CreatedAt: now,
		}
		if metadatas != nil && metadatas[i] != nil {
			doc.Metadata = make(map[string]string, len(metadatas[i]))
			for k, v := range metadatas[i] {
				doc.Metadata[k] = v
			}
		} else if prev, ok := s.docs[doc.ID]; ok {
			// Reinserting under an existing ID without metadata keeps the
			// previous document's metadata.
			doc.Metadata = copyMetadata(prev.Metadata)
		}
		s.docs[doc.ID] = doc
		s.normalized[doc.ID] = vector.Normalize(doc.Embedding)
		saved = append(saved, doc.Clone())
	}
	s.rebuildLexicalLocked()
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("batch committed", zap.Int("documents", len(saved)))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, doc := range saved {
		doc := doc
		g.Go(func() error { return s.adapter.Save(gctx, doc) })
	}
	if err := g.Wait(); err != nil {
		if s.logger != nil {
			s.logger.Warn("persistence failed after commit", zap.Error(err))
		}
		return outIDs, fmt.Errorf("persist batch: %w", err)
	}
	return outIDs, nil
}

// Search ranks documents against a query embedding alone (pure vector score).
func (s *Store) Search(ctx context.Context, queryEmbedding []float32, opts *SearchOptions) ([]*models.SearchResult, error) {
	return s.SearchWithText(ctx, "", queryEmbedding, opts)
}

// SearchWithText ranks documents against a query embedding and, when queryText
// is non-empty, blends each document's BM25 score for it via the hybrid
// weight. Every filter-matching document is scored; those with cosine
// similarity below the threshold (opts.Threshold, else Config.MinThreshold,
// else 0) are dropped. Results sort by descending score with ties broken by
// ascending ID, truncated to the requested count.
func (s *Store) SearchWithText(ctx context.Context, queryText string, queryEmbedding []float32, opts *SearchOptions) ([]*models.SearchResult, error) {
	if len(queryEmbedding) == 0 {
		return nil, models.Invalidf("query embedding must not be empty")
	}
	if len(queryEmbedding) != s.cfg.Dimension {
		return nil, &models.DimensionMismatchError{Expected: s.cfg.Dimension, Got: len(queryEmbedding)}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &SearchOptions{}
	}
	query := vector.Normalize(queryEmbedding)

	threshold := 0.0
	switch {
	case opts.Threshold != nil:
		threshold = *opts.Threshold
	case s.cfg.MinThreshold != nil:
		threshold = *s.cfg.MinThreshold
	}
	limit := opts.NumResults
	if limit <= 0 {
		limit = s.cfg.DefaultNumResults
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hasBM25 := queryText != ""
	var bm25 map[string]float64
	if hasBM25 && s.lexical != nil {
		bm25 = s.lexical.ScoreAll(queryText)
	}

	results := make([]*models.SearchResult, 0, len(s.docs))
	for id, doc := range s.docs {
		if !matchesFilter(doc, opts.Filter) {
			continue
		}
		similarity := vector.Dot(query, s.normalized[id])
		if similarity < threshold {
			continue
		}
		score := ranking.HybridScore(similarity, bm25[id], hasBM25, s.cfg.HybridWeight)
		results = append(results, &models.SearchResult{
			ID:        id,
			Text:      doc.Text,
			Score:     score,
			CreatedAt: doc.CreatedAt,
			Metadata:  copyMetadata(doc.Metadata),
		})
	}
	// Equal scores sort by ascending ID so result order is deterministic.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Delete removes the documents with the given IDs. Missing IDs are ignored.
// The cache entries go with the documents, the lexical index is rebuilt (or
// cleared when the store empties), and the persisted records are removed after
// the in-memory commit.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.docs[id]; !ok {
			continue
		}
		delete(s.docs, id)
		delete(s.normalized, id)
		removed = append(removed, id)
	}
	if len(removed) > 0 {
		s.rebuildLexicalLocked()
	}
	s.mu.Unlock()

	if len(removed) == 0 {
		return nil
	}
	if s.logger != nil {
		s.logger.Debug("documents deleted", zap.Int("count", len(removed)))
	}
	return s.deletePersisted(ctx, removed)
}

// DeleteByFilter removes every document matching the metadata filter. A nil
// filter matches everything and therefore clears the store.
func (s *Store) DeleteByFilter(ctx context.Context, filter map[string]string) error {
	s.mu.Lock()
	var removed []string
	for id, doc := range s.docs {
		if matchesFilter(doc, filter) {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		delete(s.docs, id)
		delete(s.normalized, id)
	}
	if len(removed) > 0 {
		s.rebuildLexicalLocked()
	}
	s.mu.Unlock()

	if len(removed) == 0 {
		return nil
	}
	if s.logger != nil {
		s.logger.Debug("documents deleted by filter", zap.Int("count", len(removed)))
	}
	return s.deletePersisted(ctx, removed)
}

// Reset clears the table, the cache, and the index, and removes every
// persisted record.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	removed := make([]string, 0, len(s.docs))
	for id := range s.docs {
		removed = append(removed, id)
	}
	s.docs = make(map[string]*models.Document)
	s.normalized = make(map[string][]float32)
	s.lexical = nil
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("store reset", zap.Int("removed", len(removed)))
	}
	return s.deletePersisted(ctx, removed)
}

func (s *Store) deletePersisted(ctx context.Context, ids []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error { return s.adapter.Delete(gctx, id) })
	}
	if err := g.Wait(); err != nil {
		if s.logger != nil {
			s.logger.Warn("persisted delete failed after commit", zap.Error(err))
		}
		return fmt.Errorf("delete persisted records: %w", err)
	}
	return nil
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Count returns the number of documents in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Exists reports whether a document with the given ID is in the store.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[id]
	return ok
}

// ExistAll reports whether every given ID is in the store.
func (s *Store) ExistAll(ids []string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range ids {
		if _, ok := s.docs[id]; !ok {
			return false
		}
	}
	return true
}

// Get returns a copy of the document with the given ID, or false.
func (s *Store) Get(id string) (*models.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

// Close closes the underlying persistence adapter.
func (s *Store) Close() error {
	return s.adapter.Close()
}
