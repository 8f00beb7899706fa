// Package persist defines the persistence contract used by the document store
// and provides file-backed and SQLite-backed implementations.
package persist

import (
	"context"

	"github.com/kensaku-io/kensaku/internal/models"
)

// Adapter persists documents one record per document, keyed by ID. The store
// calls LoadAll once at startup and Save/Delete after each committed mutation.
//
// LoadAll collects per-record failures instead of failing outright: documents
// that decode are always returned, and when some records fail the error is a
// *models.LoadError naming each failed record.
type Adapter interface {
	LoadAll(ctx context.Context) ([]*models.Document, error)
	Save(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error
	Close() error
}
