package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kensaku-io/kensaku/internal/models"
)

const recordExt = ".json"

// FileAdapter stores one JSON record per document under a directory.
// The file name is the URL-escaped document ID, so arbitrary IDs round-trip
// without escaping the directory.
type FileAdapter struct {
	dir string
}

// NewFileAdapter creates the directory if needed and returns an adapter over it.
func NewFileAdapter(dir string) (*FileAdapter, error) {
	if dir == "" {
		return nil, models.Invalidf("storage directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileAdapter{dir: dir}, nil
}

// Dir returns the directory the adapter writes to.
func (a *FileAdapter) Dir() string {
	return a.dir
}

func (a *FileAdapter) recordPath(id string) string {
	return filepath.Join(a.dir, url.PathEscape(id)+recordExt)
}

// LoadAll reads every record in the directory. Records that fail to read or
// decode are skipped and reported together in a *models.LoadError; all records
// that did decode are returned regardless.
func (a *FileAdapter) LoadAll(ctx context.Context) ([]*models.Document, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, fmt.Errorf("read storage directory: %w", err)
	}
	var docs []*models.Document
	var failures []models.RecordFailure
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(a.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			failures = append(failures, models.RecordFailure{Record: entry.Name(), Err: err})
			continue
		}
		var doc models.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			failures = append(failures, models.RecordFailure{Record: entry.Name(), Err: err})
			continue
		}
		if doc.ID == "" {
			failures = append(failures, models.RecordFailure{Record: entry.Name(), Err: fmt.Errorf("record has no id")})
			continue
		}
		docs = append(docs, &doc)
	}
	if len(failures) > 0 {
		return docs, &models.LoadError{Failures: failures}
	}
	return docs, nil
}

// Save writes the document record, replacing any previous record for the ID.
// The write goes through a temp file and rename so a crash mid-write leaves
// either the old record or the new one, never a torn file.
func (a *FileAdapter) Save(ctx context.Context, doc *models.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	path := a.recordPath(doc.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write document %s: %w", doc.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit document %s: %w", doc.ID, err)
	}
	return nil
}

// Delete removes the record for id. Deleting a missing record is not an error.
func (a *FileAdapter) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(a.recordPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Close is a no-op for FileAdapter.
func (a *FileAdapter) Close() error {
	return nil
}
