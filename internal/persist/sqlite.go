package persist

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kensaku-io/kensaku/internal/models"
)

// SQLiteAdapter implements Adapter using a single SQLite database. Embeddings
// are stored as little-endian float32 blobs and metadata as JSON text.
type SQLiteAdapter struct {
	db *sql.DB
}

// NewSQLiteAdapter opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func NewSQLiteAdapter(dbPath string) (*SQLiteAdapter, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		embedding BLOB NOT NULL,
		metadata TEXT,
		created_at TIMESTAMP NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLiteAdapter{db: db}, nil
}

// LoadAll reads every row. Rows that fail to decode are skipped and reported
// together in a *models.LoadError; all rows that did decode are returned.
func (a *SQLiteAdapter) LoadAll(ctx context.Context) ([]*models.Document, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, text, embedding, metadata, created_at FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	var failures []models.RecordFailure
	for rows.Next() {
		var (
			doc          models.Document
			blob         []byte
			metadataJSON sql.NullString
		)
		if err := rows.Scan(&doc.ID, &doc.Text, &blob, &metadataJSON, &doc.CreatedAt); err != nil {
			failures = append(failures, models.RecordFailure{Record: "row", Err: err})
			continue
		}
		emb, err := bytesToFloat32(blob)
		if err != nil {
			failures = append(failures, models.RecordFailure{Record: doc.ID, Err: err})
			continue
		}
		doc.Embedding = emb
		if metadataJSON.Valid && metadataJSON.String != "" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &doc.Metadata); err != nil {
				failures = append(failures, models.RecordFailure{Record: doc.ID, Err: err})
				continue
			}
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return docs, fmt.Errorf("iterate documents: %w", err)
	}
	if len(failures) > 0 {
		return docs, &models.LoadError{Failures: failures}
	}
	return docs, nil
}

// Save inserts or replaces the row for the document's ID.
func (a *SQLiteAdapter) Save(ctx context.Context, doc *models.Document) error {
	var metadataJSON interface{}
	if doc.Metadata != nil {
		data, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %s: %w", doc.ID, err)
		}
		metadataJSON = string(data)
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, text, embedding, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		doc.ID, doc.Text, float32ToBytes(doc.Embedding), metadataJSON, createdAt,
	)
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

// Delete removes the row for id. Deleting a missing row is not an error.
func (a *SQLiteAdapter) Delete(ctx context.Context, id string) error {
	if _, err := a.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Close closes the database.
func (a *SQLiteAdapter) Close() error {
	return a.db.Close()
}

func float32ToBytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:(i+1)*4], math.Float32bits(x))
	}
	return out
}

func bytesToFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : (i+1)*4]))
	}
	return out, nil
}
