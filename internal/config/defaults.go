package config

import (
	"os"
	"path/filepath"
)

// Documented defaults for the store and chunker.
const (
	DefaultStoreName    = "default"
	DefaultDimension    = 384
	DefaultNumResults   = 10
	DefaultHybridWeight = 0.5
	DefaultK1           = 1.2
	DefaultB            = 0.75
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 64
	DefaultBackend      = "file"
)

// ApplyDefaults sets default values for any unset fields in cfg.
// MinThreshold stays nil when unset (no minimum).
func ApplyDefaults(cfg *Config) {
	if cfg.Store.Name == "" {
		cfg.Store.Name = DefaultStoreName
	}
	if cfg.Store.Dimension == 0 {
		cfg.Store.Dimension = DefaultDimension
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultBackend
	}
	if cfg.Store.DataDir == "" {
		cfg.Store.DataDir = DefaultDataDir(cfg.Store.Name)
	}
	if cfg.Store.DefaultNumResults == 0 {
		cfg.Store.DefaultNumResults = DefaultNumResults
	}
	if cfg.Store.HybridWeight == nil {
		w := DefaultHybridWeight
		cfg.Store.HybridWeight = &w
	}
	if cfg.Store.K1 == nil {
		k1 := DefaultK1
		cfg.Store.K1 = &k1
	}
	if cfg.Store.B == nil {
		b := DefaultB
		cfg.Store.B = &b
	}
	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = DefaultChunkSize
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".xlsx", ".pptx", ".odp", ".ods"}
	}
}

// DefaultDataDir returns the conventional per-store storage directory.
func DefaultDataDir(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".kensaku", name)
	}
	return filepath.Join(home, ".kensaku", name)
}
