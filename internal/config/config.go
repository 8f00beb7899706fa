// Package config provides configuration loading and structs for the kensaku CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug  bool         `yaml:"debug"`
	Store  StoreConfig  `yaml:"store"`
	Ingest IngestConfig `yaml:"ingest"`
	Watch  WatchConfig  `yaml:"watch"`
}

// StoreConfig holds document store settings. Pointer fields distinguish
// "unset, use the default" from an explicit zero: hybrid_weight 0 is
// pure-lexical mode and min_threshold 0 filters nothing, both meaningful.
type StoreConfig struct {
	Name      string `yaml:"name"`
	Dimension int    `yaml:"dimension"`
	// DataDir is where the store persists documents. Empty means a per-store
	// subdirectory under the user home (~/.kensaku/<name>).
	DataDir string `yaml:"data_dir"`
	// Backend selects the persistence adapter: "file" or "sqlite".
	Backend           string   `yaml:"backend"`
	DefaultNumResults int      `yaml:"default_num_results"`
	MinThreshold      *float64 `yaml:"min_threshold"`
	HybridWeight      *float64 `yaml:"hybrid_weight"`
	K1                *float64 `yaml:"k1"`
	B                 *float64 `yaml:"b"`
}

// IngestConfig holds chunking settings (sizes in characters).
type IngestConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, applies defaults, and
// expands relative paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Store.DataDir = expandPath(cfg.Store.DataDir, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory changes.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
