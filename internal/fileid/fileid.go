// Package fileid derives a stable ingestion ID from a file path.
package fileid

import (
	"path/filepath"

	"github.com/google/uuid"
)

// FileID returns a deterministic UUID string for the given absolute path.
// The same path always yields the same ID, so re-ingesting a changed file
// replaces its earlier chunks instead of accumulating duplicates.
func FileID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+normalized)).String()
}
