package store

import "github.com/kensaku-io/kensaku/internal/models"

// matchesFilter reports whether doc satisfies the metadata filter: every
// key in the filter must be present in the document's metadata with an equal
// value. A nil or empty filter matches every document; a document without
// metadata never matches a non-empty filter.
func matchesFilter(doc *models.Document, filter map[string]string) bool {
	if len(filter) == 0 {
		return true
	}
	if doc.Metadata == nil {
		return false
	}
	for k, want := range filter {
		got, ok := doc.Metadata[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}
