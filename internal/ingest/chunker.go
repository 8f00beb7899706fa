// Package ingest splits text into overlapping chunks and feeds them into the
// document store as fileChunk documents.
package ingest

import (
	"unicode/utf8"

	"github.com/kensaku-io/kensaku/internal/models"
)

// Metadata keys attached to every ingested chunk.
const (
	MetaOriginalFileID = "originalFileID"
	MetaChunkIndex     = "chunkIndex"
	MetaText           = "text"
	MetaType           = "type"

	TypeFileChunk = "fileChunk"
)

// Chunk splits text into overlapping windows of size characters (runes, not
// bytes, so multi-byte text chunks correctly) advancing by size-overlap each
// step. The final chunk may be shorter. Returns InvalidInput when text is not
// valid UTF-8, size is not positive, overlap is negative, or overlap >= size.
func Chunk(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, models.Invalidf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, models.Invalidf("chunk overlap must be in [0, size), got %d for size %d", overlap, size)
	}
	if !utf8.ValidString(text) {
		return nil, models.Invalidf("text is not valid UTF-8")
	}
	if text == "" {
		return nil, nil
	}

	runes := []rune(text)
	var chunks []string
	offset := 0
	for {
		end := offset + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[offset:end]))
		if end >= len(runes) {
			return chunks, nil
		}
		offset = end - overlap
		if offset < 0 {
			offset = 0
		}
	}
}
