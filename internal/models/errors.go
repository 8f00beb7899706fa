package models

import (
	"fmt"
	"strings"
)

// DimensionMismatchError reports an embedding whose length does not match the
// store's configured dimension. Applies to inserts and queries alike.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// InvalidInputError reports caller input that fails validation before any
// mutation: mismatched batch lengths, empty queries, unreadable ingestion
// input, malformed filters. Never retryable; the caller must fix the input.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Message
}

// Invalidf builds an InvalidInputError with a formatted message.
func Invalidf(format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// RecordFailure names a persisted record that could not be loaded.
type RecordFailure struct {
	Record string
	Err    error
}

func (f RecordFailure) String() string {
	return fmt.Sprintf("%s: %v", f.Record, f.Err)
}

// LoadError aggregates per-record deserialization failures from startup load.
// The store remains fully usable with every record that did load; this error is
// surfaced once, after best-effort loading.
type LoadError struct {
	Failures []RecordFailure
}

func (e *LoadError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("failed to load %d record(s): %s", len(e.Failures), strings.Join(parts, "; "))
}
