package fileid

import (
	"testing"

	"github.com/google/uuid"
)

func TestFileID_Deterministic(t *testing.T) {
	id1 := FileID("/foo/bar.txt")
	id2 := FileID("/foo/bar.txt")
	if id1 != id2 {
		t.Errorf("same path should give same ID: %q vs %q", id1, id2)
	}
	if _, err := uuid.Parse(id1); err != nil {
		t.Errorf("ID should be a UUID string, got %q: %v", id1, err)
	}
}

func TestFileID_DifferentPaths(t *testing.T) {
	if FileID("/foo/bar.txt") == FileID("/foo/baz.txt") {
		t.Error("different paths should give different IDs")
	}
}

func TestFileID_Normalized(t *testing.T) {
	id1 := FileID("/foo/bar")
	id2 := FileID("/foo/bar/")
	id3 := FileID("/foo/./bar")
	if id1 != id2 || id1 != id3 {
		t.Errorf("equivalent paths should normalize to one ID: %q %q %q", id1, id2, id3)
	}
}
