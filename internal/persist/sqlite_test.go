package persist

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLiteAdapter {
	t.Helper()
	a, err := NewSQLiteAdapter(filepath.Join(t.TempDir(), "docs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSQLiteAdapter_RoundTrip(t *testing.T) {
	a := newTestSQLite(t)
	ctx := context.Background()

	want := sampleDoc("doc-1")
	if err := a.Save(ctx, want); err != nil {
		t.Fatal(err)
	}
	docs, err := a.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("loaded %d docs, want 1", len(docs))
	}
	got := docs[0]
	if got.ID != want.ID || got.Text != want.Text {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if len(got.Embedding) != 3 || got.Embedding[2] != 0.3 {
		t.Errorf("embedding did not round-trip: %v", got.Embedding)
	}
	if got.Metadata["kind"] != "test" {
		t.Errorf("metadata did not round-trip: %v", got.Metadata)
	}
}

func TestSQLiteAdapter_SaveReplacesExisting(t *testing.T) {
	a := newTestSQLite(t)
	ctx := context.Background()
	doc := sampleDoc("doc-1")
	if err := a.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	doc.Text = "updated"
	if err := a.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	docs, err := a.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Text != "updated" {
		t.Errorf("expected single updated row, got %v", docs)
	}
}

func TestSQLiteAdapter_Delete(t *testing.T) {
	a := newTestSQLite(t)
	ctx := context.Background()
	_ = a.Save(ctx, sampleDoc("x"))
	if err := a.Delete(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	docs, err := a.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Errorf("expected empty store after delete, got %d docs", len(docs))
	}
	if err := a.Delete(ctx, "x"); err != nil {
		t.Errorf("delete of missing row: %v", err)
	}
}

func TestSQLiteAdapter_NilMetadata(t *testing.T) {
	a := newTestSQLite(t)
	ctx := context.Background()
	doc := sampleDoc("bare")
	doc.Metadata = nil
	if err := a.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}
	docs, err := a.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Metadata != nil {
		t.Errorf("nil metadata should stay nil, got %v", docs)
	}
}

func TestBytesToFloat32_BadLength(t *testing.T) {
	if _, err := bytesToFloat32([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for blob length not a multiple of 4")
	}
}
