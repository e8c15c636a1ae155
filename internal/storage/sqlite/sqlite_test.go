package sqlitestorage

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"

	"github.com/threekingdoms/progression/internal/config"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(config.StorageConfig{Type: "sqlite", Path: ""}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestRoundTrip(t *testing.T) {
	b := newTestBackend(t)

	doc := []byte(`{"version":3,"progress":{"milestones":[]}}`)
	if err := b.Put("roundtrip", doc); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := b.Get("roundtrip")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected document to exist")
	}
	if !bytes.Equal(got, doc) {
		t.Errorf("expected %s, got %s", doc, got)
	}
}

func TestPutReplaces(t *testing.T) {
	b := newTestBackend(t)

	_ = b.Put("replace", []byte(`{"version":1}`))
	if err := b.Put("replace", []byte(`{"version":3}`)); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, _, _ := b.Get("replace")
	if string(got) != `{"version":3}` {
		t.Errorf("expected replacement document, got %s", got)
	}
}

func TestHasAndDelete(t *testing.T) {
	b := newTestBackend(t)

	if ok, _ := b.Has("lifecycle"); ok {
		t.Error("expected Has false before Put")
	}
	_ = b.Put("lifecycle", []byte(`{}`))
	if ok, _ := b.Has("lifecycle"); !ok {
		t.Error("expected Has true after Put")
	}
	if err := b.Delete("lifecycle"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := b.Has("lifecycle"); ok {
		t.Error("expected Has false after Delete")
	}
}
