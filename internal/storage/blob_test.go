package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskStorePutAndOverwrite(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "/tickets/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	url, err := s.Put(ctx, "adph-2026-r123.png", []byte("first"), "image/png")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "/tickets/adph-2026-r123.png" {
		t.Fatalf("unexpected url %q", url)
	}

	// Second write under the same key must replace, not fail or append.
	if _, err := s.Put(ctx, "adph-2026-r123.png", []byte("second"), "image/png"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "adph-2026-r123.png"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected last write to win, got %q", got)
	}
}

func TestDiskStoreRejectsTraversalKeys(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "/tickets")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, key := range []string{"", "../escape.png", "a/b.png", `a\b.png`, "a..b/../c"} {
		if _, err := s.Put(context.Background(), key, []byte("x"), "image/png"); err == nil {
			t.Errorf("key %q must be rejected", key)
		}
	}
}

func TestDiskStoreCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "tickets")
	if _, err := NewDiskStore(root, "/tickets"); err != nil {
		t.Fatalf("new store: %v", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		t.Fatalf("root directory not created: %v", err)
	}
}
