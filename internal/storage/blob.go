// Package storage holds the blob store behind ticket artifacts. The
// interface is the narrow put-with-public-URL contract the issuance
// service needs; the disk implementation backs it with a directory that
// the HTTP server exposes under a public base URL, the way a small CDN
// service would.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore persists an artifact under a key and returns the public URL it
// can be fetched from. Put has overwrite semantics: writing an existing
// key replaces its bytes, and a subsequent fetch of the key returns the
// most recently written content. Concurrent writers to the same key race
// under last-writer-wins, which is acceptable because keys are
// deterministic functions of immutable identity fields.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// DiskStore writes blobs into a single flat directory. Content type is
// recorded nowhere on disk; the serving layer infers it from the file
// extension, so the parameter exists only to satisfy the contract of
// backends that do persist it.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates the root directory if needed and returns a store
// whose public URLs are baseURL + "/" + key.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob store: create root: %w", err)
	}
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory files are written into, for the static file
// route that serves them.
func (s *DiskStore) Root() string { return s.root }

// Put writes the blob, truncating any previous content under the same key.
// Keys must be bare file names; anything that could traverse out of the
// root is rejected before touching the filesystem.
func (s *DiskStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", fmt.Errorf("blob store: invalid key %q", key)
	}
	path := filepath.Join(s.root, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("blob store: write %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}
