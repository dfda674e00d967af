package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FSBlobStore keeps blobs as plain files under a root directory, one file
// per key.
type FSBlobStore struct {
	root string
}

// NewFSBlobStore creates a filesystem-backed blob store rooted at dir.
func NewFSBlobStore(dir string) *FSBlobStore {
	return &FSBlobStore{root: dir}
}

func (s *FSBlobStore) pathFor(key string) string {
	// Keys use forward slashes; keep them inside the root.
	clean := filepath.Clean("/" + strings.ReplaceAll(key, "..", ""))
	return filepath.Join(s.root, clean)
}

func (s *FSBlobStore) Put(ctx context.Context, key string, data []byte) error {
	p := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

func (s *FSBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

func (s *FSBlobStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
