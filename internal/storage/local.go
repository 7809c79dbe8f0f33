package storage

import (
	"context"
	"os"
	"path/filepath"
)

// LocalStore writes objects under a root directory, mirroring the logical
// key layout on disk. Used for runs without an object-storage endpoint.
type LocalStore struct {
	root string
}

// NewLocalStore creates the root directory if needed
func NewLocalStore(root string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, storageErr("resolve root", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, storageErr("create root", err)
	}
	return &LocalStore{root: abs}, nil
}

// Put writes the bytes to root/key, creating parent directories and
// overwriting any existing file at that path
func (s *LocalStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", storageErr("create directory", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", storageErr("write file", err)
	}
	return target, nil
}

func (s *LocalStore) Close() error {
	return nil
}
