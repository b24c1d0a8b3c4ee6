package adapter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pranishuprety/Respondrr/internal/infrastructure/storage/port"
)

// FSBlobStore satisfies port.BlobStore on the local filesystem. Buckets map
// to directories under the root; object paths may contain slashes.
type FSBlobStore struct {
	root string
}

// NewFSBlobStore creates the root directory if missing.
func NewFSBlobStore(root string) (*FSBlobStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FSBlobStore{root: root}, nil
}

// NewFSBlobStoreFromEnv uses STORAGE_DIR, defaulting to ./data/storage.
func NewFSBlobStoreFromEnv() (*FSBlobStore, error) {
	dir := strings.TrimSpace(os.Getenv("STORAGE_DIR"))
	if dir == "" {
		dir = filepath.Join("data", "storage")
	}
	return NewFSBlobStore(dir)
}

var _ port.BlobStore = (*FSBlobStore)(nil)

func (s *FSBlobStore) Upload(ctx context.Context, bucket, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(bucket, path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("storage: write: %w", err)
	}
	return nil
}

func (s *FSBlobStore) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(bucket, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read: %w", err)
	}
	return data, nil
}

// resolve joins bucket and path under the root and rejects traversal outside it.
func (s *FSBlobStore) resolve(bucket, path string) (string, error) {
	if bucket == "" || path == "" {
		return "", errors.New("storage: bucket and path are required")
	}
	full := filepath.Join(s.root, filepath.Clean(bucket), filepath.Clean("/"+path))
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(fullAbs, rootAbs+string(os.PathSeparator)) {
		return "", errors.New("storage: path escapes root")
	}
	return full, nil
}
