package port

import (
	"context"
	"errors"
)

// BlobStore is the contract for file storage used by message attachments.
// Objects are addressed by (bucket, path) to match the original deployment's
// bucket-based storage; adapters may map buckets to directories, containers
// or prefixes as appropriate.
type BlobStore interface {
	// Upload writes data at (bucket, path), creating the bucket if needed.
	// Uploading to an existing path overwrites it.
	Upload(ctx context.Context, bucket, path string, data []byte) error

	// Download reads the object at (bucket, path).
	Download(ctx context.Context, bucket, path string) ([]byte, error)
}

// ErrNotFound is returned by Download when no object exists at the path.
var ErrNotFound = errors.New("storage: object not found")
