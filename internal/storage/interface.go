package storage

import (
	"context"
	"io"
)

// BlobStore holds uploaded booking documents.
type BlobStore interface {
	// Upload stores data under key and returns the URL the document is served from.
	Upload(ctx context.Context, key string, contentType string, data []byte) (string, error)

	// Delete removes a stored document. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// LocalFileReader is implemented by stores that can serve their own files
// (the mock store behind the download route).
type LocalFileReader interface {
	ReadFile(key string) (io.ReadCloser, error)
}
