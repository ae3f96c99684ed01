package storage

import "context"

// BlobStore is the object-storage capability port for generated images. Put
// returns a stable URL for the stored bytes; Get resolves a URL previously
// returned by the same store.
type BlobStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Get(ctx context.Context, url string) ([]byte, error)
}
