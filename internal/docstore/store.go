// Package docstore stores original report documents addressed by their
// content hash. The pipeline writes bytes once at submission; downloads and
// artifact verification read them back by hash. Same hash, same bytes: a
// Put for an existing hash is a no-op, never an overwrite.
package docstore

import "context"

// Store is the content-addressed document boundary.
type Store interface {
	// Put stores the document under its content hash. Storing the same
	// hash again succeeds without rewriting.
	Put(ctx context.Context, contentHash string, data []byte) error
	// Get returns the stored bytes, sentinel.ErrNotFound when absent.
	Get(ctx context.Context, contentHash string) ([]byte, error)
	Exists(ctx context.Context, contentHash string) (bool, error)
}
