// Package objectstore abstracts where punch images and face enrolment
// crops are persisted: local disk for development, S3 for production, or a
// proxied external HTTP store for deployments that keep media behind an
// existing asset service (spec.md §4.6).
package objectstore

import (
	"context"
	"io"
)

// Store persists and retrieves opaque byte blobs by key.
type Store interface {
	// Put writes data under key, returning a reference string the caller
	// should persist (e.g. the key itself, or a signed URL).
	Put(ctx context.Context, key string, contentType string, data []byte) (string, error)
	// Get retrieves the object stored at key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Stream proxies an object directly to w without buffering it fully in
	// memory, for large-file download endpoints.
	Stream(ctx context.Context, key string, w io.Writer) error
	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
}
