package storage

import "context"

// PutOptions are forwarded unchanged to the SDK's chunked upload.
type PutOptions struct {
	ContentType string
	BlockSize   int64
	Concurrency int
}

// Transport is the thin facade over a blob client. Implementations own
// retries, signing and chunking; they report a missing blob by wrapping
// ErrBlobNotFound.
type Transport interface {
	Put(ctx context.Context, b Blob, data []byte, opts PutOptions) error
	Remove(ctx context.Context, b Blob) error
}
