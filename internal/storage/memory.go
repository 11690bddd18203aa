package storage

import (
	"context"
	"fmt"
	"sync"
)

// StoredBlob is a blob held by MemoryTransport.
type StoredBlob struct {
	Blob    Blob
	Data    []byte
	Options PutOptions
}

// MemoryTransport keeps blobs in process memory, keyed by URL. It backs the
// "memory" backend and the package tests.
type MemoryTransport struct {
	mu    sync.Mutex
	blobs map[string]StoredBlob

	// PutHook and RemoveHook, when set, run before the operation and may
	// fail it or block until ctx is done.
	PutHook    func(ctx context.Context, b Blob) error
	RemoveHook func(ctx context.Context, b Blob) error

	removed []Blob
}

// NewMemoryTransport returns an empty in-memory transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{blobs: make(map[string]StoredBlob)}
}

// Put stores a copy of data under b.URL.
func (m *MemoryTransport) Put(ctx context.Context, b Blob, data []byte, opts PutOptions) error {
	if m.PutHook != nil {
		if err := m.PutHook(ctx, b); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[b.URL] = StoredBlob{Blob: b, Data: append([]byte(nil), data...), Options: opts}
	return nil
}

// Remove deletes b, failing with ErrBlobNotFound when it was never stored.
func (m *MemoryTransport) Remove(ctx context.Context, b Blob) error {
	if m.RemoveHook != nil {
		if err := m.RemoveHook(ctx, b); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[b.URL]; !ok {
		return fmt.Errorf("remove %s: %w", b.URL, ErrBlobNotFound)
	}
	delete(m.blobs, b.URL)
	m.removed = append(m.removed, b)
	return nil
}

// Get returns the blob stored at url.
func (m *MemoryTransport) Get(url string) (StoredBlob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sb, ok := m.blobs[url]
	return sb, ok
}

// Len returns the number of stored blobs.
func (m *MemoryTransport) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// Removed returns the blobs deleted so far, in order.
func (m *MemoryTransport) Removed() []Blob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Blob(nil), m.removed...)
}

var _ Transport = (*MemoryTransport)(nil)
