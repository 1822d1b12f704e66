package blobstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
)

// MemoryStore is an in-memory Store implementation for testing.
// It stores corpora in memory without any filesystem dependency.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Open opens the named corpus for reading.
func (m *MemoryStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return m.OpenAt(ctx, name, 0)
}

// OpenAt opens the named corpus for reading at the given byte offset.
func (m *MemoryStore) OpenAt(_ context.Context, name string, offset int64) (io.ReadCloser, error) {
	if offset < 0 {
		return nil, os.ErrInvalid
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy to shield readers from later writes.
	copied := make([]byte, len(data))
	copy(copied, data)

	if offset > int64(len(copied)) {
		offset = int64(len(copied))
	}
	return io.NopCloser(bytes.NewReader(copied[offset:])), nil
}

// Create opens the named corpus for writing. The content becomes visible
// atomically when the returned writer is closed.
func (m *MemoryStore) Create(_ context.Context, name string) (io.WriteCloser, error) {
	return &memoryWriter{
		store: m,
		name:  name,
	}, nil
}

// Put writes a corpus atomically.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]byte, len(data))
	copy(copied, data)
	m.blobs[name] = copied
	return nil
}

// memoryWriter buffers writes and commits them to the store on Close.
type memoryWriter struct {
	store *MemoryStore
	name  string
	buf   bytes.Buffer
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memoryWriter) Close() error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()

	data := make([]byte, w.buf.Len())
	copy(data, w.buf.Bytes())
	w.store.blobs[w.name] = data
	return nil
}
