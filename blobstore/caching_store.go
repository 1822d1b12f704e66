package blobstore

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// CachingStore serves reads for a remote store from a local copy, fetching
// each object once. Offset-addressed reads against object storage cost one
// request per call; materializing the object locally makes repeated random
// access cheap.
//
// Writes pass through to the remote store and drop the local copy, so
// later reads see the new object.
type CachingStore struct {
	remote Store
	local  Store

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	err  error
}

// NewCachingStore wraps remote with a read-through cache backed by local.
// A nil local caches in memory.
func NewCachingStore(remote, local Store) *CachingStore {
	if local == nil {
		local = NewMemoryStore()
	}
	return &CachingStore{
		remote:  remote,
		local:   local,
		entries: make(map[string]*cacheEntry),
	}
}

func (s *CachingStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := s.materialize(ctx, name); err != nil {
		return nil, err
	}
	return s.local.Open(ctx, name)
}

func (s *CachingStore) OpenAt(ctx context.Context, name string, offset int64) (io.ReadCloser, error) {
	if err := s.materialize(ctx, name); err != nil {
		return nil, err
	}
	return s.local.OpenAt(ctx, name, offset)
}

func (s *CachingStore) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	w, err := s.remote.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &invalidatingWriter{WriteCloser: w, store: s, name: name}, nil
}

// materialize fetches name into the local store once. Concurrent callers
// share a single fetch; a failed fetch is retried by the next caller.
func (s *CachingStore) materialize(ctx context.Context, name string) error {
	s.mu.Lock()
	entry, ok := s.entries[name]
	if !ok {
		entry = &cacheEntry{}
		s.entries[name] = entry
	}
	s.mu.Unlock()

	entry.once.Do(func() {
		entry.err = s.fetch(ctx, name)
	})

	if entry.err != nil {
		s.dropFailed(name, entry)
		return entry.err
	}
	return nil
}

func (s *CachingStore) fetch(ctx context.Context, name string) error {
	r, err := s.remote.Open(ctx, name)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := s.local.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("cache %s: %w", name, err)
	}
	return w.Close()
}

func (s *CachingStore) invalidate(name string) {
	s.mu.Lock()
	delete(s.entries, name)
	s.mu.Unlock()
}

// dropFailed removes entry only if it is still current, so it never
// discards a newer fetch started by another caller.
func (s *CachingStore) dropFailed(name string, entry *cacheEntry) {
	s.mu.Lock()
	if s.entries[name] == entry {
		delete(s.entries, name)
	}
	s.mu.Unlock()
}

type invalidatingWriter struct {
	io.WriteCloser
	store *CachingStore
	name  string
}

func (w *invalidatingWriter) Close() error {
	w.store.invalidate(w.name)
	return w.WriteCloser.Close()
}
