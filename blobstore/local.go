package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/sharecqy/svmcorpus/internal/fs"
)

// LocalStoreOptions configures a LocalStore.
type LocalStoreOptions struct {
	// FS is the file system backing the store.
	FS fs.FileSystem

	// Root is prepended to every corpus name. Empty means names are used
	// as paths directly.
	Root string
}

// DefaultLocalStoreOptions is the default configuration for LocalStore.
var DefaultLocalStoreOptions = LocalStoreOptions{
	FS: fs.Default,
}

// LocalStore implements Store using the local file system.
type LocalStore struct {
	fs   fs.FileSystem
	root string
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(optFns ...func(*LocalStoreOptions)) *LocalStore {
	opts := DefaultLocalStoreOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FS == nil {
		opts.FS = fs.Default
	}
	return &LocalStore{fs: opts.FS, root: opts.Root}
}

func (s *LocalStore) path(name string) string {
	if s.root == "" {
		return name
	}
	return filepath.Join(s.root, name)
}

// Open opens the named corpus for reading.
func (s *LocalStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return s.fs.OpenFile(s.path(name), os.O_RDONLY, 0)
}

// OpenAt opens the named corpus for reading at the given byte offset.
func (s *LocalStore) OpenAt(_ context.Context, name string, offset int64) (io.ReadCloser, error) {
	f, err := s.fs.OpenFile(s.path(name), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Create opens the named corpus for writing, creating parent directories as
// needed and truncating any previous content.
func (s *LocalStore) Create(_ context.Context, name string) (io.WriteCloser, error) {
	path := s.path(name)
	if dir := filepath.Dir(path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := s.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &localWriter{f: f}, nil
}

// localWriter syncs the file before closing so data is durable once Close
// returns.
type localWriter struct {
	f fs.File
}

func (w *localWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *localWriter) Close() error {
	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
