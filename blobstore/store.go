package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a corpus does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and writing corpus files as byte
// streams. Implementations must be safe for concurrent use.
type Store interface {
	// Open opens the named corpus for sequential reading from the start.
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// OpenAt opens the named corpus for sequential reading starting at the
	// given byte offset. Reading past the end of the corpus yields io.EOF,
	// it is not an error at open time.
	OpenAt(ctx context.Context, name string, offset int64) (io.ReadCloser, error)

	// Create opens the named corpus for writing, replacing any previous
	// content. The data becomes visible once Close returns without error.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
}
