// Package blobstore provides storage abstraction for corpus files.
//
// Store is the interface for reading and writing corpora as byte streams.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem
//   - MemoryStore: In-memory store for testing
//   - CachingStore: Read-through cache in front of a remote store
//   - s3.Store: Amazon S3 with ranged reads and streaming uploads
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Open(ctx, name) (io.ReadCloser, error)            // Read from the start
//	    OpenAt(ctx, name, offset) (io.ReadCloser, error)  // Read from a byte offset
//	    Create(ctx, name) (io.WriteCloser, error)         // Write, visible on Close
//	}
//
// Backends that can serve byte ranges (HTTP Range requests, seeks) should
// implement OpenAt natively; it is what makes offset-based document lookup
// cheap on large corpora.
package blobstore
