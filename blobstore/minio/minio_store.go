package minio

import (
	"bytes"
	"context"
	"io"
	"path"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/sharecqy/svmcorpus/blobstore"
)

// Options configures the MinIO store.
type Options struct {
	// Prefix is prepended to every corpus name (e.g. "corpora/").
	Prefix string
}

// Store implements blobstore.Store for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO corpus store for the given bucket.
func NewStore(client *minio.Client, bucket string, optFns ...func(*Options)) *Store {
	var opts Options
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: opts.Prefix,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// stat verifies existence up front; the MinIO client defers most errors to
// the first Read otherwise.
func (s *Store) stat(ctx context.Context, key string) (minio.ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return minio.ObjectInfo{}, blobstore.ErrNotFound
		}
		return minio.ObjectInfo{}, err
	}
	return info, nil
}

// Open streams the named corpus from the start.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)
	if _, err := s.stat(ctx, key); err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// OpenAt streams the named corpus starting at the given byte offset.
func (s *Store) OpenAt(ctx context.Context, name string, offset int64) (io.ReadCloser, error) {
	if offset <= 0 {
		return s.Open(ctx, name)
	}

	key := s.key(name)
	info, err := s.stat(ctx, key)
	if err != nil {
		return nil, err
	}
	if offset >= info.Size {
		// Ranges starting at or past the end are rejected by the server.
		// Readers expect io.EOF there, same as seeking a local file.
		return io.NopCloser(bytes.NewReader(nil)), nil
	}

	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(offset, 0); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Create streams the named corpus to MinIO through a pipe. The upload runs in
// the background and is finalized when the returned writer is closed.
func (s *Store) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()

	w := &uploadWriter{
		pw:   pw,
		done: make(chan error, 1),
	}

	go func() {
		// Size -1 lets the client choose streaming multipart upload.
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, minio.PutObjectOptions{})
		_ = pr.CloseWithError(err)
		w.done <- err
	}()

	return w, nil
}

// uploadWriter is the write end of a streaming upload.
type uploadWriter struct {
	pw     *io.PipeWriter
	done   chan error
	closed atomic.Bool
}

func (w *uploadWriter) Write(p []byte) (int, error) {
	if w.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	return w.pw.Write(p)
}

// Close signals EOF to the uploader and waits for the upload to finish.
func (w *uploadWriter) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return io.ErrClosedPipe
	}
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
