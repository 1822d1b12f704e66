// Package compressio selects stream compressors for corpus files by their
// path extension. Unknown extensions pass data through untouched, so callers
// can wrap every corpus stream unconditionally.
package compressio

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compressed reports whether path names a compressed corpus, judged by its
// extension (.gz, .zst, .lz4 or .xz).
func Compressed(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".zst", ".lz4", ".xz":
		return true
	default:
		return false
	}
}

// NewReader wraps r in the decompressor matching path's extension. Closing
// the returned reader releases decompressor state but never closes r.
func NewReader(path string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return gzip.NewReader(r)
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case ".lz4":
		return io.NopCloser(lz4.NewReader(r)), nil
	case ".xz":
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	default:
		return io.NopCloser(r), nil
	}
}

// NewWriter wraps w in the compressor matching path's extension. Closing the
// returned writer finalizes the compressed stream but never closes w.
func NewWriter(path string, w io.Writer) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return gzip.NewWriter(w), nil
	case ".zst":
		return zstd.NewWriter(w)
	case ".lz4":
		return lz4.NewWriter(w), nil
	case ".xz":
		return xz.NewWriter(w)
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
