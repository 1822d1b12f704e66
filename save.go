package svmcorpus

import (
	"context"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/sharecqy/svmcorpus/blobstore"
	"github.com/sharecqy/svmcorpus/codec"
	"github.com/sharecqy/svmcorpus/internal/compressio"
	"github.com/sharecqy/svmcorpus/model"
)

// SaveOptions configures Save.
type SaveOptions struct {
	// Labels holds one target value per document, indexed by docno. When
	// empty, every document is written with target 0.
	Labels []float64

	// Store receives the rendered corpus. Defaults to the local filesystem.
	Store blobstore.Store

	// Codec renders document lines. Defaults to the SVMlight codec.
	Codec codec.LineCodec

	// Logger for save progress. Defaults to a noop logger.
	Logger *Logger

	// Metrics receives save statistics. Defaults to a noop collector.
	Metrics MetricsCollector
}

// Save writes the documents to path in SVMlight text format and returns the
// starting byte offset of each document line, suitable for later
// offset-addressed reads. Offsets count bytes before compression, so they
// stay valid for paths saved with a compressing extension.
//
// The documents are consumed in a single streaming pass. On any failure the
// pass stops, no offsets are returned and the destination is left in an
// undefined state.
func Save(ctx context.Context, path string, docs iter.Seq2[model.Document, error], optFns ...func(*SaveOptions)) ([]int64, error) {
	start := time.Now()

	opts := SaveOptions{
		Store:   blobstore.NewLocalStore(),
		Codec:   codec.Default,
		Logger:  NoopLogger(),
		Metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	opts.Logger.InfoContext(ctx, "converting corpus to SVMlight format", "path", path)

	offsets, bytes, err := save(ctx, path, docs, &opts)
	opts.Metrics.RecordSave(len(offsets), bytes, time.Since(start), err)
	opts.Logger.LogSave(ctx, path, len(offsets), err)
	if err != nil {
		return nil, err
	}
	return offsets, nil
}

func save(ctx context.Context, path string, docs iter.Seq2[model.Document, error], opts *SaveOptions) ([]int64, int64, error) {
	w, err := opts.Store.Create(ctx, path)
	if err != nil {
		return nil, 0, fmt.Errorf("svmcorpus: create %s: %w", path, err)
	}

	comp, err := compressio.NewWriter(path, w)
	if err != nil {
		w.Close()
		return nil, 0, fmt.Errorf("svmcorpus: create %s: %w", path, err)
	}

	counting := &countingWriter{w: comp}

	var offsets []int64
	fail := func(err error) ([]int64, int64, error) {
		comp.Close()
		w.Close()
		return nil, counting.n, err
	}

	docno := 0
	for doc, derr := range docs {
		if derr != nil {
			return fail(derr)
		}
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		label := 0.0
		if len(opts.Labels) > 0 {
			if docno >= len(opts.Labels) {
				return fail(&LabelCountError{Docno: docno, Labels: len(opts.Labels)})
			}
			label = opts.Labels[docno]
		}

		offsets = append(offsets, counting.n)
		if _, err := io.WriteString(counting, opts.Codec.RenderLine(doc, label)); err != nil {
			return fail(fmt.Errorf("svmcorpus: write %s: %w", path, err))
		}
		docno++
	}

	// Closing flushes the compressor, then commits the store object.
	if err := comp.Close(); err != nil {
		w.Close()
		return nil, counting.n, fmt.Errorf("svmcorpus: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return nil, counting.n, fmt.Errorf("svmcorpus: write %s: %w", path, err)
	}

	return offsets, counting.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// FromDocs adapts an in-memory document slice into the sequence form Save
// consumes.
func FromDocs(docs []model.Document) iter.Seq2[model.Document, error] {
	return func(yield func(model.Document, error) bool) {
		for _, doc := range docs {
			if !yield(doc, nil) {
				return
			}
		}
	}
}
