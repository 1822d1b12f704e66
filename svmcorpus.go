package svmcorpus

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/sharecqy/svmcorpus/blobstore"
	"github.com/sharecqy/svmcorpus/codec"
	"github.com/sharecqy/svmcorpus/internal/compressio"
	"github.com/sharecqy/svmcorpus/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Corpus reads sparse documents from a corpus in SVMlight text format.
//
// A Corpus holds no open file handles between operations: every iteration
// pass and every offset-addressed read opens, uses and releases its own
// handle, so a single Corpus value is safe for concurrent readers.
type Corpus struct {
	path             string
	store            blobstore.Store
	codec            codec.LineCodec
	offsets          []int64
	limiter          *rate.Limiter
	fetchConcurrency int
	metrics          MetricsCollector
	logger           *Logger

	mu     sync.Mutex
	length int
	known  bool
}

// Open prepares the corpus at path for reading. Open itself performs no
// I/O; a missing or unreadable file surfaces on the first read.
//
// Paths ending in .gz, .zst, .lz4 or .xz are decompressed transparently.
func Open(path string, optFns ...Option) (*Corpus, error) {
	if path == "" {
		return nil, errors.New("svmcorpus: empty corpus path")
	}

	opts := applyOptions(optFns)

	c := &Corpus{
		path:             path,
		store:            opts.store,
		codec:            opts.codec,
		offsets:          opts.offsets,
		limiter:          opts.limiter,
		fetchConcurrency: opts.fetchConcurrency,
		metrics:          opts.metricsCollector,
		logger:           opts.logger,
	}

	// An offset index fixes the document count up front.
	if c.offsets != nil {
		c.length = len(c.offsets)
		c.known = true
	}

	c.logger.Info("loading corpus", "path", path)

	return c, nil
}

// Path returns the corpus path as given to Open.
func (c *Corpus) Path() string {
	return c.path
}

// Len returns the number of documents in the corpus and whether that number
// is known. It becomes known after a full iteration pass, or up front when
// an offset index was supplied.
func (c *Corpus) Len() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.length, c.known
}

func (c *Corpus) setLength(n int) {
	c.mu.Lock()
	c.length = n
	c.known = true
	c.mu.Unlock()
}

// Docs returns an iterator over the corpus documents in file order. Each
// pass opens a fresh handle, so the returned sequence can be ranged over any
// number of times. Blank lines and comment-only lines are skipped. The first
// malformed line or I/O failure ends the pass by yielding the error.
func (c *Corpus) Docs(ctx context.Context) iter.Seq2[model.Document, error] {
	return func(yield func(model.Document, error) bool) {
		start := time.Now()

		var docs int
		fail := func(err error) {
			c.metrics.RecordIterate(docs, time.Since(start), err)
			c.logger.LogIterate(ctx, c.path, docs, err)
			yield(nil, err)
		}

		r, err := c.open(ctx)
		if err != nil {
			fail(fmt.Errorf("svmcorpus: open %s: %w", c.path, err))
			return
		}
		defer r.Close()

		br := bufio.NewReader(r)
		lineNo := 0
		for {
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}

			line, err := br.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				fail(fmt.Errorf("svmcorpus: read %s: %w", c.path, err))
				return
			}
			eof := err != nil

			// A final line without a trailing newline still counts.
			if line != "" {
				lineNo++
				doc, ok, perr := c.codec.ParseLine(line)
				if perr != nil {
					fail(annotateFormatError(perr, c.path, lineNo))
					return
				}
				if ok {
					docs++
					if !yield(doc, nil) {
						// Early exit: this pass never saw the whole corpus,
						// leave the cached length alone.
						c.metrics.RecordIterate(docs, time.Since(start), nil)
						c.logger.LogIterate(ctx, c.path, docs, nil)
						return
					}
				}
			}

			if eof {
				break
			}
		}

		c.setLength(docs)
		c.metrics.RecordIterate(docs, time.Since(start), nil)
		c.logger.LogIterate(ctx, c.path, docs, nil)
	}
}

// DocByOffset reads the single document whose line starts at the given byte
// offset, using a handle scoped to the call. Offsets come from Save; for
// compressed corpora they address the decompressed stream.
//
// An offset pointing at a blank line, a comment line or the end of the
// corpus returns an error satisfying errors.Is(err, ErrNoDocument).
func (c *Corpus) DocByOffset(ctx context.Context, offset int64) (model.Document, error) {
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.metrics.RecordFetch(time.Since(start), err)
			c.logger.LogFetch(ctx, c.path, offset, err)
			return nil, err
		}
	}

	doc, err := c.docByOffset(ctx, offset)
	c.metrics.RecordFetch(time.Since(start), err)
	c.logger.LogFetch(ctx, c.path, offset, err)
	return doc, err
}

// DocByNum reads the docno'th document through the offset index supplied
// via WithOffsets.
func (c *Corpus) DocByNum(ctx context.Context, docno int) (model.Document, error) {
	if c.offsets == nil {
		return nil, fmt.Errorf("svmcorpus: %s: %w", c.path, ErrNoIndex)
	}
	if docno < 0 || docno >= len(c.offsets) {
		return nil, fmt.Errorf("svmcorpus: docno %d with %d documents: %w", docno, len(c.offsets), ErrDocnoOutOfRange)
	}
	return c.DocByOffset(ctx, c.offsets[docno])
}

// Select yields the documents for the given docno set in ascending docno
// order. A nil bitmap yields nothing. The first failed fetch ends the
// sequence by yielding the error.
func (c *Corpus) Select(ctx context.Context, docnos *roaring.Bitmap) iter.Seq2[model.Document, error] {
	return func(yield func(model.Document, error) bool) {
		if docnos == nil {
			return
		}
		it := docnos.Iterator()
		for it.HasNext() {
			doc, err := c.DocByNum(ctx, int(it.Next()))
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// DocsByOffset fetches one document per offset and returns them in input
// order. Fetches run concurrently, bounded by WithFetchConcurrency; the
// first failure cancels the remainder and is returned.
func (c *Corpus) DocsByOffset(ctx context.Context, offsets []int64) ([]model.Document, error) {
	docs := make([]model.Document, len(offsets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fetchConcurrency)
	for i, offset := range offsets {
		g.Go(func() error {
			doc, err := c.DocByOffset(gctx, offset)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Corpus) docByOffset(ctx context.Context, offset int64) (model.Document, error) {
	r, err := c.openAt(ctx, offset)
	if err != nil {
		return nil, fmt.Errorf("svmcorpus: open %s at offset %d: %w", c.path, offset, err)
	}
	defer r.Close()

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("svmcorpus: read %s: %w", c.path, err)
	}

	doc, ok, err := c.codec.ParseLine(line)
	if err != nil {
		return nil, annotateFormatError(err, c.path, 0)
	}
	if !ok {
		return nil, fmt.Errorf("svmcorpus: offset %d in %s: %w", offset, c.path, ErrNoDocument)
	}
	return doc, nil
}

// open returns a decompressing reader over the whole corpus.
func (c *Corpus) open(ctx context.Context) (io.ReadCloser, error) {
	r, err := c.store.Open(ctx, c.path)
	if err != nil {
		return nil, err
	}
	cr, err := compressio.NewReader(c.path, r)
	if err != nil {
		r.Close()
		return nil, err
	}
	return &corpusReader{Reader: cr, closers: []io.Closer{cr, r}}, nil
}

// openAt returns a reader positioned at the given logical byte offset.
// Plain corpora seek or range-request directly; compressed corpora have no
// random access, so the stream is decompressed and discarded up to offset.
func (c *Corpus) openAt(ctx context.Context, offset int64) (io.ReadCloser, error) {
	if !compressio.Compressed(c.path) {
		return c.store.OpenAt(ctx, c.path, offset)
	}

	r, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := io.CopyN(io.Discard, r, offset); err != nil {
		if errors.Is(err, io.EOF) {
			// Offset past the decompressed end. The exhausted reader makes
			// the lookup report ErrNoDocument, same as a plain file.
			return r, nil
		}
		r.Close()
		return nil, err
	}
	return r, nil
}

// corpusReader closes the decompressor before the underlying stream.
type corpusReader struct {
	io.Reader
	closers []io.Closer
}

func (r *corpusReader) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// annotateFormatError fills in position information the codec cannot know.
func annotateFormatError(err error, path string, line int) error {
	var fe *codec.FormatError
	if errors.As(err, &fe) {
		if fe.Path == "" {
			fe.Path = path
		}
		if fe.Line == 0 {
			fe.Line = line
		}
	}
	return err
}
