package svmcorpus

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/sharecqy/svmcorpus/blobstore"
	"github.com/sharecqy/svmcorpus/codec"
	"github.com/sharecqy/svmcorpus/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const sampleCorpus = "# svmcorpus test fixture\n" +
	"1 1:1.0 5:2.5\n" +
	"\n" +
	"0 qid:4 2:0.5 3:1.5 # trailing comment\n" +
	"-1 4:0.125\n"

var sampleDocs = []model.Document{
	{{ID: 0, Value: 1.0}, {ID: 4, Value: 2.5}},
	{{ID: 1, Value: 0.5}, {ID: 2, Value: 1.5}},
	{{ID: 3, Value: 0.125}},
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func collect(t *testing.T, seq iter.Seq2[model.Document, error]) []model.Document {
	t.Helper()
	var docs []model.Document
	for doc, err := range seq {
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	return docs
}

func TestOpen(t *testing.T) {
	t.Run("EmptyPath", func(t *testing.T) {
		_, err := Open("")
		require.ErrorContains(t, err, "empty corpus path")
	})

	t.Run("NilOption", func(t *testing.T) {
		corpus, err := Open("corpus.svmlight", nil)
		require.NoError(t, err)
		assert.Equal(t, "corpus.svmlight", corpus.Path())
	})

	t.Run("NoIOUntilRead", func(t *testing.T) {
		corpus, err := Open(filepath.Join(t.TempDir(), "absent.svmlight"))
		require.NoError(t, err)

		var gotErr error
		for _, err := range corpus.Docs(context.Background()) {
			gotErr = err
		}
		require.ErrorIs(t, gotErr, blobstore.ErrNotFound)
	})
}

func TestCorpus_Docs(t *testing.T) {
	ctx := context.Background()

	t.Run("OrderAndSkipping", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		assert.Equal(t, sampleDocs, collect(t, corpus.Docs(ctx)))
	})

	t.Run("Rewindable", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		seq := corpus.Docs(ctx)
		assert.Len(t, collect(t, seq), 3)
		assert.Len(t, collect(t, seq), 3)
	})

	t.Run("NoTrailingNewline", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "truncated.svmlight", "1 1:1.0\n0 2:2.0"))
		require.NoError(t, err)

		assert.Len(t, collect(t, corpus.Docs(ctx)), 2)
	})

	t.Run("LenAfterFullPass", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		_, known := corpus.Len()
		assert.False(t, known)

		collect(t, corpus.Docs(ctx))

		n, known := corpus.Len()
		assert.True(t, known)
		assert.Equal(t, 3, n)
	})

	t.Run("EarlyBreakLeavesLenUnknown", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		for _, err := range corpus.Docs(ctx) {
			require.NoError(t, err)
			break
		}

		_, known := corpus.Len()
		assert.False(t, known)
	})

	t.Run("FormatErrorCarriesPosition", func(t *testing.T) {
		path := writeFile(t, "bad.svmlight", "1 1:1.0\n\n2 3:bad\n")
		corpus, err := Open(path)
		require.NoError(t, err)

		var docs int
		var gotErr error
		for _, err := range corpus.Docs(ctx) {
			if err != nil {
				gotErr = err
				continue
			}
			docs++
		}

		assert.Equal(t, 1, docs)

		var fe *codec.FormatError
		require.ErrorAs(t, gotErr, &fe)
		assert.Equal(t, path, fe.Path)
		assert.Equal(t, 3, fe.Line)
		assert.ErrorContains(t, gotErr, "line 3")

		// A failed pass never saw the whole corpus.
		_, known := corpus.Len()
		assert.False(t, known)
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		var gotErr error
		for _, err := range corpus.Docs(canceled) {
			gotErr = err
		}
		require.ErrorIs(t, gotErr, context.Canceled)
	})
}

func TestCorpus_DocByOffset(t *testing.T) {
	ctx := context.Background()

	t.Run("OffsetContract", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "contract.svmlight")

		offsets, err := Save(ctx, path, FromDocs([]model.Document{
			{{ID: 0, Value: 1.0}},
			{{ID: 0, Value: 2.0}},
		}))
		require.NoError(t, err)
		require.Equal(t, []int64{0, 8}, offsets)

		corpus, err := Open(path)
		require.NoError(t, err)

		doc, err := corpus.DocByOffset(ctx, offsets[1])
		require.NoError(t, err)
		assert.Equal(t, model.Document{{ID: 0, Value: 2.0}}, doc)
	})

	t.Run("CommentLine", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		_, err = corpus.DocByOffset(ctx, 0)
		require.ErrorIs(t, err, ErrNoDocument)
	})

	t.Run("BlankLine", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		blank := int64(strings.Index(sampleCorpus, "\n\n") + 1)
		_, err = corpus.DocByOffset(ctx, blank)
		require.ErrorIs(t, err, ErrNoDocument)
	})

	t.Run("PastEnd", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		_, err = corpus.DocByOffset(ctx, int64(len(sampleCorpus))+100)
		require.ErrorIs(t, err, ErrNoDocument)
	})

	t.Run("MidLineOffset", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		// Offsets are a contract with Save; pointing into the middle of a
		// line reads whatever tokens remain on it.
		start := int64(strings.Index(sampleCorpus, "-1 4:0.125"))
		doc, err := corpus.DocByOffset(ctx, start+3)
		require.NoError(t, err)
		assert.Equal(t, model.Document{}, doc)
	})

	t.Run("RateLimiterAllows", func(t *testing.T) {
		corpus, err := Open(
			writeFile(t, "sample.svmlight", sampleCorpus),
			WithRateLimiter(rate.NewLimiter(rate.Inf, 0)),
		)
		require.NoError(t, err)

		start := int64(strings.Index(sampleCorpus, "-1 4:0.125"))
		doc, err := corpus.DocByOffset(ctx, start)
		require.NoError(t, err)
		assert.Equal(t, sampleDocs[2], doc)
	})

	t.Run("RateLimiterRejects", func(t *testing.T) {
		corpus, err := Open(
			writeFile(t, "sample.svmlight", sampleCorpus),
			WithRateLimiter(rate.NewLimiter(rate.Every(time.Hour), 0)),
		)
		require.NoError(t, err)

		doc, err := corpus.DocByOffset(ctx, 0)
		require.Error(t, err)
		assert.Nil(t, doc)
	})
}

func TestCorpus_DocByNum(t *testing.T) {
	ctx := context.Background()

	t.Run("ThroughIndex", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "indexed.svmlight")

		offsets, err := Save(ctx, path, FromDocs(sampleDocs))
		require.NoError(t, err)

		corpus, err := Open(path, WithOffsets(offsets))
		require.NoError(t, err)

		// The index fixes the length without an iteration pass.
		n, known := corpus.Len()
		assert.True(t, known)
		assert.Equal(t, 3, n)

		for i, want := range sampleDocs {
			doc, err := corpus.DocByNum(ctx, i)
			require.NoError(t, err)
			assert.Equal(t, want, doc)
		}
	})

	t.Run("NoIndex", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		_, err = corpus.DocByNum(ctx, 0)
		require.ErrorIs(t, err, ErrNoIndex)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "indexed.svmlight")

		offsets, err := Save(ctx, path, FromDocs(sampleDocs))
		require.NoError(t, err)

		corpus, err := Open(path, WithOffsets(offsets))
		require.NoError(t, err)

		_, err = corpus.DocByNum(ctx, -1)
		require.ErrorIs(t, err, ErrDocnoOutOfRange)

		_, err = corpus.DocByNum(ctx, len(offsets))
		require.ErrorIs(t, err, ErrDocnoOutOfRange)
	})
}

func TestCorpus_Select(t *testing.T) {
	ctx := context.Background()

	newIndexed := func(t *testing.T) *Corpus {
		t.Helper()
		path := filepath.Join(t.TempDir(), "indexed.svmlight")
		offsets, err := Save(ctx, path, FromDocs(sampleDocs))
		require.NoError(t, err)
		corpus, err := Open(path, WithOffsets(offsets))
		require.NoError(t, err)
		return corpus
	}

	t.Run("Subset", func(t *testing.T) {
		corpus := newIndexed(t)

		docs := collect(t, corpus.Select(ctx, roaring.BitmapOf(0, 2)))
		assert.Equal(t, []model.Document{sampleDocs[0], sampleDocs[2]}, docs)
	})

	t.Run("NilBitmap", func(t *testing.T) {
		corpus := newIndexed(t)

		assert.Empty(t, collect(t, corpus.Select(ctx, nil)))
	})

	t.Run("OutOfRangeDocno", func(t *testing.T) {
		corpus := newIndexed(t)

		var gotErr error
		for _, err := range corpus.Select(ctx, roaring.BitmapOf(1, 7)) {
			gotErr = err
		}
		require.ErrorIs(t, gotErr, ErrDocnoOutOfRange)
	})
}

func TestCorpus_DocsByOffset(t *testing.T) {
	ctx := context.Background()

	t.Run("InputOrder", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "indexed.svmlight")

		offsets, err := Save(ctx, path, FromDocs(sampleDocs))
		require.NoError(t, err)

		corpus, err := Open(path, WithFetchConcurrency(2))
		require.NoError(t, err)

		docs, err := corpus.DocsByOffset(ctx, []int64{offsets[2], offsets[0], offsets[1]})
		require.NoError(t, err)
		assert.Equal(t, []model.Document{sampleDocs[2], sampleDocs[0], sampleDocs[1]}, docs)
	})

	t.Run("FirstErrorWins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "indexed.svmlight")

		offsets, err := Save(ctx, path, FromDocs(sampleDocs))
		require.NoError(t, err)

		corpus, err := Open(path)
		require.NoError(t, err)

		docs, err := corpus.DocsByOffset(ctx, []int64{offsets[0], 1 << 20})
		require.ErrorIs(t, err, ErrNoDocument)
		assert.Nil(t, docs)
	})

	t.Run("Empty", func(t *testing.T) {
		corpus, err := Open(writeFile(t, "sample.svmlight", sampleCorpus))
		require.NoError(t, err)

		docs, err := corpus.DocsByOffset(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestCorpus_Compressed(t *testing.T) {
	ctx := context.Background()

	for _, ext := range []string{".gz", ".zst", ".lz4", ".xz"} {
		t.Run(strings.TrimPrefix(ext, "."), func(t *testing.T) {
			dir := t.TempDir()
			plain := filepath.Join(dir, "corpus.svmlight")
			compressed := plain + ext

			// 1. Save the same documents plain and compressed.
			plainOffsets, err := Save(ctx, plain, FromDocs(sampleDocs))
			require.NoError(t, err)

			offsets, err := Save(ctx, compressed, FromDocs(sampleDocs))
			require.NoError(t, err)

			// 2. Offsets address the logical stream, so both agree.
			require.Equal(t, plainOffsets, offsets)

			// 3. The stored bytes carry a compression frame, not the text.
			raw, err := os.ReadFile(compressed)
			require.NoError(t, err)
			plainRaw, err := os.ReadFile(plain)
			require.NoError(t, err)
			assert.NotEqual(t, plainRaw, raw)

			// 4. Iteration decompresses transparently.
			corpus, err := Open(compressed, WithOffsets(offsets))
			require.NoError(t, err)
			assert.Equal(t, sampleDocs, collect(t, corpus.Docs(ctx)))

			// 5. Offset-addressed reads decompress up to the offset.
			doc, err := corpus.DocByNum(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, sampleDocs[2], doc)

			// 6. Past-end offsets report no document, as with a plain file.
			_, err = corpus.DocByOffset(ctx, 1<<20)
			require.ErrorIs(t, err, ErrNoDocument)
		})
	}
}

func TestCorpus_MemoryStore(t *testing.T) {
	ctx := context.Background()

	store := blobstore.NewMemoryStore()

	offsets, err := Save(ctx, "mem.svmlight", FromDocs(sampleDocs), func(o *SaveOptions) {
		o.Store = store
	})
	require.NoError(t, err)

	corpus, err := Open("mem.svmlight", WithStore(store), WithOffsets(offsets))
	require.NoError(t, err)

	assert.Equal(t, sampleDocs, collect(t, corpus.Docs(ctx)))

	doc, err := corpus.DocByNum(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sampleDocs[1], doc)
}

func TestCorpus_CachingStore(t *testing.T) {
	ctx := context.Background()

	remote := blobstore.NewMemoryStore()

	offsets, err := Save(ctx, "remote.svmlight", FromDocs(sampleDocs), func(o *SaveOptions) {
		o.Store = remote
	})
	require.NoError(t, err)

	corpus, err := Open("remote.svmlight",
		WithStore(blobstore.NewCachingStore(remote, nil)),
		WithOffsets(offsets),
	)
	require.NoError(t, err)

	// Every offset read hits the local copy after the first fetch.
	for i, want := range sampleDocs {
		doc, err := corpus.DocByNum(ctx, i)
		require.NoError(t, err)
		assert.Equal(t, want, doc)
	}
}

func TestCorpus_Metrics(t *testing.T) {
	ctx := context.Background()

	collector := &BasicMetricsCollector{}

	corpus, err := Open(
		writeFile(t, "sample.svmlight", sampleCorpus),
		WithMetricsCollector(collector),
	)
	require.NoError(t, err)

	collect(t, corpus.Docs(ctx))

	_, err = corpus.DocByOffset(ctx, 0)
	require.ErrorIs(t, err, ErrNoDocument)

	stats := collector.GetStats()
	assert.Equal(t, int64(1), stats.IterateCount)
	assert.Equal(t, int64(0), stats.IterateErrors)
	assert.Equal(t, int64(3), stats.IterateDocs)
	assert.Equal(t, int64(1), stats.FetchCount)
	assert.Equal(t, int64(1), stats.FetchErrors)
}
