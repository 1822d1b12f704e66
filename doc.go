// Package svmcorpus reads and writes sparse document corpora in SVMlight
// text format.
//
// Svmcorpus streams corpora of any size in a single pass, addresses single
// documents by byte offset without scanning, and stores corpora on the local
// filesystem or in object storage.
//
// # Quick Start
//
// Local corpus:
//
//	ctx := context.Background()
//	corpus, _ := svmcorpus.Open("train.svmlight")
//	for doc, err := range corpus.Docs(ctx) {
//	    ...
//	}
//
// Cloud corpus:
//
//	store := s3store.NewStore(client, "my-bucket", func(o *s3store.Options) {
//	    o.Prefix = "corpora/"
//	})
//	corpus, _ := svmcorpus.Open("train.svmlight.gz", svmcorpus.WithStore(store))
//
// # Format
//
// Each document is one line: a target value, an optional qid pair, then
// feature:value pairs with 1-based feature ids.
//
//	1 1:1.0 5:2.5 # an optional comment
//	0 qid:3 2:0.5
//
// Blank lines and lines holding only a comment are skipped. Feature ids are
// external on the wire and zero-based in model.Document; targets and qid
// pairs are discarded on read.
//
// # Offset-Addressed Reads
//
// Save returns the starting byte offset of every document line:
//
//	offsets, _ := svmcorpus.Save(ctx, "train.svmlight", svmcorpus.FromDocs(docs))
//	corpus, _ := svmcorpus.Open("train.svmlight", svmcorpus.WithOffsets(offsets))
//	doc, _ := corpus.DocByNum(ctx, 2)
//
// Offsets count bytes before compression, so offset-addressed reads work
// for .gz, .zst, .lz4 and .xz corpora too, at the cost of decompressing up
// to the offset.
//
// # Key Features
//
//   - Single-pass streaming over corpora larger than memory
//   - Offset-addressed random access, batched and rate-limited
//   - Transparent gzip, zstd, lz4 and xz compression
//   - Pluggable storage (local, in-memory, S3, MinIO) with read-through caching
//   - Document selection by roaring bitmap
package svmcorpus
