package model

// Pair is one (feature id, value) component of a sparse document.
//
// IDs are 0-based. The SVMlight text format counts features from 1; the
// codec converts between the two at the I/O boundary.
type Pair struct {
	ID    int
	Value float64
}

// Document is a sparse feature vector: an ordered sequence of pairs.
//
// Pairs keep the order they had on the source line. Duplicate feature
// ids are preserved as-is; nothing in the library merges or sorts them.
// Documents are transient values produced by a parse and consumed by
// whoever iterates the corpus.
type Document []Pair
