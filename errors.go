package svmcorpus

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDocument is returned when an offset points at a blank line, a
	// comment line or past the end of the corpus.
	ErrNoDocument = errors.New("no document at offset")

	// ErrNoIndex is returned by docno-addressed reads on a corpus opened
	// without WithOffsets.
	ErrNoIndex = errors.New("corpus has no offset index")

	// ErrDocnoOutOfRange is returned when a docno falls outside the offset
	// index.
	ErrDocnoOutOfRange = errors.New("docno out of range")
)

// LabelCountError indicates a save whose labels do not cover every document.
//
// Labels are matched to documents by position; supplying any labels at all
// commits the caller to one per document.
type LabelCountError struct {
	Docno  int // first document without a label
	Labels int // number of labels supplied
}

func (e *LabelCountError) Error() string {
	return fmt.Sprintf("no label for document %d (%d labels supplied)", e.Docno, e.Labels)
}
