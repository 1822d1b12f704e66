// Package codec centralizes line-level document encoding.
//
// A LineCodec translates between one line of corpus text and one sparse
// document. Corpus files written with one codec must be read back with
// the same codec; tools that open arbitrary corpora select the codec by
// its stable name via ByName.
package codec

import "github.com/sharecqy/svmcorpus/model"

// LineCodec translates between text lines and sparse documents.
// Implementations must be safe for concurrent use.
type LineCodec interface {
	// ParseLine decodes one raw line, which may still carry its line
	// terminator. ok is false for blank and comment-only lines, which
	// carry no document and are not an error.
	ParseLine(line string) (doc model.Document, ok bool, err error)

	// RenderLine encodes doc under the given label as one line,
	// including the trailing newline.
	RenderLine(doc model.Document, label float64) string

	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (LineCodec, bool) {
	switch name {
	case "svmlight":
		return SVMLight{}, true
	default:
		return nil, false
	}
}

// Default is the codec used when none is configured.
var Default LineCodec = SVMLight{}
