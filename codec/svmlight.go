package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sharecqy/svmcorpus/model"
)

// SVMLight reads and writes the SVMlight sparse text format, one
// document per line:
//
//	<target> <feature>:<value> <feature>:<value> ... # <comment>
//
// Feature ids are 1-based on the wire and 0-based in model.Document;
// both directions convert at this boundary. The reserved feature token
// "qid" (SVMlight ranking metadata) is dropped on read. The target
// token is read over and discarded: labels exist only on the write
// path.
type SVMLight struct{}

// Name returns the unique name of the codec ("svmlight").
func (SVMLight) Name() string { return "svmlight" }

// ParseLine decodes one line into a document.
//
// Everything from the first '#' on is comment text and ignored. A line
// that is blank after comment stripping yields ok=false. A line holding
// only a target is a valid empty document. Feature tokens split on
// their last ':', matching the reference tooling; a token with no ':'
// at all, a non-numeric id or value, or an id below 1 is a
// *FormatError.
func (SVMLight) ParseLine(line string) (model.Document, bool, error) {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, false, nil
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false, &FormatError{Msg: "missing target"}
	}

	doc := make(model.Document, 0, len(fields)-1)
	for _, tok := range fields[1:] {
		sep := strings.LastIndexByte(tok, ':')
		if sep < 0 {
			return nil, false, &FormatError{Token: tok, Msg: "missing ':' separator"}
		}
		id, value := tok[:sep], tok[sep+1:]
		if id == "qid" {
			continue
		}
		ext, err := strconv.Atoi(id)
		if err != nil {
			return nil, false, &FormatError{Token: tok, Msg: "malformed feature id", cause: err}
		}
		if ext < 1 {
			return nil, false, &FormatError{Token: tok, Msg: fmt.Sprintf("feature id %d out of range (external ids are 1-based)", ext)}
		}
		val, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, false, &FormatError{Token: tok, Msg: "malformed feature value", cause: err}
		}
		doc = append(doc, model.Pair{ID: ext - 1, Value: val})
	}
	return doc, true, nil
}

// RenderLine encodes doc as one SVMlight line, internal 0-based ids
// written as id+1. The write path performs no validation: whatever ids
// and values the document carries are rendered as given.
//
// Values use the shortest representation that round-trips through
// ParseLine. Integral values printed in plain decimal keep an explicit
// ".0" (1 renders as "1.0", matching the common SVMlight tooling);
// magnitudes that fall back to exponent notation render as-is
// ("1.234567e+06"). Labels render in plain shortest form
// ("0", "-1", "2.5").
func (SVMLight) RenderLine(doc model.Document, label float64) string {
	var sb strings.Builder
	sb.Grow(8 + 12*len(doc))
	sb.WriteString(strconv.FormatFloat(label, 'g', -1, 64))
	sb.WriteByte(' ')
	for i, p := range doc {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(p.ID + 1))
		sb.WriteByte(':')
		sb.WriteString(formatValue(p.Value))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func formatValue(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(v, 0) && !math.IsNaN(v) {
		s += ".0"
	}
	return s
}

// FormatError describes a malformed corpus line.
//
// Path and Line are filled in by the corpus iterating the file; the
// codec itself only sees a single line. The underlying strconv error
// (if any) can be accessed via errors.Unwrap.
type FormatError struct {
	Path  string // corpus the line came from, empty if unknown
	Line  int    // 1-based line number, 0 if unknown
	Token string // offending token, empty if the whole line is at fault
	Msg   string
	cause error
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Token != "" {
		msg = fmt.Sprintf("%s in token %q", msg, e.Token)
	}
	switch {
	case e.Line > 0 && e.Path != "":
		return fmt.Sprintf("invalid svmlight line %d in %s: %s", e.Line, e.Path, msg)
	case e.Line > 0:
		return fmt.Sprintf("invalid svmlight line %d: %s", e.Line, msg)
	case e.Path != "":
		return fmt.Sprintf("invalid svmlight line in %s: %s", e.Path, msg)
	default:
		return fmt.Sprintf("invalid svmlight line: %s", msg)
	}
}

func (e *FormatError) Unwrap() error { return e.cause }
