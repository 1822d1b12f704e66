// Package model defines the value types shared by the corpus reader and
// writer.
//
//   - Pair: one (feature id, value) component, 0-based id
//   - Document: an insertion-ordered sparse feature vector
//
// Labels are deliberately not part of Document. The SVMlight target is
// discarded on read and supplied separately on write, so a label field
// would always be stale on one of the two paths.
package model
