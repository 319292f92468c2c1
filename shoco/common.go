// Package shoco implements a statistical substitution codec for short byte
// strings: frequent leading bytes are replaced by small indices, and frequent
// bigrams/n-grams rooted at a common leading byte are packed together into
// 1-4 byte code words. Bytes that cannot be indexed pass through as literals,
// escaped with a leading NUL when their high bit is set.
//
// A Model is built offline by the trainer package (or read from the C-header
// text form via the header package) and is immutable once constructed; the
// Encoder and Decoder operations defined here hold no state beyond a single
// call and may be used concurrently from many goroutines against the same
// Model.
package shoco

// InvalidIndex is the sentinel stored in a lookup table to mark the absence
// of an entry (an un-indexed byte, or a successor outside the tracked rank
// range).
const InvalidIndex byte = 0xFF

// MaxSuccessorLen is the maximum number of successor bytes that can be
// packed into a single code word beyond its leading byte. It is fixed at 7
// for bit-compatibility with the reference shoco implementation.
const MaxSuccessorLen = 7

// flatIndex returns the offset of (row, col) in a row-major flattened 2-D
// table with the given column count.
func flatIndex(row, col, cols int) int {
	return row*cols + col
}
