package shoco

import "github.com/dsnet/golib/errs"

// PackScheme describes one packing layout: a code word of BytesPacked bytes
// (1, 2 or 4) that encodes BytesUnpacked original bytes as a leading-byte
// index followed by BytesUnpacked-1 successor ranks.
//
// A PackScheme is immutable once built by NewPackScheme.
type PackScheme struct {
	Header        uint8    // top byte OR-mask identifying this scheme's code words
	BytesPacked   int      // width of the code word: 1, 2, or 4
	BytesUnpacked int      // number of original bytes this scheme consumes
	Offsets       []uint   // bit offset of each field within the 32-bit word
	Masks         []uint32 // per-field bit mask, Masks[i] == 1<<width(i)-1
}

// NewPackScheme builds a PackScheme from a width vector. widths[0] is the
// bit width of the header prefix; widths[1:] are the bit widths of the
// leading-byte field and each successor field, in order. The sum of
// widths must equal 8, 16, or 32.
func NewPackScheme(widths []uint) (p PackScheme, err error) {
	defer errs.Recover(&err)
	errs.Assert(len(widths) >= 2, ErrInvalidConfiguration)

	var total uint
	for _, w := range widths {
		errs.Assert(w > 0 && w <= 32, ErrInvalidConfiguration)
		total += w
	}
	bytesPacked := int(total / 8)
	errs.Assert(total%8 == 0 && (bytesPacked == 1 || bytesPacked == 2 || bytesPacked == 4), ErrInvalidConfiguration)

	n := len(widths) - 1
	offsets := make([]uint, n)
	masks := make([]uint32, n)
	cum := widths[0]
	for i := 0; i < n; i++ {
		cum += widths[i+1]
		offsets[i] = 32 - cum
		masks[i] = 1<<widths[i+1] - 1
	}

	hw := widths[0]
	errs.Assert(hw >= 1 && hw <= 7, ErrInvalidConfiguration)
	header := uint8((uint(1)<<hw - 2) << (8 - hw))

	return PackScheme{
		Header:        header,
		BytesPacked:   bytesPacked,
		BytesUnpacked: n,
		Offsets:       offsets,
		Masks:         masks,
	}, nil
}

// headerWidth returns the number of leading one-bits in a pack's Header
// byte, i.e. one less than the widths[0] that produced it (the prefix ends
// in a zero bit). Used to verify that a
// Model's packs are positioned so that DecodeHeader's mark lines up with
// their index in the Packs slice.
func headerWidth(h uint8) int {
	n := 0
	for b := h; b&0x80 != 0; b <<= 1 {
		n++
	}
	return n
}

// DecodeHeader inspects the leading byte of a code word and reports which
// pack scheme produced it. It returns -1 for a literal (MSB clear), or the
// pack index (0, 1, 2, ...) corresponding to the number of leading one-bits
// minus one. A caller must reject any result that is >= the number of packs
// in the Model; this function does not know how many packs exist and
// never fails on its own.
func DecodeHeader(h byte) int {
	mark := -1
	for b := h; b&0x80 != 0; b <<= 1 {
		mark++
	}
	return mark
}
