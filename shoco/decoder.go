package shoco

import "github.com/dsnet/golib/errs"

// Decode appends the decompressed form of src to dst and returns the
// extended buffer. It is the inverse of Encode modulo the handling of byte
// 0x00: Decode never consults IDsByChar or SuccessorIDs, only CharsByID and
// CharsBySuccessorID.
//
// Decode fails closed: on ErrInvalidHeader or ErrTruncated, it stops and
// returns a nil slice with the error; bytes decoded before the failure are
// not returned. Decode never panics past this call.
func (m *Model) Decode(dst, src []byte) (out []byte, err error) {
	defer errs.Recover(&err)
	return m.decode(dst, src), nil
}

func (m *Model) decode(dst, src []byte) []byte {
	n := len(src)
	for p := 0; p < n; {
		h := src[p]
		mark := DecodeHeader(h)

		switch {
		case mark == -1:
			if h == 0x00 {
				p++
				errs.Assert(p < n, ErrTruncated)
				dst = append(dst, src[p])
			} else {
				dst = append(dst, h)
			}
			p++

		case mark < len(m.packs):
			scheme := m.packs[mark]
			errs.Assert(p+scheme.BytesPacked <= n, ErrTruncated)
			var word uint32
			for i := 0; i < scheme.BytesPacked; i++ {
				word |= uint32(src[p+i]) << uint(24-8*i)
			}

			lead := (word >> scheme.Offsets[0]) & scheme.Masks[0]
			errs.Assert(int(lead) < len(m.charsByID), ErrInvalidHeader)
			last := m.charsByID[lead]
			dst = append(dst, last)
			for i := 1; i < scheme.BytesUnpacked; i++ {
				sid := (word >> scheme.Offsets[i]) & scheme.Masks[i]
				row := int(last) - m.minChar
				errs.Assert(row >= 0 && row < m.maxChar-m.minChar && int(sid) < m.successorCols, ErrInvalidHeader)
				b := m.charsBySuccessorID[flatIndex(row, int(sid), m.successorCols)]
				dst = append(dst, b)
				last = b
			}
			p += scheme.BytesPacked

		default:
			errs.Panic(ErrInvalidHeader)
		}
	}
	return dst
}
