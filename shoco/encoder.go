package shoco

// Encode appends the compressed form of src to dst and returns the
// extended buffer, following the reference implementation's semantics:
//
//   - Byte 0x00 in src terminates encoding silently; it is never emitted
//     and nothing past it is scanned. Callers that need to compress binary
//     data containing NULs must strip or reject them first.
//   - A byte with its high bit set that cannot be packed is escaped with a
//     leading 0x00 so the decoder can tell it apart from a header byte.
//   - The encoder never fails: every input byte is either packed, emitted
//     as a literal, or (from the first 0x00 onward) silently dropped.
//
// Encode is safe to call concurrently with other Encode and Decode calls
// against the same Model.
func (m *Model) Encode(dst, src []byte) []byte {
	n := len(src)
	var indices [MaxSuccessorLen + 1]byte

	for p := 0; p < n; {
		b := src[p]
		if b == 0 {
			break
		}

		id0 := m.idsByChar[b]
		if id0 == InvalidIndex {
			dst = appendLiteral(dst, b)
			p++
			continue
		}

		indices[0] = id0
		count := 1
		last := id0
		for k := 1; k <= MaxSuccessorLen; k++ {
			if p+k >= n {
				break
			}
			c := src[p+k]
			if c == 0 {
				break
			}
			idk := m.idsByChar[c]
			if idk == InvalidIndex {
				break
			}
			sk := m.successorIDs[flatIndex(int(last), int(idk), len(m.charsByID))]
			if sk == InvalidIndex {
				break
			}
			indices[k] = sk
			last = idk
			count++
		}

		if count >= 2 {
			if scheme, ok := m.bestPack(count, indices[:count]); ok {
				dst = appendPack(dst, scheme, indices[:scheme.BytesUnpacked])
				p += scheme.BytesUnpacked
				continue
			}
		}

		dst = appendLiteral(dst, b)
		p++
	}
	return dst
}

// EncodeString is a convenience wrapper around Encode for callers holding a
// string rather than a byte slice.
func (m *Model) EncodeString(dst []byte, s string) []byte {
	return m.Encode(dst, []byte(s))
}

// bestPack selects the pack scheme that packs the most bytes among those
// that fit, iterating from largest to smallest BytesPacked so that the
// first fit is also the scheme with the largest BytesUnpacked.
func (m *Model) bestPack(count int, indices []byte) (PackScheme, bool) {
	for i := len(m.packs) - 1; i >= 0; i-- {
		scheme := m.packs[i]
		if count < scheme.BytesUnpacked {
			continue
		}
		fits := true
		for j := 0; j < scheme.BytesUnpacked; j++ {
			if uint32(indices[j]) > scheme.Masks[j] {
				fits = false
				break
			}
		}
		if fits {
			return scheme, true
		}
	}
	return PackScheme{}, false
}

func appendLiteral(dst []byte, b byte) []byte {
	if b&0x80 != 0 {
		dst = append(dst, 0x00)
	}
	return append(dst, b)
}

func appendPack(dst []byte, scheme PackScheme, indices []byte) []byte {
	word := uint32(scheme.Header) << 24
	for i, idx := range indices {
		word |= uint32(idx) << scheme.Offsets[i]
	}
	for i := 0; i < scheme.BytesPacked; i++ {
		dst = append(dst, byte(word>>uint(24-8*i)))
	}
	return dst
}
