// Package header reads and writes shoco models in the textual C-header
// form used for compatibility with the reference Python generator. It is
// the only place in this module that deals with model source text rather
// than the binary wire format.
package header

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/golib/errs"

	"github.com/dsnet/shoco/shoco"
)

// Error is a string-based error type, matching shoco.Error's idiom so
// callers can errors.Is against the exported sentinels below.
type Error string

func (e Error) Error() string { return string(e) }

// ErrParse reports that the input text did not match the C-header grammar
// (an unknown #define or declaration, a malformed array, an out-of-range
// escape, or a table whose length didn't match its declared bounds).
// Tables that parse but fail shoco.NewModel's checks (including ones left
// empty by a missing declaration) are reported as
// shoco.ErrInvalidConfiguration instead.
const ErrParse = Error("header: parse error")

// Write emits m in the C-header text form.
func Write(w io.Writer, m *shoco.Model) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "#define MIN_CHR %d\n", m.MinChar())
	fmt.Fprintf(&buf, "#define MAX_CHR %d\n", m.MaxChar())

	charsByID := m.CharsByID()
	fmt.Fprintf(&buf, "static const char chrs_by_chr_id[%d] = {", len(charsByID))
	writeCharRow(&buf, charsByID)
	buf.WriteString(" };\n")

	idsByChar := m.IDsByChar()
	buf.WriteString("static const int8_t chr_ids_by_chr[256] = {")
	writeInt8Row(&buf, idsByChar[:])
	buf.WriteString(" };\n")

	c := len(charsByID)
	successorIDs := m.SuccessorIDs()
	fmt.Fprintf(&buf, "static const int8_t successor_ids_by_chr_id_and_chr_id[%d][%d] = {", c, c)
	for r := 0; r < c; r++ {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(" {")
		writeInt8Row(&buf, successorIDs[r*c:(r+1)*c])
		buf.WriteString(" }")
	}
	buf.WriteString(" };\n")

	s := m.SuccessorCols()
	rows := m.MaxChar() - m.MinChar()
	charsBySucc := m.CharsBySuccessorID()
	fmt.Fprintf(&buf, "static const int8_t chrs_by_chr_and_successor_id[%d][%d] = {", rows, s)
	for r := 0; r < rows; r++ {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(" {")
		writeCharRow(&buf, charsBySucc[r*s:(r+1)*s])
		buf.WriteString(" }")
	}
	buf.WriteString(" };\n")

	packs := m.Packs()
	fmt.Fprintf(&buf, "#define PACK_COUNT %d\n", len(packs))
	fmt.Fprintf(&buf, "#define MAX_SUCCESSOR_N %d\n", shoco.MaxSuccessorLen)
	buf.WriteString("static const Pack packs[PACK_COUNT] = {\n")
	for i, p := range packs {
		if i > 0 {
			buf.WriteString(",\n")
		}
		writePack(&buf, p)
	}
	buf.WriteString("\n};\n")

	_, err := w.Write(buf.Bytes())
	return err
}

func writeCharRow(buf *bytes.Buffer, bs []byte) {
	for i, b := range bs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte(' ')
		writeCharLit(buf, b)
	}
}

func writeInt8Row(buf *bytes.Buffer, bs []byte) {
	for i, b := range bs {
		if i > 0 {
			buf.WriteByte(',')
		}
		if b == shoco.InvalidIndex {
			buf.WriteString(" -1")
		} else {
			fmt.Fprintf(buf, " %d", int8(b))
		}
	}
}

// writeCharLit renders b as a single-quoted C char literal, escaping the
// common named C escapes and falling back to \xHH for anything else
// outside printable ASCII.
func writeCharLit(buf *bytes.Buffer, b byte) {
	switch b {
	case '\\':
		buf.WriteString(`'\\'`)
	case '\'':
		buf.WriteString(`'\''`)
	case '\a':
		buf.WriteString(`'\a'`)
	case '\b':
		buf.WriteString(`'\b'`)
	case '\f':
		buf.WriteString(`'\f'`)
	case '\n':
		buf.WriteString(`'\n'`)
	case '\r':
		buf.WriteString(`'\r'`)
	case '\t':
		buf.WriteString(`'\t'`)
	case '\v':
		buf.WriteString(`'\v'`)
	default:
		if b >= 0x20 && b < 0x7F {
			fmt.Fprintf(buf, "'%c'", b)
		} else {
			fmt.Fprintf(buf, `'\x%02x'`, b)
		}
	}
}

func writePack(buf *bytes.Buffer, p shoco.PackScheme) {
	word := uint32(p.Header) << 24
	fmt.Fprintf(buf, "  { 0x%08X, %d, %d, {", word, p.BytesPacked, p.BytesUnpacked)
	for i, off := range p.Offsets {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(buf, " %d", off)
	}
	buf.WriteString(" }, {")
	for i, m := range p.Masks {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(buf, " 0x%X", m)
	}
	fmt.Fprintf(buf, " }, 0x%02X, 0x%02X }", headerMask(p.Header), p.Header)
}

// headerMask reconstructs the 8-bit mask that isolates a pack's header
// prefix bits, derived from the same leading-one-run the decoder tests with
// DecodeHeader. It is emitted for readability in the text form only; Parse
// recomputes PackScheme state from the other fields and ignores it.
func headerMask(h uint8) uint8 {
	mask := uint8(0)
	b := uint8(0x80)
	for ; b != 0 && h&b != 0; b >>= 1 {
		mask |= b
	}
	// Include the zero bit that terminates the run of ones.
	return mask | b
}

// Parse reads the C-header text form and returns the Model it describes.
// Parsing tolerates the full escape grammar (\a \b \f \n \r \t \v \\ \'
// \" \? \e, \xHH, octal \nnn) and "-1" as the spelling of 0xFF in the
// int8 tables.
func Parse(r io.Reader) (m *shoco.Model, err error) {
	defer errs.Recover(&err)

	data, err := io.ReadAll(r)
	errs.Panic(err)

	p := &parser{lx: newLexer(data)}
	p.advance()

	cfg := shoco.ModelConfig{}
	var charsByID []byte
	var idsByChar [256]byte
	var successorIDs []byte
	var charsBySuccessorID []byte
	var s int
	var packCount int
	var packs []shoco.PackScheme

	for p.tok.kind != tokEOF {
		switch {
		case p.tok.kind == tokPunct && p.tok.text == "#":
			p.advance()
			name := p.expectIdent()
			switch name {
			case "define":
				key := p.expectIdent()
				val := p.expectInt()
				switch key {
				case "MIN_CHR":
					cfg.MinChar = int(val)
				case "MAX_CHR":
					cfg.MaxChar = int(val)
				case "PACK_COUNT":
					packCount = int(val)
				case "MAX_SUCCESSOR_N":
					// informational only; MaxSuccessorLen is fixed.
				default:
					errs.Panic(ErrParse)
				}
			default:
				errs.Panic(ErrParse)
			}

		case p.tok.kind == tokIdent && p.tok.text == "static":
			p.advance()
			p.expectIdentAny("const")
			p.expectIdentAny("char", "int8_t", "Pack")
			name := p.expectIdent()
			switch name {
			case "chrs_by_chr_id":
				n := p.expectBracketedInt()
				p.expectPunct("=")
				charsByID = p.parseCharArray(n)
				p.expectPunct(";")
			case "chr_ids_by_chr":
				n := p.expectBracketedInt()
				p.expectPunct("=")
				vals := p.parseIntArray(n)
				for i, v := range vals {
					idsByChar[i] = int8ToByte(v)
				}
				p.expectPunct(";")
			case "successor_ids_by_chr_id_and_chr_id":
				r1 := p.expectBracketedInt()
				r2 := p.expectBracketedInt()
				errs.Assert(r1 == r2, ErrParse)
				p.expectPunct("=")
				rows := p.parse2DIntArray(r1, r2)
				successorIDs = make([]byte, r1*r2)
				for i, row := range rows {
					for j, v := range row {
						successorIDs[i*r2+j] = int8ToByte(v)
					}
				}
				p.expectPunct(";")
			case "chrs_by_chr_and_successor_id":
				rows := p.expectBracketedInt()
				cols := p.expectBracketedInt()
				p.expectPunct("=")
				table := p.parse2DCharArray(rows, cols)
				charsBySuccessorID = make([]byte, rows*cols)
				for i, row := range table {
					copy(charsBySuccessorID[i*cols:], row)
				}
				s = cols
				p.expectPunct(";")
			case "packs":
				p.expectPunct("[")
				p.expectIdentAny("PACK_COUNT")
				p.expectPunct("]")
				p.expectPunct("=")
				packs = p.parsePackArray(packCount)
				p.expectPunct(";")
			default:
				errs.Panic(ErrParse)
			}

		default:
			errs.Panic(ErrParse)
		}
	}

	cfg.CharsByID = charsByID
	cfg.IDsByChar = idsByChar
	cfg.SuccessorIDs = successorIDs
	cfg.SuccessorCols = s
	cfg.CharsBySuccessorID = charsBySuccessorID
	cfg.Packs = packs

	m, err = shoco.NewModel(cfg)
	errs.Panic(err)
	return m, nil
}

func int8ToByte(v int64) byte {
	if v == -1 {
		return shoco.InvalidIndex
	}
	return byte(v)
}

// parser walks the token stream produced by lexer, panicking with ErrParse
// (caught by Parse's errs.Recover) on any grammar mismatch.
type parser struct {
	lx  *lexer
	tok token
}

func (p *parser) advance() {
	t, err := p.lx.next()
	errs.Panic(err)
	p.tok = t
}

func (p *parser) expectIdent() string {
	errs.Assert(p.tok.kind == tokIdent, ErrParse)
	s := p.tok.text
	p.advance()
	return s
}

func (p *parser) expectIdentAny(want ...string) string {
	errs.Assert(p.tok.kind == tokIdent, ErrParse)
	for _, w := range want {
		if p.tok.text == w {
			s := p.tok.text
			p.advance()
			return s
		}
	}
	errs.Panic(ErrParse)
	return ""
}

func (p *parser) expectPunct(s string) {
	errs.Assert(p.tok.kind == tokPunct && p.tok.text == s, ErrParse)
	p.advance()
}

func (p *parser) expectInt() int64 {
	errs.Assert(p.tok.kind == tokInt, ErrParse)
	v := p.tok.ival
	p.advance()
	return v
}

func (p *parser) expectBracketedInt() int {
	p.expectPunct("[")
	n := int(p.expectInt())
	p.expectPunct("]")
	return n
}

// parseIntArray reads "{ v0, v1, ... }" with n entries, each a char literal
// or a plain/-1 integer.
func (p *parser) parseIntArray(n int) []int64 {
	p.expectPunct("{")
	out := make([]int64, 0, n)
	for len(out) < n {
		if len(out) > 0 {
			p.expectPunct(",")
		}
		out = append(out, p.parseIntOrChar())
	}
	p.expectPunct("}")
	return out
}

func (p *parser) parseIntOrChar() int64 {
	switch p.tok.kind {
	case tokInt:
		v := p.tok.ival
		p.advance()
		return v
	case tokChar:
		v := p.tok.ival
		p.advance()
		return v
	default:
		errs.Panic(ErrParse)
		return 0
	}
}

func (p *parser) parse2DIntArray(rows, cols int) [][]int64 {
	p.expectPunct("{")
	out := make([][]int64, 0, rows)
	for len(out) < rows {
		if len(out) > 0 {
			p.expectPunct(",")
		}
		out = append(out, p.parseIntArray(cols))
	}
	p.expectPunct("}")
	return out
}

// parseCharArray reads "{ 'a', 'e', -1, ... }" with n entries, each a char
// literal or (for the occasional escape that the generator spells as a
// plain integer) an int.
func (p *parser) parseCharArray(n int) []byte {
	vals := p.parseIntArray(n)
	out := make([]byte, len(vals))
	for i, v := range vals {
		out[i] = int8ToByte(v)
	}
	return out
}

func (p *parser) parse2DCharArray(rows, cols int) [][]byte {
	p.expectPunct("{")
	out := make([][]byte, 0, rows)
	for len(out) < rows {
		if len(out) > 0 {
			p.expectPunct(",")
		}
		out = append(out, p.parseCharArray(cols))
	}
	p.expectPunct("}")
	return out
}

// parsePackArray reads the packs[PACK_COUNT] initializer. Each element's
// leading 0xNNNNNNNN word and the trailing header-mask byte are parsed and
// discarded; PackScheme is rebuilt directly from bytes_packed,
// bytes_unpacked, offsets, masks, and the final header byte.
func (p *parser) parsePackArray(n int) []shoco.PackScheme {
	p.expectPunct("{")
	out := make([]shoco.PackScheme, 0, n)
	for len(out) < n {
		if len(out) > 0 {
			p.expectPunct(",")
		}
		out = append(out, p.parsePack())
	}
	p.expectPunct("}")
	return out
}

func (p *parser) parsePack() shoco.PackScheme {
	p.expectPunct("{")
	p.expectInt() // word, derivable from header; ignored
	p.expectPunct(",")
	bp := int(p.expectInt())
	p.expectPunct(",")
	bu := int(p.expectInt())
	p.expectPunct(",")
	offVals := p.parseIntArray(bu)
	offsets := make([]uint, bu)
	for i, v := range offVals {
		offsets[i] = uint(v)
	}
	p.expectPunct(",")
	maskVals := p.parseIntArray(bu)
	masks := make([]uint32, bu)
	for i, v := range maskVals {
		masks[i] = uint32(v)
	}
	p.expectPunct(",")
	p.expectInt() // header mask, derivable; ignored
	p.expectPunct(",")
	header := p.expectInt()
	p.expectPunct("}")
	return shoco.PackScheme{
		Header:        uint8(header),
		BytesPacked:   bp,
		BytesUnpacked: bu,
		Offsets:       offsets,
		Masks:         masks,
	}
}
