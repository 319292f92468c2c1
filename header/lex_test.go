package header

import "testing"

func TestLexCharEscapes(t *testing.T) {
	cases := []struct {
		src  string
		want byte
	}{
		{`'a'`, 'a'},
		{`'\n'`, '\n'},
		{`'\t'`, '\t'},
		{`'\\'`, '\\'},
		{`'\''`, '\''},
		{`'\x41'`, 'A'},
		{`'\101'`, 'A'}, // octal 101 == 0x41 == 'A'
		{`'\0'`, 0},
	}
	for _, tt := range cases {
		lx := newLexer([]byte(tt.src))
		tok, err := lx.next()
		if err != nil {
			t.Fatalf("%s: %v", tt.src, err)
		}
		if tok.kind != tokChar {
			t.Fatalf("%s: kind = %v, want tokChar", tt.src, tok.kind)
		}
		if byte(tok.ival) != tt.want {
			t.Fatalf("%s: value = %#x, want %#x", tt.src, tok.ival, tt.want)
		}
	}
}

func TestLexIntegers(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"0", 0},
		{"-1", -1},
		{"255", 255},
		{"0x80", 0x80},
		{"0xFF", 0xFF},
	}
	for _, tt := range cases {
		lx := newLexer([]byte(tt.src))
		tok, err := lx.next()
		if err != nil {
			t.Fatalf("%s: %v", tt.src, err)
		}
		if tok.kind != tokInt {
			t.Fatalf("%s: kind = %v, want tokInt", tt.src, tok.kind)
		}
		if tok.ival != tt.want {
			t.Fatalf("%s: value = %d, want %d", tt.src, tok.ival, tt.want)
		}
	}
}

func TestLexSkipsComments(t *testing.T) {
	lx := newLexer([]byte("// a line comment\n/* a block\ncomment */123"))
	tok, err := lx.next()
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if tok.kind != tokInt || tok.ival != 123 {
		t.Fatalf("got %+v, want int 123", tok)
	}
}

func TestLexRejectsUnterminatedBlockComment(t *testing.T) {
	lx := newLexer([]byte("/* never closed"))
	if _, err := lx.next(); err == nil {
		t.Fatal("expected error for unterminated block comment")
	}
}

func TestLexIdentAndPunct(t *testing.T) {
	lx := newLexer([]byte("MIN_CHR[32] "))
	want := []struct {
		kind tokenKind
		text string
	}{
		{tokIdent, "MIN_CHR"},
		{tokPunct, "["},
		{tokInt, "32"},
		{tokPunct, "]"},
		{tokEOF, ""},
	}
	for i, w := range want {
		tok, err := lx.next()
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if tok.kind != w.kind {
			t.Fatalf("case %d: kind = %v, want %v", i, tok.kind, w.kind)
		}
		if w.kind == tokIdent && tok.text != w.text {
			t.Fatalf("case %d: text = %q, want %q", i, tok.text, w.text)
		}
	}
}
