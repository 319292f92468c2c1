package header

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dsnet/shoco/shoco"
)

// modelSnapshot flattens the accessor surface of a *shoco.Model into a
// plain comparable value, since Model itself holds unexported state.
type modelSnapshot struct {
	MinChar, MaxChar   int
	CharsByID          []byte
	IDsByChar          [256]byte
	SuccessorIDs       []byte
	SuccessorCols      int
	CharsBySuccessorID []byte
	Packs              []shoco.PackScheme
}

func snapshot(m *shoco.Model) modelSnapshot {
	return modelSnapshot{
		MinChar:            m.MinChar(),
		MaxChar:            m.MaxChar(),
		CharsByID:          m.CharsByID(),
		IDsByChar:          m.IDsByChar(),
		SuccessorIDs:       m.SuccessorIDs(),
		SuccessorCols:      m.SuccessorCols(),
		CharsBySuccessorID: m.CharsBySuccessorID(),
		Packs:              m.Packs(),
	}
}

func tinyModel(t *testing.T) *shoco.Model {
	t.Helper()
	packs, err := shoco.BuildDefaultPacks(1)
	if err != nil {
		t.Fatalf("BuildDefaultPacks: %v", err)
	}
	charsByID := []byte{'t', 'h', 'e', 'a'}
	var idsByChar [256]byte
	for i := range idsByChar {
		idsByChar[i] = shoco.InvalidIndex
	}
	for i, c := range charsByID {
		idsByChar[c] = byte(i)
	}
	c := len(charsByID)
	s := 2
	successorIDs := make([]byte, c*c)
	for i := range successorIDs {
		successorIDs[i] = shoco.InvalidIndex
	}
	successorIDs[0*c+1] = 0 // 't' -> 'h'
	successorIDs[1*c+2] = 0 // 'h' -> 'e'

	min, max := int('e'), int('t')+1
	rows := max - min
	charsBySuccessorID := make([]byte, rows*s)
	charsBySuccessorID[(int('t')-min)*s+0] = 'h'
	charsBySuccessorID[(int('h')-min)*s+0] = 'e'

	m, err := shoco.NewModel(shoco.ModelConfig{
		MinChar:            min,
		MaxChar:            max,
		CharsByID:          charsByID,
		IDsByChar:          idsByChar,
		SuccessorIDs:       successorIDs,
		SuccessorCols:      s,
		CharsBySuccessorID: charsBySuccessorID,
		Packs:              packs,
	})
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestWriteParseRoundTrip(t *testing.T) {
	want := tinyModel(t)

	var buf bytes.Buffer
	if err := Write(&buf, want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v\ntext:\n%s", err, buf.String())
	}

	if diff := cmp.Diff(snapshot(want), snapshot(got)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteParseRoundTripEncodesIdentically(t *testing.T) {
	want := tinyModel(t)

	var buf bytes.Buffer
	if err := Write(&buf, want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	enc := want.Encode(nil, []byte("the"))
	enc2 := got.Encode(nil, []byte("the"))
	if !bytes.Equal(enc, enc2) {
		t.Fatalf("Encode(%q) = %x, parsed model gives %x", "the", enc, enc2)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"#define MIN_CHR abc\n",
		"#define MIN_CHR 0\n#define MAX_CHR 1\nstatic const char chrs_by_chr_id[2] = { 'a' };\n",
		"not a header at all",
	}
	for i, s := range cases {
		if _, err := Parse(bytes.NewReader([]byte(s))); err == nil {
			t.Errorf("case %d: expected parse error for %q", i, s)
		}
	}
}

func TestParseToleratesEscapesAndComments(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, tinyModel(t)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Sprinkle comments the way a hand-edited header file might have them;
	// Parse must skip both comment forms without disturbing the tables.
	text := "// generated reference model\n" + buf.String() + "\n/* trailing */\n"

	m, err := Parse(bytes.NewReader([]byte(text)))
	if err != nil {
		t.Fatalf("Parse with comments: %v", err)
	}
	enc := m.Encode(nil, []byte("the"))
	dec, err := m.Decode(nil, enc)
	if err != nil || string(dec) != "the" {
		t.Fatalf("round trip through commented text = %q, %v", dec, err)
	}
}
