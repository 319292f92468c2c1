package header

import "testing"

func TestReferenceParsesAndRoundTrips(t *testing.T) {
	m, err := Reference()
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	if m.MaxChar() <= m.MinChar() {
		t.Fatalf("MaxChar() = %d, MinChar() = %d", m.MaxChar(), m.MinChar())
	}
	for _, s := range []string{"the", "and", "that the", "a quick brown"} {
		enc := m.Encode(nil, []byte(s))
		dec, err := m.Decode(nil, enc)
		if err != nil {
			t.Fatalf("Decode(%q): %v", s, err)
		}
		if string(dec) != s {
			t.Fatalf("round trip %q -> %q", s, dec)
		}
	}
}

func TestReferenceIsCached(t *testing.T) {
	m1, err := Reference()
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	m2, err := Reference()
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	if m1 != m2 {
		t.Fatal("Reference() returned different *Model pointers across calls")
	}
}
