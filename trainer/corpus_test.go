package trainer

import (
	"bytes"
	"reflect"
	"testing"
)

func TestCorpusReaderDefaultSplit(t *testing.T) {
	r := NewCorpusReader(bytes.NewReader([]byte("the quick\nfox jumps  \n\nover a\nx\nthe lazy dog")), 0)
	var got []string
	for seg, ok := r.Next(); ok; seg, ok = r.Next() {
		got = append(got, string(seg))
	}
	want := []string{"the quick", "fox jumps", "over a", "the lazy dog"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("segments = %q, want %q", got, want)
	}
}

func TestCorpusReaderDropsShortSegments(t *testing.T) {
	r := NewCorpusReader(bytes.NewReader([]byte("a\nbb\nc\ndddd")), 0)
	var got []string
	for seg, ok := r.Next(); ok; seg, ok = r.Next() {
		got = append(got, string(seg))
	}
	want := []string{"bb", "dddd"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("segments = %q, want %q", got, want)
	}
}

func TestCorpusReaderSplitWhitespaceAndNewLine(t *testing.T) {
	r := NewCorpusReader(bytes.NewReader([]byte("foo bar\tbaz")), SplitWhitespaceAndNewLine)
	var got []string
	for seg, ok := r.Next(); ok; seg, ok = r.Next() {
		got = append(got, string(seg))
	}
	want := []string{"foo", "bar", "baz"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("segments = %q, want %q", got, want)
	}
}

func TestCorpusReaderStripPunctuation(t *testing.T) {
	r := NewCorpusReader(bytes.NewReader([]byte("\"hello,\"\nworld!!!")), StripPunctuation)
	var got []string
	for seg, ok := r.Next(); ok; seg, ok = r.Next() {
		got = append(got, string(seg))
	}
	want := []string{"hello", "world"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("segments = %q, want %q", got, want)
	}
}

func TestCorpusReaderEmpty(t *testing.T) {
	r := NewCorpusReader(bytes.NewReader(nil), 0)
	if _, ok := r.Next(); ok {
		t.Fatal("Next() on empty corpus returned true")
	}
}
