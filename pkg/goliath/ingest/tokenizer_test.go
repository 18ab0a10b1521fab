package ingest

import (
	"testing"
)

func TestTokenizeBasics(t *testing.T) {
	tok := NewTokenizer([]string{"the", "a", "to"}, 0)

	got := tok.Tokenize("The CSV-parser fails to load a file")
	want := []string{"csv-parser", "fails", "load", "file"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTokenizeStripsURLs(t *testing.T) {
	tok := NewTokenizer(nil, 0)
	got := tok.Tokenize("broken link https://example.com/path?q=1 reported")
	for _, g := range got {
		if g == "https" || g == "example" || g == "com" {
			t.Errorf("URL fragment leaked into tokens: %v", got)
		}
	}
}

func TestTokenizeCap(t *testing.T) {
	tok := NewTokenizer(nil, 3)
	got := tok.Tokenize("one two three four five six")
	if len(got) != 3 {
		t.Errorf("expected 3 tokens, got %v", got)
	}
}

func TestJaccard(t *testing.T) {
	tok := NewTokenizer(nil, 0)
	a := tok.Set("convert csv file")
	b := tok.Set("convert json file")

	got := Jaccard(a, b)
	if got <= 0.4 || got >= 0.6 {
		t.Errorf("Jaccard = %v, want 0.5", got)
	}

	if Jaccard(nil, nil) != 0 {
		t.Error("empty sets should score 0")
	}
	if Jaccard(a, a) != 1 {
		t.Error("identical sets should score 1")
	}
}
