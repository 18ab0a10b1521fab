package candidate

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeDropsEmptyAndDuplicates(t *testing.T) {
	raws := []Raw{
		{Text: "how to convert csv to json", URL: "https://a.example/1"},
		{Text: "", URL: "https://a.example/2"},
		{Text: "no url here"},
		{Text: "how to convert csv to json", URL: "https://a.example/1"},
		{Text: "another problem entirely", URL: "https://a.example/3"},
	}

	got := Normalize(raws, 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].URL != "https://a.example/1" || got[1].URL != "https://a.example/3" {
		t.Errorf("unexpected candidates kept: %+v", got)
	}
}

func TestNormalizeCapsAtLimit(t *testing.T) {
	var raws []Raw
	for i := 0; i < 50; i++ {
		raws = append(raws, Raw{
			Text: "problem number " + strings.Repeat("x", i+1),
			URL:  "https://a.example/" + strings.Repeat("p", i+1),
		})
	}

	got := Normalize(raws, 10)
	if len(got) != 10 {
		t.Fatalf("expected limit of 10, got %d", len(got))
	}
}

func TestNormalizeFillsZeroTimestamp(t *testing.T) {
	got := Normalize([]Raw{{Text: "a problem", URL: "https://a.example/1"}}, 10)
	if len(got) != 1 {
		t.Fatal("candidate dropped")
	}
	if got[0].Timestamp.IsZero() {
		t.Error("zero timestamp not filled")
	}
	if time.Since(got[0].Timestamp) > time.Minute {
		t.Errorf("timestamp not recent: %v", got[0].Timestamp)
	}
}

func TestNormTextCollapsesWhitespace(t *testing.T) {
	c := Candidate{Text: "  a\n\tb   c  "}
	if got := c.NormText(); got != "a b c" {
		t.Errorf("NormText = %q", got)
	}
}
