package cluster

import (
	"testing"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/candidate"
	"github.com/mikanntool/goliath/pkg/goliath/ingest"
)

func cand(text string, ts time.Time) candidate.Candidate {
	return candidate.Candidate{Text: text, URL: "https://e/" + text[:4], Timestamp: ts}
}

func TestGroupSeedsBySimilarity(t *testing.T) {
	tok := ingest.NewTokenizer(nil, 0)
	now := time.Now()

	cands := []candidate.Candidate{
		cand("convert csv file to json output", now),
		cand("timezone planner for remote meetings", now.Add(time.Minute)),
		cand("convert csv file into json quickly", now.Add(2*time.Minute)),
		cand("csv file json convert helper needed", now.Add(3*time.Minute)),
	}

	got := Group(cands, tok, 0.22)
	if len(got) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(got))
	}

	// Largest cluster first.
	if got[0].Size() != 3 {
		t.Errorf("first cluster size = %d, want 3", got[0].Size())
	}
	if got[1].Size() != 1 {
		t.Errorf("second cluster size = %d, want 1", got[1].Size())
	}
	if got[0].Seed().Text != cands[0].Text {
		t.Errorf("seed = %q", got[0].Seed().Text)
	}
}

func TestGroupTieBreaksByEarliest(t *testing.T) {
	tok := ingest.NewTokenizer(nil, 0)
	now := time.Now()

	cands := []candidate.Candidate{
		cand("alpha beta gamma delta topic", now.Add(time.Hour)),
		cand("wholly unrelated sigma omega words", now),
	}

	got := Group(cands, tok, 0.22)
	if len(got) != 2 {
		t.Fatalf("expected 2 singleton clusters, got %d", len(got))
	}
	if !got[0].Earliest().Equal(now) {
		t.Errorf("earlier singleton should sort first, got %v", got[0].Earliest())
	}
}

func TestGroupEmptyInput(t *testing.T) {
	tok := ingest.NewTokenizer(nil, 0)
	if got := Group(nil, tok, 0.22); len(got) != 0 {
		t.Errorf("expected no clusters, got %d", len(got))
	}
}
