// Package cluster groups similar candidates by token-set similarity.
//
// The algorithm is single-pass greedy seed clustering: candidates are
// visited in original order, each unassigned candidate opens a new
// cluster and absorbs every remaining unassigned candidate whose
// similarity to the seed meets the threshold. Membership is judged
// against the seed only, so a candidate similar to a non-seed member
// can still land in a different cluster.
package cluster

import (
	"sort"
	"time"

	"github.com/mikanntool/goliath/pkg/goliath/candidate"
	"github.com/mikanntool/goliath/pkg/goliath/ingest"
)

// Cluster is a non-empty ordered set of candidates; the first element
// is the seed.
type Cluster struct {
	Candidates []candidate.Candidate
}

// Size returns the number of members.
func (c Cluster) Size() int { return len(c.Candidates) }

// Seed returns the candidate that opened the cluster.
func (c Cluster) Seed() candidate.Candidate { return c.Candidates[0] }

// Earliest returns the earliest member timestamp, used for
// deterministic ordering between same-size clusters.
func (c Cluster) Earliest() time.Time {
	earliest := c.Candidates[0].Timestamp
	for _, m := range c.Candidates[1:] {
		if m.Timestamp.Before(earliest) {
			earliest = m.Timestamp
		}
	}
	return earliest
}

// Group clusters candidates at the given seed-similarity threshold.
// The result is sorted by (size desc, earliest timestamp asc) so the
// ordering is fully determined by the input order and threshold.
func Group(cands []candidate.Candidate, tok *ingest.Tokenizer, threshold float64) []Cluster {
	sets := make([]map[string]struct{}, len(cands))
	for i, c := range cands {
		sets[i] = tok.Set(c.NormText())
	}

	assigned := make([]bool, len(cands))
	var clusters []Cluster

	for i, c := range cands {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []candidate.Candidate{c}

		for j := i + 1; j < len(cands); j++ {
			if assigned[j] {
				continue
			}
			if ingest.Jaccard(sets[i], sets[j]) >= threshold {
				assigned[j] = true
				members = append(members, cands[j])
			}
		}

		clusters = append(clusters, Cluster{Candidates: members})
	}

	sort.SliceStable(clusters, func(a, b int) bool {
		if clusters[a].Size() != clusters[b].Size() {
			return clusters[a].Size() > clusters[b].Size()
		}
		return clusters[a].Earliest().Before(clusters[b].Earliest())
	})

	return clusters
}
