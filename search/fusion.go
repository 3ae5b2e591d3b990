package search

import (
	"slices"

	"github.com/lumenframe/cliplens/core"
)

// Source names used in degradation reports and fusion bookkeeping.
const (
	SourceLexical = "lexical"
	SourceSummary = "summary"
	SourceKeyword = "keyword"
)

// rankedList is one source's best-first candidate list.
type rankedList struct {
	source  string
	weight  float64
	clipIDs []core.ID
}

// fuse combines ranked lists with weighted Reciprocal Rank Fusion:
// score(c) = sum over sources of weight / (k + rank), with 1-based ranks and
// a zero term for lists the clip is absent from. Rank position, not raw
// score magnitude, drives the fusion.
func fuse(lists []rankedList, rrfK float64, limit int) []core.SearchHit {
	scores := make(map[core.ID]float64)
	lexicalHits := make(map[core.ID]bool)
	sourceCounts := make(map[core.ID]int)

	for _, list := range lists {
		for rank, clipID := range list.clipIDs {
			scores[clipID] += list.weight / (rrfK + float64(rank+1))
			sourceCounts[clipID]++
			if list.source == SourceLexical {
				lexicalHits[clipID] = true
			}
		}
	}

	hits := make([]core.SearchHit, 0, len(scores))
	for clipID, score := range scores {
		provenance := core.ProvenanceSemantic
		if sourceCounts[clipID] >= 2 {
			provenance = core.ProvenanceHybrid
		} else if lexicalHits[clipID] {
			provenance = core.ProvenanceFulltext
		}
		hits = append(hits, core.SearchHit{
			ClipID:     clipID,
			Score:      score,
			Provenance: provenance,
		})
	}

	sortHits(hits)

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// sortHits orders by score descending, breaking ties by clip id so equal
// scores rank deterministically.
func sortHits(hits []core.SearchHit) {
	slices.SortFunc(hits, func(a, b core.SearchHit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.ClipID < b.ClipID {
			return -1
		}
		if a.ClipID > b.ClipID {
			return 1
		}
		return 0
	})
}

// fetchCap bounds each source's candidate list.
func fetchCap(limit int) int {
	n := limit * 2
	if n > 30 {
		n = 30
	}
	return n
}
