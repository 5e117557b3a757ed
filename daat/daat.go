// Package daat implements Document-At-A-Time query evaluation: the
// conjunctive (AND) and disjunctive (OR) traversals that drive cursors in
// lockstep over matching doc-ids, scoring each candidate with BM25 and
// feeding a bounded top-K heap.
package daat

import (
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/jbraha/invidx/bm25"
	"github.com/jbraha/invidx/doctable"
	"github.com/jbraha/invidx/postings"
	"github.com/jbraha/invidx/topk"
)

// Term bundles a term's open cursor with the document frequency needed
// for its BM25 contribution.
type Term struct {
	Cursor *postings.Cursor
	DF     uint32
}

// Conjunctive performs c_DAAT (spec.md section 4.7): it returns only
// doc-ids matched by every term, ranked by summed BM25 score. Cursors are
// driven shortest-list-first so the pivot check fails fast.
func Conjunctive(terms []Term, dt doctable.Table, k int, params bm25.Params) []topk.Result {
	if len(terms) == 0 {
		return nil
	}

	sorted := make([]Term, len(terms))
	copy(sorted, terms)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].DF < sorted[j].DF })

	n := dt.N()
	hp := topk.New(k)

	maxDID := sorted[0].Cursor.LastDocID()
	did := uint32(0)

	for did <= maxDID {
		pivot, ok := sorted[0].Cursor.NextGEQ(did)
		if !ok {
			break
		}
		did = pivot

		matched := true
		for j := 1; j < len(sorted); j++ {
			d, ok := sorted[j].Cursor.NextGEQ(did)
			if !ok {
				// This list has no doc-id >= did: the intersection cannot
				// grow further.
				return hp.Sorted()
			}
			if d != did {
				did = d
				matched = false
				break
			}
		}
		if !matched {
			continue
		}

		score := 0.0
		for _, t := range sorted {
			score += bm25.Score(t.Cursor.CurFreq(), dt.Length(did), t.DF, n, params)
		}
		hp.Insert(did, score)
		did++
	}

	return hp.Sorted()
}

// sentinel is the "no current doc-id" marker for an exhausted cursor.
const sentinel = ^uint32(0)

// Disjunctive performs d_DAAT (spec.md section 4.8): it returns every
// doc-id matched by at least one term, scored by the sum of BM25
// contributions from the terms present in that document. Exhausted
// cursors are tracked in a bitset rather than an in-band sentinel value
// alone, so membership tests stay O(1) regardless of cursor count.
func Disjunctive(terms []Term, dt doctable.Table, k int, params bm25.Params) []topk.Result {
	if len(terms) == 0 {
		return nil
	}

	n := dt.N()
	hp := topk.New(k)

	curDocID := make([]uint32, len(terms))
	exhausted := bitset.New(uint(len(terms)))

	for i, t := range terms {
		id, ok := t.Cursor.NextGEQ(0)
		if !ok {
			curDocID[i] = sentinel
			exhausted.Set(uint(i))
			continue
		}
		curDocID[i] = id
	}

	minDID := func() (uint32, bool) {
		best := sentinel
		found := false
		for i, id := range curDocID {
			if exhausted.Test(uint(i)) {
				continue
			}
			if !found || id < best {
				best, found = id, true
			}
		}
		return best, found
	}

	did, ok := minDID()
	for ok {
		score := 0.0
		for i := range terms {
			if exhausted.Test(uint(i)) || curDocID[i] != did {
				continue
			}
			score += bm25.Score(terms[i].Cursor.CurFreq(), dt.Length(did), terms[i].DF, n, params)

			next, advOK := terms[i].Cursor.NextGEQ(curDocID[i] + 1)
			if !advOK {
				curDocID[i] = sentinel
				exhausted.Set(uint(i))
				continue
			}
			curDocID[i] = next
		}

		hp.Insert(did, score)
		did, ok = minDID()
	}

	return hp.Sorted()
}
