// Package topk implements a bounded min-heap keyed on score, used by daat
// to keep the K highest-scoring documents seen during a query without
// sorting the whole candidate set. The heap is hand-rolled rather than
// built on container/heap so its sift-up/sift-down order is fixed and
// reproducible across runs, which property tests rely on.
package topk

import "sort"

// Result is one ranked document: DocID scored Score.
type Result struct {
	DocID uint32
	Score float64
}

// less reports whether a has lower heap priority than b: lower score
// first; ties broken by doc-id descending so that, among equal scores,
// the heap evicts the higher doc-id first and keeps the lower one.
func less(a, b Result) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.DocID > b.DocID
}

// Heap is a bounded min-heap of capacity K. The zero value is not usable;
// construct with New.
type Heap struct {
	cap int
	h   []Result
}

// New returns a Heap that retains at most k results.
func New(k int) *Heap {
	return &Heap{cap: k, h: make([]Result, 0, k)}
}

// Len reports the number of results currently held.
func (hp *Heap) Len() int { return len(hp.h) }

// Insert offers (docID, score) to the heap. If the heap has fewer than
// cap elements, it is pushed unconditionally. Otherwise it is inserted
// only if it outranks the current root (lowest-priority element), which
// is then evicted.
func (hp *Heap) Insert(docID uint32, score float64) {
	r := Result{DocID: docID, Score: score}

	if len(hp.h) < hp.cap {
		hp.h = append(hp.h, r)
		hp.siftUp(len(hp.h) - 1)
		return
	}

	if hp.cap == 0 || !less(hp.h[0], r) {
		return
	}
	hp.h[0] = r
	hp.siftDown(0)
}

func (hp *Heap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(hp.h[i], hp.h[parent]) {
			return
		}
		hp.h[i], hp.h[parent] = hp.h[parent], hp.h[i]
		i = parent
	}
}

func (hp *Heap) siftDown(i int) {
	n := len(hp.h)
	for {
		left, right := 2*i+1, 2*i+2
		smallest := i
		if left < n && less(hp.h[left], hp.h[smallest]) {
			smallest = left
		}
		if right < n && less(hp.h[right], hp.h[smallest]) {
			smallest = right
		}
		if smallest == i {
			return
		}
		hp.h[i], hp.h[smallest] = hp.h[smallest], hp.h[i]
		i = smallest
	}
}

// Sorted drains the heap and returns its contents sorted descending by
// score, ties broken by doc-id descending, per the query-end contract.
func (hp *Heap) Sorted() []Result {
	out := make([]Result, len(hp.h))
	copy(out, hp.h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].DocID > out[j].DocID
	})
	return out
}
