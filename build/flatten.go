package build

import (
	"iter"
	"sort"
)

// Flatten takes an unordered in-memory posting map (term -> postings, in
// any doc_id order) and returns them as a sequence sorted by term
// ascending then doc_id ascending, ready for Build. This is the
// round-trip property helper named in spec.md section 8 ("for any
// in-memory posting map M = term -> [(doc_id, freq)] ... building an
// index from a sorted flattening of M").
func Flatten(m map[string][]Posting) iter.Seq[Posting] {
	all := make([]Posting, 0)
	for term, postings := range m {
		for _, p := range postings {
			all = append(all, Posting{Term: term, DocID: p.DocID, Freq: p.Freq})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Term != all[j].Term {
			return all[i].Term < all[j].Term
		}
		return all[i].DocID < all[j].DocID
	})

	return func(yield func(Posting) bool) {
		for _, p := range all {
			if !yield(p) {
				return
			}
		}
	}
}
