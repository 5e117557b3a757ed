package daat_test

import (
	"bytes"
	"testing"

	"github.com/jbraha/invidx/bm25"
	"github.com/jbraha/invidx/build"
	"github.com/jbraha/invidx/daat"
	"github.com/jbraha/invidx/doctable"
	"github.com/jbraha/invidx/lexicon"
	"github.com/jbraha/invidx/postings"
)

// posting is a (term, doc_id, freq) triple used to build small fixture
// corpora directly, bypassing the tokenizer.
type posting struct {
	term  string
	docID uint32
	freq  uint32
}

func buildCorpus(t *testing.T, ps []posting) (*bytes.Reader, map[string]*lexicon.Entry) {
	t.Helper()

	byTerm := make(map[string][]build.Posting)
	df := make(map[string]uint32)
	seen := make(map[string]map[uint32]bool)
	for _, p := range ps {
		byTerm[p.term] = append(byTerm[p.term], build.Posting{Term: p.term, DocID: p.docID, Freq: p.freq})
		if seen[p.term] == nil {
			seen[p.term] = make(map[uint32]bool)
		}
		if !seen[p.term][p.docID] {
			seen[p.term][p.docID] = true
			df[p.term]++
		}
	}

	var buf bytes.Buffer
	entries, err := build.Build(build.Flatten(byTerm), df, &buf)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return bytes.NewReader(buf.Bytes()), entries
}

func openTerm(t *testing.T, r *bytes.Reader, entries map[string]*lexicon.Entry, term string) daat.Term {
	t.Helper()
	e, ok := entries[term]
	if !ok {
		t.Fatalf("no entry for term %q", term)
	}
	c, err := postings.OpenList(r, e)
	if err != nil {
		t.Fatalf("OpenList(%q): %v", term, err)
	}
	return daat.Term{Cursor: c, DF: e.DF}
}

func scenarioCorpus(t *testing.T) (*bytes.Reader, map[string]*lexicon.Entry, doctable.Table) {
	t.Helper()
	ps := []posting{
		{"a", 1, 1}, {"b", 1, 1}, {"c", 1, 1},
		{"b", 2, 1}, {"c", 2, 1}, {"d", 2, 1},
		{"a", 3, 1}, {"d", 3, 1},
	}
	r, entries := buildCorpus(t, ps)
	dt := doctable.Table{0, 3, 3, 2} // doc 1,2 length 3; doc 3 length 2
	return r, entries, dt
}

func params() bm25.Params {
	return bm25.Params{K1: 1.2, B: 0.75, AvgDocLength: 5.0}
}

const n = 10
const k = 3

func TestDisjunctiveScenario1(t *testing.T) {
	r, entries, dt := scenarioCorpus(t)
	terms := []daat.Term{openTerm(t, r, entries, "a"), openTerm(t, r, entries, "b")}

	got := daat.Disjunctive(terms, dt, k, params())
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3: %+v", len(got), got)
	}
	if got[0].DocID != 1 {
		t.Fatalf("top result = doc %d, want doc 1 (matches both terms): %+v", got[0].DocID, got)
	}
	rest := map[uint32]bool{got[1].DocID: true, got[2].DocID: true}
	if !rest[2] || !rest[3] {
		t.Fatalf("expected docs 2 and 3 to follow, got %+v", got)
	}
}

func TestConjunctiveScenario2(t *testing.T) {
	r, entries, dt := scenarioCorpus(t)
	terms := []daat.Term{openTerm(t, r, entries, "a"), openTerm(t, r, entries, "b")}

	got := daat.Conjunctive(terms, dt, k, params())
	if len(got) != 1 || got[0].DocID != 1 {
		t.Fatalf("got %+v, want only doc 1", got)
	}
}

func TestDisjunctiveSingleTermScenario3(t *testing.T) {
	r, entries, dt := scenarioCorpus(t)
	terms := []daat.Term{openTerm(t, r, entries, "d")}

	got := daat.Disjunctive(terms, dt, k, params())
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(got), got)
	}
	// doc 3 (length 2) should outscore doc 2 (length 3) under BM25 given
	// identical frequency and df.
	if got[0].DocID != 3 || got[1].DocID != 2 {
		t.Fatalf("got %+v, want doc 3 ahead of doc 2 (shorter doc wins)", got)
	}
}

func TestConjunctiveSingleTerm(t *testing.T) {
	r, entries, dt := scenarioCorpus(t)
	terms := []daat.Term{openTerm(t, r, entries, "c")}

	got := daat.Conjunctive(terms, dt, k, params())
	if len(got) != 2 {
		t.Fatalf("got %+v, want docs 1 and 2", got)
	}
}

func TestDisjunctiveUnionCorrectness(t *testing.T) {
	r, entries, dt := scenarioCorpus(t)
	terms := []daat.Term{
		openTerm(t, r, entries, "a"),
		openTerm(t, r, entries, "b"),
		openTerm(t, r, entries, "c"),
		openTerm(t, r, entries, "d"),
	}

	got := daat.Disjunctive(terms, dt, 10, params())
	seen := make(map[uint32]bool)
	for _, res := range got {
		seen[res.DocID] = true
	}
	for _, id := range []uint32{1, 2, 3} {
		if !seen[id] {
			t.Fatalf("union missing doc %d: %+v", id, got)
		}
	}
}

func TestHeapKProperty(t *testing.T) {
	r, entries, dt := scenarioCorpus(t)
	terms := []daat.Term{
		openTerm(t, r, entries, "a"),
		openTerm(t, r, entries, "b"),
		openTerm(t, r, entries, "c"),
		openTerm(t, r, entries, "d"),
	}

	got := daat.Disjunctive(terms, dt, 2, params())
	if len(got) != 2 {
		t.Fatalf("got %d results, want min(K, candidates) = 2", len(got))
	}
	if got[0].Score < got[1].Score {
		t.Fatalf("results not sorted descending: %+v", got)
	}
}
