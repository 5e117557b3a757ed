package index_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jbraha/invidx/build"
	"github.com/jbraha/invidx/index"
	"github.com/jbraha/invidx/lexicon"
)

// writeFixture builds a tiny two-term corpus {1:"a", 2:"a b", 3:"b"}
// and writes lexicon.txt, doctable.txt, and index.bin into dir.
func writeFixture(t *testing.T, dir string) {
	t.Helper()

	ps := []build.Posting{
		{Term: "a", DocID: 1, Freq: 1},
		{Term: "a", DocID: 2, Freq: 1},
		{Term: "b", DocID: 2, Freq: 1},
		{Term: "b", DocID: 3, Freq: 1},
	}
	seq := func(yield func(build.Posting) bool) {
		for _, p := range ps {
			if !yield(p) {
				return
			}
		}
	}
	df := map[string]uint32{"a": 2, "b": 2}

	var buf bytes.Buffer
	entries, err := build.Build(seq, df, &buf)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "index.bin"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	lf, err := os.Create(filepath.Join(dir, "lexicon.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if err := lexicon.Save(lf, entries); err != nil {
		t.Fatal(err)
	}
	lf.Close()

	if err := os.WriteFile(filepath.Join(dir, "doctable.txt"), []byte("1 1\n2 2\n3 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEvaluateSkipsUnknownTerm(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)

	h, err := index.Open(filepath.Join(dir, "lexicon.txt"), filepath.Join(dir, "doctable.txt"), filepath.Join(dir, "index.bin"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	res, err := h.Evaluate([]string{"a", "zzz"}, index.Disjunctive, 10)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.Empty {
		t.Fatalf("Empty = true, want false (term %q resolved)", "a")
	}
	if len(res.Hits) != 2 {
		t.Fatalf("got %d hits, want 2 (docs 1 and 2 contain 'a')", len(res.Hits))
	}
}

func TestEvaluateAllTermsUnknown(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)

	h, err := index.Open(filepath.Join(dir, "lexicon.txt"), filepath.Join(dir, "doctable.txt"), filepath.Join(dir, "index.bin"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	res, err := h.Evaluate([]string{"zzz", "qqq"}, index.Disjunctive, 10)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.Empty {
		t.Fatalf("Empty = false, want true (no terms resolved)")
	}
	if len(res.Hits) != 0 {
		t.Fatalf("got %d hits, want 0", len(res.Hits))
	}
}

func TestEvaluateConjunctive(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)

	h, err := index.Open(filepath.Join(dir, "lexicon.txt"), filepath.Join(dir, "doctable.txt"), filepath.Join(dir, "index.bin"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer h.Close()

	res, err := h.Evaluate([]string{"a", "b"}, index.Conjunctive, 10)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Hits) != 1 || res.Hits[0].DocID != 2 {
		t.Fatalf("got %+v, want only doc 2", res.Hits)
	}
}
