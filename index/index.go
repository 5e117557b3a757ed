// Package index ties the lexicon, doc table, and postings file together
// behind a single immutable handle, replacing the C source's process-wide
// lexicon_table/doc_table globals (spec.md section 9 design note).
package index

import (
	"fmt"
	"os"

	"github.com/jbraha/invidx/bm25"
	"github.com/jbraha/invidx/daat"
	"github.com/jbraha/invidx/doctable"
	"github.com/jbraha/invidx/lexicon"
	"github.com/jbraha/invidx/postings"
	"github.com/jbraha/invidx/topk"
)

// Mode selects the DAAT traversal used to evaluate a query.
type Mode int

const (
	Disjunctive Mode = iota
	Conjunctive
)

// Handle is the immutable, process-lifetime view of one built index: the
// lexicon and doc table are loaded entirely into memory; the postings
// file is read by random access (seek+read) per query. A Handle may be
// shared across concurrent queries without synchronization; each query
// opens its own cursors.
type Handle struct {
	Lexicon *lexicon.Table
	Docs    doctable.Table
	file    *os.File
	params  bm25.Params
}

// OpenOption configures a Handle at open time.
type OpenOption func(*Handle)

// WithParams overrides the BM25 parameters used for scoring, in place of
// the documented corpus defaults.
func WithParams(p bm25.Params) OpenOption {
	return func(h *Handle) { h.params = p }
}

// Open loads the lexicon and doc table from lexiconPath/docTablePath and
// opens indexPath for random access. All three files are produced by
// cmd/buildindex.
func Open(lexiconPath, docTablePath, indexPath string, opts ...OpenOption) (*Handle, error) {
	lf, err := os.Open(lexiconPath)
	if err != nil {
		return nil, fmt.Errorf("index: open lexicon: %w", err)
	}
	defer lf.Close()
	lex, err := lexicon.Load(lf)
	if err != nil {
		return nil, fmt.Errorf("index: load lexicon: %w", err)
	}

	df, err := os.Open(docTablePath)
	if err != nil {
		return nil, fmt.Errorf("index: open doc table: %w", err)
	}
	defer df.Close()
	docs, err := doctable.Load(df)
	if err != nil {
		return nil, fmt.Errorf("index: load doc table: %w", err)
	}

	file, err := os.Open(indexPath)
	if err != nil {
		return nil, fmt.Errorf("index: open postings file: %w", err)
	}

	h := &Handle{Lexicon: lex, Docs: docs, file: file, params: bm25.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Close releases the underlying postings file.
func (h *Handle) Close() error {
	return h.file.Close()
}

// Results is the outcome of evaluating one query.
type Results struct {
	Hits []topk.Result
	// Empty distinguishes a query that matched nothing (Hits is empty but
	// at least one query term resolved in the lexicon) from one where
	// every term was an unknown LookupMiss (Hits is empty because there
	// was nothing to evaluate at all).
	Empty bool
}

// Evaluate resolves terms against the lexicon, skipping (and logging) any
// unknown term as a LookupMiss, opens a cursor per known term, and
// dispatches to the daat traversal selected by mode. If every term is
// unknown, Evaluate returns an empty Results with Empty set, without
// attempting a traversal.
func (h *Handle) Evaluate(terms []string, mode Mode, k int) (Results, error) {
	var daatTerms []daat.Term
	for _, term := range terms {
		e, ok := h.Lexicon.Lookup(term)
		if !ok {
			fmt.Fprintf(os.Stderr, "index: query term %q not found, skipping\n", term)
			continue
		}
		c, err := postings.OpenList(h.file, e)
		if err != nil {
			return Results{}, fmt.Errorf("index: open postings for %q: %w", term, err)
		}
		daatTerms = append(daatTerms, daat.Term{Cursor: c, DF: e.DF})
	}

	if len(daatTerms) == 0 {
		return Results{Empty: true}, nil
	}

	var hits []topk.Result
	switch mode {
	case Conjunctive:
		hits = daat.Conjunctive(daatTerms, h.Docs, k, h.params)
	default:
		hits = daat.Disjunctive(daatTerms, h.Docs, k, h.params)
	}

	return Results{Hits: hits}, nil
}
