// Package build implements the index builder: it streams sorted
// (term, doc_id, freq) postings, coalesces duplicate (term, doc) records,
// writes paired doc-id/frequency blocks through the block package, and
// produces the lexicon entries describing where each term's postings
// live in the resulting index file.
package build

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/jbraha/invidx/block"
	"github.com/jbraha/invidx/lexicon"
)

// Posting is one input record: term occurring in doc_id with frequency
// freq. The input sequence must be sorted by Term ascending then DocID
// ascending within a term (spec.md section 6); Build returns
// ErrOutOfOrder if it detects a violation.
type Posting struct {
	Term  string
	DocID uint32
	Freq  uint32
}

// MaxTermLen is the longest term accepted, per spec.md section 6 ("length
// <= 189 bytes"), confirmed by the original C source's MAX_WORD_SIZE=190
// (189 payload bytes plus a NUL terminator).
const MaxTermLen = 189

var (
	// ErrMissingDF is returned when a term appears in the postings stream
	// but has no entry in the supplied document-frequency table.
	ErrMissingDF = errors.New("build: term missing from document-frequency table")
	// ErrOutOfOrder is returned when the postings stream is not sorted by
	// term ascending then doc_id ascending.
	ErrOutOfOrder = errors.New("build: postings stream out of order")
	// ErrTermTooLong is returned when a term exceeds MaxTermLen bytes.
	ErrTermTooLong = errors.New("build: term exceeds maximum length")
)

// Option configures a build.
type Option func(*config)

type config struct {
	blockSize int
}

// WithBlockSize overrides the physical block size used by the writer.
// Production builds should not use this; it exists so tests can exercise
// multi-block postings lists with small fixtures.
func WithBlockSize(size int) Option {
	return func(c *config) { c.blockSize = size }
}

// Build consumes postings (already sorted by term, then doc_id), writes
// the block-compressed index to w, and returns the resulting lexicon
// entries keyed by term. dfTable supplies each term's document frequency,
// sourced externally (spec.md section 4.3: df is "not re-derived here").
func Build(postings iter.Seq[Posting], dfTable map[string]uint32, w io.Writer, opts ...Option) (map[string]*lexicon.Entry, error) {
	cfg := config{blockSize: block.Size}
	for _, opt := range opts {
		opt(&cfg)
	}

	bw := block.NewWriterSize(w, cfg.blockSize)
	entries := make(map[string]*lexicon.Entry)

	var (
		cur                 *lexicon.Entry
		havePending         bool
		pendDocID, pendFreq uint32
		prevTerm            string
		prevDocID           uint32
		started             bool
	)

	emitPending := func() error {
		if !havePending {
			return nil
		}
		if bw.WouldOverflow(pendDocID) {
			if err := bw.Flush(); err != nil {
				return err
			}
		}
		bw.Append(pendDocID, pendFreq)
		recordLast(cur, bw, pendDocID)
		havePending = false
		return nil
	}

	closeTerm := func() error {
		if cur == nil {
			return nil
		}
		if err := emitPending(); err != nil {
			return err
		}
		cur.LastDocID = cur.Last[len(cur.Last)-1]
		cur.LastDBlock = bw.BlockIndex()
		cur.LastDOffset = bw.DOffset()
		cur.LastFOffset = bw.FOffset()
		cur.NumBlocks = len(cur.Last)
		entries[cur.Term] = cur
		cur = nil
		return nil
	}

	openTerm := func(term string) error {
		df, ok := dfTable[term]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingDF, term)
		}
		cur = &lexicon.Entry{
			Term:         term,
			DF:           df,
			StartDBlock:  bw.BlockIndex(),
			StartDOffset: bw.DOffset(),
			StartFOffset: bw.FOffset(),
		}
		return nil
	}

	for p := range postings {
		if len(p.Term) > MaxTermLen {
			return nil, fmt.Errorf("%w: %q (%d bytes)", ErrTermTooLong, p.Term, len(p.Term))
		}

		switch {
		case !started:
			if err := openTerm(p.Term); err != nil {
				return nil, err
			}
			started = true

		case p.Term != prevTerm:
			if p.Term < prevTerm {
				return nil, fmt.Errorf("%w: term %q after %q", ErrOutOfOrder, p.Term, prevTerm)
			}
			if err := closeTerm(); err != nil {
				return nil, err
			}
			if err := openTerm(p.Term); err != nil {
				return nil, err
			}

		default:
			if p.DocID < prevDocID {
				return nil, fmt.Errorf("%w: doc_id %d after %d for term %q", ErrOutOfOrder, p.DocID, prevDocID, p.Term)
			}
		}

		if havePending && p.Term == prevTerm && p.DocID == pendDocID {
			pendFreq += p.Freq
		} else {
			if err := emitPending(); err != nil {
				return nil, err
			}
			pendDocID, pendFreq = p.DocID, p.Freq
			havePending = true
		}

		prevTerm, prevDocID = p.Term, p.DocID
	}

	if err := closeTerm(); err != nil {
		return nil, err
	}

	if bw.Pending() {
		if err := bw.Flush(); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// recordLast pushes the current doc-id appended to the writer's doc-id
// buffer into the term's last[] array, growing the array on block
// boundaries, per spec.md section 4.3: "last[num_blocks] gets set after
// every append and incremented on block boundary".
func recordLast(e *lexicon.Entry, bw *block.Writer, docID uint32) {
	blockNum := (bw.BlockIndex() - e.StartDBlock) / 2
	if len(e.Last) <= blockNum {
		grown := make([]uint32, blockNum+1)
		copy(grown, e.Last)
		e.Last = grown
	}
	e.Last[blockNum] = docID
}
