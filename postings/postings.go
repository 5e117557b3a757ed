// Package postings implements the postings reader (OpenList) and the
// per-term Cursor (ListPointer): a stateful iterator over one term's
// postings supporting next_geq with block-level skipping and lazy
// decompression, per spec.md sections 4.4 and 4.5.
package postings

import (
	"fmt"
	"io"

	"github.com/jbraha/invidx/block"
	"github.com/jbraha/invidx/lexicon"
	"github.com/jbraha/invidx/varbyte"
)

// OpenList copies the byte range spanning the term's blocks out of the
// index file (random access via ReaderAt) into two contiguous in-memory
// buffers — doc-id bytes and frequency bytes — and returns a fresh
// Cursor over them. The first physical block is read from its start
// offset to the block end; intermediate blocks are read whole; the last
// block is read from 0 to its last offset, per spec.md section 4.5.
func OpenList(r io.ReaderAt, e *lexicon.Entry) (*Cursor, error) {
	dBytes, err := readTermBlocks(r, e.StartDBlock, e.StartDOffset, e.LastDBlock, e.LastDOffset)
	if err != nil {
		return nil, fmt.Errorf("postings: read doc-id blocks for %q: %w", e.Term, err)
	}
	fBytes, err := readTermBlocks(r, e.StartDBlock+1, e.StartFOffset, e.LastDBlock+1, e.LastFOffset)
	if err != nil {
		return nil, fmt.Errorf("postings: read frequency blocks for %q: %w", e.Term, err)
	}

	return &Cursor{
		term:         e.Term,
		last:         e.Last,
		numBlocks:    e.NumBlocks,
		lastDocID:    e.LastDocID,
		startDOffset: e.StartDOffset,
		startFOffset: e.StartFOffset,
		dBytes:       dBytes,
		fBytes:       fBytes,
		curBlock:     0,
		curPos:       0,
	}, nil
}

// readTermBlocks reads the doc-id (or frequency) blocks for a term,
// starting at physical block startBlock/startOffset and ending at
// physical block lastBlock/lastOffset, stepping by 2 physical blocks
// (doc-id and frequency blocks alternate).
func readTermBlocks(r io.ReaderAt, startBlock, startOffset, lastBlock, lastOffset int) ([]byte, error) {
	if startBlock == lastBlock {
		n := lastOffset - startOffset
		buf := make([]byte, n)
		if _, err := r.ReadAt(buf, int64(startBlock)*block.Size+int64(startOffset)); err != nil && err != io.EOF {
			return nil, err
		}
		return buf, nil
	}

	numMiddleBlocks := (lastBlock-startBlock)/2 - 1
	total := (block.Size - startOffset) + numMiddleBlocks*block.Size + lastOffset
	buf := make([]byte, total)

	off := 0
	firstN := block.Size - startOffset
	if _, err := r.ReadAt(buf[:firstN], int64(startBlock)*block.Size+int64(startOffset)); err != nil && err != io.EOF {
		return nil, err
	}
	off += firstN

	for b := startBlock + 2; b < lastBlock; b += 2 {
		if _, err := r.ReadAt(buf[off:off+block.Size], int64(b)*block.Size); err != nil && err != io.EOF {
			return nil, err
		}
		off += block.Size
	}

	if _, err := r.ReadAt(buf[off:off+lastOffset], int64(lastBlock)*block.Size); err != nil && err != io.EOF {
		return nil, err
	}

	return buf, nil
}

// Cursor is a per-term postings iterator. It owns its decompression
// buffers (cursor-owned, not shared with other cursors) and maintains the state machine
// of spec.md section 4.10: Unopened -> BlockUnloaded(0) on construction,
// BlockUnloaded -> BlockUnloaded(next) on skip via last[], BlockUnloaded
// -> BlockDecoded on first next_geq that lands inside, BlockDecoded ->
// BlockUnloaded on skip past the current block, any -> Exhausted when
// curBlock >= numBlocks.
type Cursor struct {
	term string

	dBytes []byte
	fBytes []byte

	last         []uint32
	numBlocks    int
	lastDocID    uint32
	startDOffset int
	startFOffset int

	curBlock int
	curPos   int

	decoded   bool
	curDocIDs []uint32
	curFreqs  []uint32

	curDocID uint32
	curFreq  uint32
}

// Metadata and current-position accessors; daat reads LastDocID to bound
// a conjunctive traversal and CurFreq to score the current doc-id.
func (c *Cursor) Term() string      { return c.term }
func (c *Cursor) LastDocID() uint32 { return c.lastDocID }
func (c *Cursor) CurDocID() uint32  { return c.curDocID }
func (c *Cursor) CurFreq() uint32   { return c.curFreq }

// blockByteOffset returns the byte offset within the term's contiguous
// compressed buffer at which block i begins, per spec.md section 4.4.
func blockByteOffset(i int, startOffset int) int {
	if i == 0 {
		return 0
	}
	return (block.Size - startOffset) + (i-1)*block.Size
}

// NextGEQ returns the smallest doc-id in this list that is >= k,
// advancing the cursor so CurDocID/CurFreq correspond to it. ok is false
// if no such doc-id exists (list exhausted) — the explicit-sentinel
// rendering of spec.md section 4.4's contract permitted by section 9.
func (c *Cursor) NextGEQ(k uint32) (docID uint32, ok bool) {
	for c.last[c.curBlock] < k {
		c.curBlock++
		c.decoded = false
		c.curPos = 0
		if c.curBlock >= c.numBlocks {
			c.curDocID = c.lastDocID
			return 0, false
		}
	}

	if !c.decoded {
		c.decodeBlock()
	}

	for {
		if c.curPos >= len(c.curDocIDs) {
			// Should not happen: the block's last[] sentinel guarantees
			// a doc-id >= any k <= last[curBlock] appears before the
			// block ends.
			c.curDocID = c.lastDocID
			return 0, false
		}
		if c.curDocIDs[c.curPos] >= k {
			c.curDocID = c.curDocIDs[c.curPos]
			c.curFreq = c.curFreqs[c.curPos]
			return c.curDocID, true
		}
		c.curPos++
	}
}

// decodeBlock decodes doc-ids of the current block from its start offset
// until the value equal to last[curBlock] has been emitted — the block
// boundary is identified by matching the recorded last doc-id, not by
// byte count (spec.md section 4.4 step 2). It decodes the same number of
// frequency integers from the paired stream.
func (c *Cursor) decodeBlock() {
	dOff := blockByteOffset(c.curBlock, c.startDOffset)
	lastInBlock := c.last[c.curBlock]

	docIDs := c.curDocIDs[:0]
	for {
		v, n := varbyte.Decode(c.dBytes[dOff:])
		dOff += n
		docIDs = append(docIDs, v)
		if v == lastInBlock {
			break
		}
	}
	c.curDocIDs = docIDs

	fOff := blockByteOffset(c.curBlock, c.startFOffset)
	freqs := c.curFreqs[:0]
	for i := 0; i < len(docIDs); i++ {
		v, n := varbyte.Decode(c.fBytes[fOff:])
		fOff += n
		freqs = append(freqs, v)
	}
	c.curFreqs = freqs

	c.decoded = true
}
