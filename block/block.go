// Package block implements the paired doc-id/frequency physical block
// writer that backs the on-disk postings format: two fixed 64 KiB buffers
// that are padded with zeros and flushed together, in D,F order, whenever
// the next posting would overflow the doc-id buffer.
package block

import (
	"fmt"
	"io"

	"github.com/jbraha/invidx/varbyte"
)

// Size is the fixed physical block size in bytes.
const Size = 64 * 1024

// Writer accumulates doc-id and frequency postings into paired 64 KiB
// blocks and flushes them to an underlying stream. It is not safe for
// concurrent use; callers needing concurrent flush buffering should guard
// a Writer with their own mutex.
type Writer struct {
	w    io.Writer
	size int

	dBuf []byte
	fBuf []byte

	offset     int64 // absolute byte offset of the next byte to be written
	blockIndex int   // index of the block currently being filled (doc-id block)
}

// NewWriter returns a Writer that flushes paired Size-byte blocks to w.
func NewWriter(w io.Writer) *Writer {
	return NewWriterSize(w, Size)
}

// NewWriterSize returns a Writer using a non-standard block size. This
// exists for tests that need to exercise multi-block postings lists
// without huge fixtures; production builds always use NewWriter.
func NewWriterSize(w io.Writer, size int) *Writer {
	return &Writer{
		w:    w,
		size: size,
		dBuf: make([]byte, 0, size),
		fBuf: make([]byte, 0, size),
	}
}

// Size returns the fixed block size this Writer uses.
func (wr *Writer) Size() int { return wr.size }

// Offset returns the absolute byte offset within the output stream at
// which the next flushed block would begin.
func (wr *Writer) Offset() int64 { return wr.offset }

// BlockIndex returns the index of the doc-id block currently being filled.
// The paired frequency block is always BlockIndex()+1.
func (wr *Writer) BlockIndex() int { return wr.blockIndex }

// DOffset returns the number of bytes already written into the current
// (unflushed) doc-id buffer.
func (wr *Writer) DOffset() int { return len(wr.dBuf) }

// FOffset returns the number of bytes already written into the current
// (unflushed) frequency buffer.
func (wr *Writer) FOffset() int { return len(wr.fBuf) }

// WouldOverflow reports whether appending the varbyte encoding of docID
// would overflow the current doc-id buffer, per spec.md section 4.2: the
// overflow check is on the doc-id buffer only, since doc-ids and
// frequencies are always appended together.
func (wr *Writer) WouldOverflow(docID uint32) bool {
	return len(wr.dBuf)+varbyte.EncodedLen(docID) > wr.size
}

// Append encodes (docID, freq) into the current block buffers. Callers
// must check WouldOverflow and call Flush first if it would overflow.
func (wr *Writer) Append(docID, freq uint32) {
	wr.dBuf = varbyte.Encode(wr.dBuf, docID)
	wr.fBuf = varbyte.Encode(wr.fBuf, freq)
}

// Flush pads both buffers to exactly Size with zeros, writes the doc-id
// buffer then the frequency buffer to the underlying stream (mandatory
// pairing, per spec.md section 4.2), resets both buffers, and advances
// the block counter by 2.
func (wr *Writer) Flush() error {
	padDBuf := padTo(wr.dBuf, wr.size)
	padFBuf := padTo(wr.fBuf, wr.size)

	if _, err := wr.w.Write(padDBuf); err != nil {
		return fmt.Errorf("block: flush doc-id block: %w", err)
	}
	if _, err := wr.w.Write(padFBuf); err != nil {
		return fmt.Errorf("block: flush frequency block: %w", err)
	}

	wr.offset += 2 * int64(wr.size)
	wr.blockIndex += 2
	wr.dBuf = wr.dBuf[:0]
	wr.fBuf = wr.fBuf[:0]

	return nil
}

// Pending reports whether either buffer holds unflushed bytes.
func (wr *Writer) Pending() bool {
	return len(wr.dBuf) > 0 || len(wr.fBuf) > 0
}

func padTo(buf []byte, size int) []byte {
	if len(buf) == size {
		return buf
	}
	out := make([]byte, size)
	copy(out, buf)
	return out
}
