// Package lexicon implements the persistent term -> postings-location
// metadata table: a text file loaded once into an in-memory hash map, with
// a bloom filter guarding the common "term definitely absent" case so a
// query can skip the hash lookup entirely for terms nowhere in the corpus.
package lexicon

import (
	"bufio"
	"fmt"
	"hash/crc32"
	"io"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// Entry holds one term's postings-location metadata, exactly the fields
// named in spec.md section 3.
type Entry struct {
	Term string

	DF uint32 // document frequency

	StartDBlock  int
	StartDOffset int
	StartFOffset int

	LastDBlock  int
	LastDOffset int
	LastFOffset int

	LastDocID uint32

	// NumBlocks is the exact count of doc-id blocks this term spans (the
	// first block is block index 0). Last has exactly NumBlocks entries;
	// Last[NumBlocks-1] == LastDocID. See SPEC_FULL.md section 5.4 for the
	// resolution of the source's block-counting ambiguity.
	NumBlocks int
	Last      []uint32
}

// Table is the in-memory lexicon: a hash map from term to Entry plus a
// bloom filter over the term set for fast absence checks.
type Table struct {
	entries map[string]*Entry
	filter  *bloom.BloomFilter
}

// New builds a Table (and its bloom filter) from a set of entries, keyed
// by term. Used by Load.
func New(entries map[string]*Entry) *Table {
	filter := bloom.NewWithEstimates(uint(len(entries))+1, 0.01)
	for term := range entries {
		filter.AddString(term)
	}
	return &Table{entries: entries, filter: filter}
}

// MaybeContains reports whether term might be in the lexicon. false means
// term is definitely absent and the caller can skip the hash lookup
// entirely (the LookupMiss warn-and-continue path in spec.md section 4.11).
func (t *Table) MaybeContains(term string) bool {
	return t.filter.TestString(term)
}

// Lookup returns the entry for term, if present.
func (t *Table) Lookup(term string) (*Entry, bool) {
	if !t.MaybeContains(term) {
		return nil, false
	}
	e, ok := t.entries[term]
	return e, ok
}

// Len returns the number of terms in the lexicon.
func (t *Table) Len() int { return len(t.entries) }

// Save writes entries in the exact text format of spec.md section 6: one
// line per term, fields space-separated in order, followed by the
// num_blocks last[] integers, LF-terminated, trailed by a CRC32 line
// covering the preceding bytes so a truncated file is detected at Load.
func Save(w io.Writer, entries map[string]*Entry) error {
	crc := crc32.NewIEEE()
	mw := io.MultiWriter(w, crc)

	bw := bufio.NewWriter(mw)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s %d %d %d %d %d %d %d %d %d",
			e.Term, e.DF,
			e.StartDBlock, e.StartDOffset, e.StartFOffset,
			e.LastDBlock, e.LastDOffset, e.LastFOffset,
			e.LastDocID, e.NumBlocks); err != nil {
			return fmt.Errorf("lexicon: write entry %q: %w", e.Term, err)
		}
		for _, last := range e.Last {
			if _, err := fmt.Fprintf(bw, " %d", last); err != nil {
				return fmt.Errorf("lexicon: write last[] for %q: %w", e.Term, err)
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return fmt.Errorf("lexicon: write newline: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("lexicon: flush: %w", err)
	}

	if _, err := fmt.Fprintf(w, "crc32 %d\n", crc.Sum32()); err != nil {
		return fmt.Errorf("lexicon: write crc trailer: %w", err)
	}
	return nil
}

// ErrFormat indicates the lexicon file is malformed or truncated.
var ErrFormat = fmt.Errorf("lexicon: malformed file")

// Load reads a lexicon file written by Save, verifying the trailing CRC32
// before parsing, and builds an in-memory Table.
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lexicon: read: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrFormat)
	}

	trailer := lines[len(lines)-1]
	body := lines[:len(lines)-1]

	var wantCRC uint32
	if n, err := fmt.Sscanf(trailer, "crc32 %d", &wantCRC); err != nil || n != 1 {
		return nil, fmt.Errorf("%w: missing crc trailer", ErrFormat)
	}

	bodyBytes := []byte(strings.Join(body, "\n"))
	if len(body) > 0 {
		bodyBytes = append(bodyBytes, '\n')
	}
	if gotCRC := crc32.ChecksumIEEE(bodyBytes); gotCRC != wantCRC {
		return nil, fmt.Errorf("%w: crc mismatch (got %d, want %d)", ErrFormat, gotCRC, wantCRC)
	}

	entries := make(map[string]*Entry, len(body))
	for _, line := range body {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := parseEntry(line)
		if err != nil {
			return nil, err
		}
		entries[e.Term] = e
	}

	return New(entries), nil
}

func parseEntry(line string) (*Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < 10 {
		return nil, fmt.Errorf("%w: short line %q", ErrFormat, line)
	}

	e := &Entry{Term: fields[0]}

	ints := make([]int, 9)
	for i := 0; i < 9; i++ {
		v, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: field %d of %q: %v", ErrFormat, i+1, line, err)
		}
		ints[i] = v
	}

	e.DF = uint32(ints[0])
	e.StartDBlock = ints[1]
	e.StartDOffset = ints[2]
	e.StartFOffset = ints[3]
	e.LastDBlock = ints[4]
	e.LastDOffset = ints[5]
	e.LastFOffset = ints[6]
	e.LastDocID = uint32(ints[7])
	e.NumBlocks = ints[8]

	if len(fields) != 10+e.NumBlocks {
		return nil, fmt.Errorf("%w: expected %d last[] entries, got %d in %q",
			ErrFormat, e.NumBlocks, len(fields)-10, line)
	}

	e.Last = make([]uint32, e.NumBlocks)
	for i := 0; i < e.NumBlocks; i++ {
		v, err := strconv.Atoi(fields[10+i])
		if err != nil {
			return nil, fmt.Errorf("%w: last[%d] of %q: %v", ErrFormat, i, line, err)
		}
		e.Last[i] = uint32(v)
	}

	return e, nil
}
