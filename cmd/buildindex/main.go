// Command buildindex consumes a term-sorted postings stream, a
// document-frequency (words) file, and a document-lengths file, and
// writes the resulting lexicon and binary index files.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/jbraha/invidx/build"
	"github.com/jbraha/invidx/doctable"
	"github.com/jbraha/invidx/lexicon"
)

func main() {
	postingsPath := flag.String("postings", "", "sorted postings stream file (term doc_id freq per line)")
	wordsPath := flag.String("words", "", "document-frequency file (term count per line)")
	docLengthsPath := flag.String("doclengths", "", "document-lengths file (doc_id length per line)")
	lexiconOut := flag.String("lexicon-out", "lexicon.txt", "output lexicon file path")
	indexOut := flag.String("index-out", "index.bin", "output binary index file path")
	docTableOut := flag.String("doctable-out", "doctable.txt", "output document-lengths file path")
	flag.Parse()

	if *postingsPath == "" || *wordsPath == "" || *docLengthsPath == "" {
		fmt.Fprintln(os.Stderr, "buildindex: -postings, -words, and -doclengths are required")
		os.Exit(1)
	}

	if err := copyDocLengths(*docLengthsPath, *docTableOut); err != nil {
		fmt.Fprintf(os.Stderr, "buildindex: %v\n", err)
		os.Exit(1)
	}

	df, err := loadWords(*wordsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildindex: %v\n", err)
		os.Exit(1)
	}

	pf, err := os.Open(*postingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildindex: %v\n", err)
		os.Exit(1)
	}
	defer pf.Close()

	idx, err := os.Create(*indexOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildindex: %v\n", err)
		os.Exit(1)
	}
	defer idx.Close()

	postings, postingsErr := postingsSeq(pf)
	entries, err := build.Build(postings, df, idx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildindex: build failed: %v\n", err)
		os.Exit(1)
	}
	if *postingsErr != nil {
		fmt.Fprintf(os.Stderr, "buildindex: %v\n", *postingsErr)
		os.Exit(1)
	}

	lf, err := os.Create(*lexiconOut)
	if err != nil {
		fmt.Fprintf(os.Stderr, "buildindex: %v\n", err)
		os.Exit(1)
	}
	defer lf.Close()

	if err := lexicon.Save(lf, entries); err != nil {
		fmt.Fprintf(os.Stderr, "buildindex: save lexicon: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "buildindex: wrote %d terms to %s, index to %s\n", len(entries), *lexiconOut, *indexOut)
}

// copyDocLengths validates the doc-lengths file against doctable's format
// (failing fast on malformed input, per spec.md's startup-failure exit
// code contract) and copies it through unchanged to outPath, where
// index.Open expects to find it.
func copyDocLengths(inPath, outPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read doc-lengths file: %w", err)
	}
	if _, err := doctable.Load(strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("validate doc-lengths file: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create doc table output: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("write doc table output: %w", err)
	}
	return nil
}

func loadWords(path string) (map[string]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open words file: %w", err)
	}
	defer f.Close()

	df := make(map[string]uint32)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed words line %q", line)
		}
		count, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad count in words line %q: %w", line, err)
		}
		df[fields[0]] = uint32(count)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan words file: %w", err)
	}
	return df, nil
}

// postingsSeq streams build.Posting records from a "term doc_id freq"
// file without loading it fully into memory. A malformed line stops the
// sequence early, which iter.Seq has no way to signal on its own, so the
// returned *error is set before the sequence stops and must be checked by
// the caller after the consuming loop (here, after build.Build returns)
// the same way sc.Err() is checked in loadWords.
func postingsSeq(f *os.File) (iter.Seq[build.Posting], *error) {
	var outErr error
	seq := func(yield func(build.Posting) bool) {
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) != 3 {
				outErr = fmt.Errorf("malformed postings line %q", line)
				return
			}
			docID, err1 := strconv.ParseUint(fields[1], 10, 32)
			freq, err2 := strconv.ParseUint(fields[2], 10, 32)
			if err1 != nil || err2 != nil {
				outErr = fmt.Errorf("malformed postings line %q", line)
				return
			}
			p := build.Posting{Term: fields[0], DocID: uint32(docID), Freq: uint32(freq)}
			if !yield(p) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			outErr = fmt.Errorf("scan postings file: %w", err)
		}
	}
	return seq, &outErr
}
