// Command queryindex evaluates queries against a built index, either
// interactively (prompting for heap size once, then looping on
// mode/query-text lines) or in batch mode (one query per line, default
// top-10 disjunctive).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jbraha/invidx/index"
	"github.com/jbraha/invidx/query"
)

func main() {
	lexiconPath := flag.String("lexicon", "lexicon.txt", "lexicon file path")
	docTablePath := flag.String("doctable", "doctable.txt", "document-lengths file path")
	indexPath := flag.String("index", "index.bin", "binary index file path")
	batchPath := flag.String("batch", "", "batch query file (<query_id> <query_text> per line); omit for interactive mode")
	flag.Parse()

	h, err := index.Open(*lexiconPath, *docTablePath, *indexPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "queryindex: %v\n", err)
		os.Exit(1)
	}
	defer h.Close()

	if *batchPath != "" {
		if err := runBatch(h, *batchPath, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "queryindex: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runInteractive(h, os.Stdin, os.Stdout)
}

// runBatch evaluates each "<query_id> <query_text>" line in disjunctive
// mode with K=10 and writes "<query_id> <doc_id_1> ... <doc_id_K>" lines,
// per spec.md section 6's batch query interface.
func runBatch(h *index.Handle, path string, out *os.File) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	const defaultK = 10

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	w := bufio.NewWriter(out)
	defer w.Flush()

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			fmt.Fprintf(os.Stderr, "queryindex: malformed batch line %q, skipping\n", line)
			continue
		}
		queryID, text := parts[0], parts[1]

		terms := query.Tokenize(text)
		res, err := h.Evaluate(terms, index.Disjunctive, defaultK)
		if err != nil {
			return fmt.Errorf("evaluate query %s: %w", queryID, err)
		}

		fmt.Fprint(w, queryID)
		for _, r := range res.Hits {
			fmt.Fprintf(w, " %d", r.DocID)
		}
		fmt.Fprintln(w)
	}
	return sc.Err()
}

// runInteractive prompts once for the heap size K, then loops reading
// "<mode> <query-text>" lines (mode c=conjunctive, d=disjunctive, q=quit)
// and prints ranked doc-ids for each.
func runInteractive(h *index.Handle, in *os.File, out *os.File) {
	r := bufio.NewReader(in)

	fmt.Fprint(out, "K: ")
	kLine, _ := r.ReadString('\n')
	k, err := strconv.Atoi(strings.TrimSpace(kLine))
	if err != nil || k <= 0 {
		k = 10
	}

	for {
		fmt.Fprint(out, "query (c|d|q) text: ")
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		mode := parts[0]
		if mode == "q" {
			return
		}
		if len(parts) != 2 || (mode != "c" && mode != "d") {
			fmt.Fprintf(out, "expected mode 'c' or 'd' followed by query text, got %q\n", line)
			continue
		}

		daatMode := index.Disjunctive
		if mode == "c" {
			daatMode = index.Conjunctive
		}

		terms := query.Tokenize(parts[1])
		res, err := h.Evaluate(terms, daatMode, k)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if res.Empty {
			fmt.Fprintln(out, "(no query terms matched)")
			continue
		}
		for _, hit := range res.Hits {
			fmt.Fprintf(out, "%d\t%.6f\n", hit.DocID, hit.Score)
		}
	}
}
