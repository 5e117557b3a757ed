// Package bm25 computes the BM25 per-term relevance contribution used by
// daat to score candidate documents, from stored raw term frequencies
// (query-time scoring, not a build-time byte-cached approximation).
package bm25

import "math"

// Params holds the BM25 tuning constants and corpus statistic needed to
// score a posting. Defaults match the corpus this format was built
// against; callers with a different corpus should recompute AvgDocLength.
type Params struct {
	K1           float64
	B            float64
	AvgDocLength float64
}

// Default returns the standard parameters: k1=1.2, b=0.75, and the
// average document length observed in the reference corpus.
func Default() Params {
	return Params{K1: 1.2, B: 0.75, AvgDocLength: 66.93}
}

// Score computes a single term's BM25 contribution toward a document's
// total score, given the term's frequency f in that document, the
// document's length d, the term's document frequency df across the
// collection, and the collection size n.
func Score(f, d, df, n uint32, p Params) float64 {
	tf := float64(f) * (p.K1 + 1) / (float64(f) + p.K1*(1-p.B+p.B*(float64(d)/p.AvgDocLength)))
	idf := math.Log((float64(n)-float64(df)+0.5)/(float64(df)+0.5) + 1)
	return idf * tf
}
