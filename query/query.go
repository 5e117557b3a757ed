// Package query tokenizes free-text query input into the terms daat
// evaluates, mirroring the term-splitting rules used when the corpus
// itself was tokenized.
package query

import (
	"strings"
	"unicode"
)

// MaxTerms bounds how many terms a single query contributes; extra terms
// are discarded rather than rejected, since a query is advisory input.
const MaxTerms = 20

// Tokenize splits text on any non-alphanumeric rune, lowercases each
// piece, discards empty pieces, and returns at most MaxTerms terms in
// order of appearance.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(terms) >= MaxTerms {
			break
		}
		terms = append(terms, strings.ToLower(f))
	}
	return terms
}
