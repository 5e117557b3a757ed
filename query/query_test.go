package query_test

import (
	"reflect"
	"testing"

	"github.com/jbraha/invidx/query"
)

func TestTokenizeSplitsAndLowercases(t *testing.T) {
	got := query.Tokenize("The Quick-Brown Fox, jumps!")
	want := []string{"the", "quick", "brown", "fox", "jumps"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeDiscardsEmpties(t *testing.T) {
	got := query.Tokenize("  ...  a   b  ")
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenizeCapsAtMaxTerms(t *testing.T) {
	in := ""
	for i := 0; i < query.MaxTerms+10; i++ {
		in += "w "
	}
	got := query.Tokenize(in)
	if len(got) != query.MaxTerms {
		t.Fatalf("got %d terms, want %d", len(got), query.MaxTerms)
	}
}

func TestTokenizeEmptyInput(t *testing.T) {
	got := query.Tokenize("")
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}

func TestTokenizeAlphanumeric(t *testing.T) {
	got := query.Tokenize("x1 y2z")
	want := []string{"x1", "y2z"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
