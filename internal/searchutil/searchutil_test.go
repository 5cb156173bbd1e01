package searchutil

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"":                    "",
		"  Dune, Part Two!  ": "dune part two",
		"rating:4":            "rating_4",
		"⭐⭐⭐ quality":         "quality",
		"Sci-Fi / Fantasy":    "sci fi fantasy",
	}
	for input, want := range tests {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTokenizeNormalized(t *testing.T) {
	got := TokenizeNormalized("dune rating_4 dune _ 4")
	want := []string{"dune", "rating_4", "4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected tokens: got %v want %v", got, want)
	}
	if TokenizeNormalized("   ") != nil {
		t.Fatalf("expected nil tokens for blank input")
	}
}
