package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	minTokenLen = 2
	maxTokenLen = 64
)

// Tokenize splits s into case-folded, NFC-normalized words. Runs of letters
// and digits form a word; everything else separates. Words shorter than two
// or longer than 64 runes are dropped.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	// cases.Caser is stateful, so each call gets its own.
	folded := cases.Fold().String(norm.NFC.String(s))

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := words[:0]
	for _, w := range words {
		n := len([]rune(w))
		if n < minTokenLen || n > maxTokenLen {
			continue
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
