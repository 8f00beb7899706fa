// Package lexical provides a BM25 index over the document set.
package lexical

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransformer strips combining marks so accented and unaccented spellings
// tokenize identically ("café" -> "cafe").
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Tokenize lower-cases text, folds diacritics, and splits on runs of
// non-alphanumeric characters, dropping empty tokens.
func Tokenize(text string) []string {
	folded, _, err := transform.String(foldTransformer, text)
	if err != nil {
		folded = text
	}
	lowered := strings.ToLower(folded)
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
