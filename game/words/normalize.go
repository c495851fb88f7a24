package words

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, strips diacritics and collapses whitespace so that
// "  Crème Brûlée " and "creme brulee" compare equal.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Matches reports whether guess names word.
func Matches(guess, word string) bool {
	g := Normalize(guess)
	return g != "" && g == Normalize(word)
}

// Contains reports whether text mentions word as a whole phrase.
func Contains(text, word string) bool {
	w := Normalize(word)
	return w != "" && strings.Contains(" "+Normalize(text)+" ", " "+w+" ")
}
