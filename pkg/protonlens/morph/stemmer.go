// Package morph implements the two independent token reductions of a note:
// affix-stripping stems and dictionary-checked lemmas.
package morph

import (
	snowballeng "github.com/kljensen/snowball/english"
)

// Stemmer reduces tokens with the Snowball English stemmer. Output may not be
// a dictionary word ("frustrating" -> "frustrat").
type Stemmer struct{}

// NewStemmer returns an English stemmer.
func NewStemmer() *Stemmer {
	return &Stemmer{}
}

// Stem reduces one token.
func (s *Stemmer) Stem(token string) string {
	return snowballeng.Stem(token, false)
}

// StemAll reduces every token, preserving order and length.
func (s *Stemmer) StemAll(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = s.Stem(token)
	}
	return r
}
