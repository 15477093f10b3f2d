package ingest

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cognicore/protonlens/pkg/protonlens/stoplist"
)

// Segmenter splits text into sentences and word tokens.
type Segmenter interface {
	Sentences(text string) []string
	Words(text string) []string
}

// Tokenizer handles segmentation, case folding and token filtering
type Tokenizer struct {
	stops     *stoplist.Manager
	segmenter Segmenter
}

// NewTokenizer creates a tokenizer with the given stoplist and segmenter.
// A nil segmenter splits on whitespace and treats the text as one sentence.
func NewTokenizer(stops *stoplist.Manager, segmenter Segmenter) *Tokenizer {
	if segmenter == nil {
		segmenter = whitespaceSegmenter{}
	}
	if stops == nil {
		stops = stoplist.NewManager(nil)
	}
	return &Tokenizer{stops: stops, segmenter: segmenter}
}

// Normalized is the normalizer output for one text.
type Normalized struct {
	Sentences int      // sentence count of the original text
	Words     []string // lowercase word tokens, unfiltered
	Tokens    []string // cleaned tokens: alphabetic, not stopwords
}

// Normalize segments text into sentences, lowercases and word-tokenizes it,
// then keeps only alphabetic non-stopword tokens in text order.
func (t *Tokenizer) Normalize(text string) Normalized {
	lower := cases.Lower(language.Und).String(text)
	words := t.segmenter.Words(lower)
	return Normalized{
		Sentences: len(t.segmenter.Sentences(text)),
		Words:     words,
		Tokens:    t.Filter(words),
	}
}

// Tokenize returns only the cleaned tokens of text.
func (t *Tokenizer) Tokenize(text string) []string {
	return t.Normalize(text).Tokens
}

// Filter keeps tokens made only of letters that are not stopwords.
func (t *Tokenizer) Filter(words []string) []string {
	var tokens []string
	for _, w := range words {
		if !isAlpha(w) || t.stops.IsStop(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// isAlpha reports whether s is non-empty and every rune is a letter.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
