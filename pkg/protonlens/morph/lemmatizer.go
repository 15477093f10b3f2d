package morph

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"

	"github.com/cognicore/protonlens/pkg/protonlens/lexicon"
)

// Dictionary reports whether a word form is known.
// *golem.Lemmatizer satisfies it.
type Dictionary interface {
	InDict(word string) bool
}

// nounSuffixes are the detachment rules applied when no part of speech is
// supplied; lemmatization assumes nouns.
var nounSuffixes = []struct {
	from, to string
}{
	{"s", ""},
	{"ses", "s"},
	{"ves", "f"},
	{"xes", "x"},
	{"zes", "z"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"men", "man"},
	{"ies", "y"},
}

// Lemmatizer reduces tokens to a dictionary base form, assuming nouns.
type Lemmatizer struct {
	dict       Dictionary
	exceptions *lexicon.Lexicon
}

// NewLemmatizer builds a lemmatizer over the given dictionary. exceptions
// may be nil.
func NewLemmatizer(dict Dictionary, exceptions *lexicon.Lexicon) *Lemmatizer {
	return &Lemmatizer{dict: dict, exceptions: exceptions}
}

// NewEnglishDictionary loads the golem English word list.
func NewEnglishDictionary() (*golem.Lemmatizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english dictionary: %w", err)
	}
	return lem, nil
}

// Lemmatize returns the shortest known base form of word, or word itself
// when nothing applies.
//
// Irregular forms listed in the exception lexicon resolve to their bases.
// Otherwise the word and each suffix substitution are kept when the
// dictionary knows them.
//
// Examples:
//   - Lemmatize("crashes") -> "crash"
//   - Lemmatize("mice") -> "mouse" (exception)
//   - Lemmatize("fps") -> "fps" (unknown)
func (l *Lemmatizer) Lemmatize(word string) string {
	if word == "" {
		return word
	}

	var candidates []string
	if bases, ok := l.exceptionBases(word); ok {
		candidates = append(candidates, bases...)
	} else {
		if l.dict.InDict(word) {
			candidates = append(candidates, word)
		}
		for _, rule := range nounSuffixes {
			if !strings.HasSuffix(word, rule.from) {
				continue
			}
			form := strings.TrimSuffix(word, rule.from) + rule.to
			if form == "" || form == word {
				continue
			}
			if l.dict.InDict(form) {
				candidates = append(candidates, form)
			}
		}
	}

	if len(candidates) == 0 {
		return word
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if utf8.RuneCountInString(c) < utf8.RuneCountInString(best) {
			best = c
		}
	}
	return best
}

// LemmatizeAll reduces every token, preserving order and length.
func (l *Lemmatizer) LemmatizeAll(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = l.Lemmatize(token)
	}
	return r
}

func (l *Lemmatizer) exceptionBases(word string) ([]string, bool) {
	if l.exceptions == nil {
		return nil, false
	}
	return l.exceptions.Bases(word)
}
