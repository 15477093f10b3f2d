package ingest

import (
	"errors"
	"strings"

	"github.com/cognicore/protonlens/pkg/protonlens/sentiment"
	"github.com/cognicore/protonlens/pkg/protonlens/tagger"
)

// fieldSegmenter splits on whitespace and detaches trailing punctuation.
type fieldSegmenter struct{}

func (fieldSegmenter) Sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func (fieldSegmenter) Words(text string) []string {
	var out []string
	for _, f := range strings.Fields(text) {
		word := strings.TrimRight(f, ".,!?;:")
		if word != "" {
			out = append(out, word)
		}
		if punct := f[len(word):]; punct != "" {
			out = append(out, punct)
		}
	}
	return out
}

type suffixStemmer struct{}

func (suffixStemmer) StemAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = strings.TrimSuffix(t, "s")
	}
	return out
}

type mapLemmatizer map[string]string

func (m mapLemmatizer) LemmatizeAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		if base, ok := m[t]; ok {
			out[i] = base
		} else {
			out[i] = t
		}
	}
	return out
}

type mapTagger struct {
	tags   map[string]string
	labels map[string]string
	err    error
}

func (m mapTagger) Tag(tokens []string) ([]tagger.Token, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]tagger.Token, len(tokens))
	for i, t := range tokens {
		tag, ok := m.tags[t]
		if !ok {
			tag = "NN"
		}
		label, ok := m.labels[t]
		if !ok {
			label = tagger.Outside
		}
		out[i] = tagger.Token{Text: t, Tag: tag, Label: label}
	}
	return out, nil
}

type fixedScorer sentiment.Scores

func (f fixedScorer) Score(string) sentiment.Scores { return sentiment.Scores(f) }

var errTagger = errors.New("tagger failed")

func testResources(stops ...string) Resources {
	return Resources{
		Tokenizer:  NewTokenizer(stoplistOf(stops...), fieldSegmenter{}),
		Stemmer:    suffixStemmer{},
		Lemmatizer: mapLemmatizer{"crashes": "crash", "runs": "run"},
		Tagger: mapTagger{
			tags: map[string]string{"crashes": "VBZ", "runs": "VBZ", "smooth": "JJ"},
		},
		Scorer:   fixedScorer{Compound: -0.6, Negative: 0.5, Neutral: 0.5},
		Taxonomy: NewDefaultTaxonomy(),
	}
}
