package ingest

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// ProseSegmenter splits sentences with the punkt model trained on English
// and words with the prose treebank tokenizer. The punkt model is loaded
// once by NewProseSegmenter; a ProseSegmenter is safe for concurrent use.
type ProseSegmenter struct {
	punkt *sentences.DefaultSentenceTokenizer
}

// NewProseSegmenter loads the English sentence model.
func NewProseSegmenter() (*ProseSegmenter, error) {
	punkt, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence model: %w", err)
	}
	return &ProseSegmenter{punkt: punkt}, nil
}

// Sentences returns the non-blank sentences of text.
func (s *ProseSegmenter) Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, sent := range s.punkt.Tokenize(text) {
		if t := strings.TrimSpace(sent.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Words returns the word and punctuation tokens of text. If tokenization
// fails the text is split on whitespace.
func (s *ProseSegmenter) Words(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return strings.Fields(text)
	}

	toks := doc.Tokens()
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Text
	}
	return out
}

type whitespaceSegmenter struct{}

func (whitespaceSegmenter) Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []string{text}
}

func (whitespaceSegmenter) Words(text string) []string { return strings.Fields(text) }
