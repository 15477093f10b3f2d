package tagger

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Prose tags tokens with the prose averaged-perceptron tagger and entity
// classifier. The model is loaded once and shared read-only.
type Prose struct {
	model *prose.Model
}

// NewProse loads the default prose model.
func NewProse() (*Prose, error) {
	doc, err := prose.NewDocument("load", prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("load tagger model: %w", err)
	}
	if doc.Model == nil {
		return nil, fmt.Errorf("load tagger model: no model")
	}
	return &Prose{model: doc.Model}, nil
}

// Tag returns one Token per input word, in order.
func (p *Prose) Tag(words []string) ([]Token, error) {
	if len(words) == 0 {
		return nil, nil
	}

	doc, err := prose.NewDocument(
		strings.Join(words, " "),
		prose.WithSegmentation(false),
		prose.UsingModel(p.model),
	)
	if err != nil {
		return nil, fmt.Errorf("tag: %w", err)
	}

	toks := doc.Tokens()
	tagged := make([]Token, len(toks))
	for i, tok := range toks {
		tagged[i] = Token{Text: tok.Text, Tag: tok.Tag, Label: tok.Label}
	}
	return align(words, tagged), nil
}

// align maps tagger output back onto the input words. The tagger may split
// a word ("cannot" -> "can", "not"); the word then takes the tag and label
// of its first piece.
func align(words []string, toks []Token) []Token {
	out := make([]Token, len(words))
	j := 0
	for i, w := range words {
		out[i] = Token{Text: w, Label: Outside}
		consumed := 0
		for j < len(toks) && consumed < len(w) {
			if consumed == 0 {
				out[i].Tag = toks[j].Tag
				if toks[j].Label != "" {
					out[i].Label = toks[j].Label
				}
			}
			consumed += len(toks[j].Text)
			j++
		}
	}
	return out
}
