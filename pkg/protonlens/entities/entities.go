// Package entities groups labelled tokens into named-entity spans.
package entities

import (
	"strings"

	"github.com/cognicore/protonlens/pkg/protonlens/tagger"
)

// Entity is one recognized span.
type Entity struct {
	Text  string `json:"entity"`
	Label string `json:"label"`
}

// Chunk segments tokens into maximal runs sharing one entity label.
//
// Labels follow IOB: "B-X" opens a span of X, "I-X" continues a span of X
// (or opens one if the previous token was not X), "O" and "" close any
// span. Bare labels without a prefix behave like "I-X". Every span is
// emitted in text order; identical spans are not merged.
func Chunk(tokens []tagger.Token) []Entity {
	var (
		out     []Entity
		words   []string
		current string
	)

	flush := func() {
		if len(words) > 0 {
			out = append(out, Entity{Text: strings.Join(words, " "), Label: current})
		}
		words = words[:0]
		current = ""
	}

	for _, tok := range tokens {
		begin, label := parseLabel(tok.Label)
		if label == "" {
			flush()
			continue
		}
		if begin || label != current {
			flush()
			current = label
		}
		words = append(words, tok.Text)
	}
	flush()

	return out
}

// parseLabel splits an IOB label into its begin flag and entity type.
// The outside label yields an empty type.
func parseLabel(raw string) (begin bool, label string) {
	switch {
	case raw == "" || raw == tagger.Outside:
		return false, ""
	case strings.HasPrefix(raw, "B-"):
		return true, raw[2:]
	case strings.HasPrefix(raw, "I-"):
		return false, raw[2:]
	default:
		return false, raw
	}
}
