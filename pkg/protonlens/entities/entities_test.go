package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cognicore/protonlens/pkg/protonlens/tagger"
)

func labelled(pairs ...string) []tagger.Token {
	out := make([]tagger.Token, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, tagger.Token{Text: pairs[i], Tag: "NNP", Label: pairs[i+1]})
	}
	return out
}

func TestChunkContiguousSpan(t *testing.T) {
	toks := labelled(
		"played", "O",
		"steam", "B-ORGANIZATION",
		"deck", "I-ORGANIZATION",
		"today", "O",
	)

	assert.Equal(t, []Entity{{Text: "steam deck", Label: "ORGANIZATION"}}, Chunk(toks))
}

func TestChunkBeginSplitsAdjacentSpans(t *testing.T) {
	toks := labelled(
		"valve", "B-ORGANIZATION",
		"gabe", "B-PERSON",
		"newell", "I-PERSON",
	)

	assert.Equal(t, []Entity{
		{Text: "valve", Label: "ORGANIZATION"},
		{Text: "gabe newell", Label: "PERSON"},
	}, Chunk(toks))
}

func TestChunkLabelChangeWithoutBegin(t *testing.T) {
	toks := labelled(
		"linux", "I-GPE",
		"windows", "I-ORGANIZATION",
	)

	assert.Equal(t, []Entity{
		{Text: "linux", Label: "GPE"},
		{Text: "windows", Label: "ORGANIZATION"},
	}, Chunk(toks))
}

func TestChunkBareLabels(t *testing.T) {
	toks := labelled(
		"new", "GPE",
		"york", "GPE",
		"city", "",
	)

	assert.Equal(t, []Entity{{Text: "new york", Label: "GPE"}}, Chunk(toks))
}

func TestChunkKeepsDuplicates(t *testing.T) {
	toks := labelled(
		"proton", "B-ORGANIZATION",
		"works", "O",
		"proton", "B-ORGANIZATION",
	)

	got := Chunk(toks)
	assert.Len(t, got, 2)
	assert.Equal(t, got[0], got[1])
}

func TestChunkNoEntities(t *testing.T) {
	assert.Empty(t, Chunk(labelled("game", "O", "crashes", "O")))
	assert.Empty(t, Chunk(nil))
}
