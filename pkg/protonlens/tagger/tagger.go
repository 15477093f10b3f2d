// Package tagger assigns Penn Treebank part-of-speech tags and IOB entity
// labels to cleaned tokens and aggregates the coarse counts stored on a note.
package tagger

// Outside is the IOB label for tokens that belong to no entity.
const Outside = "O"

// Token is one cleaned token with its tag and entity label.
type Token struct {
	Text  string
	Tag   string // Penn Treebank tag, e.g. NN, VBD
	Label string // IOB label, e.g. B-GPE, I-GPE, O
}

// Counts holds the four coarse part-of-speech totals.
//
// Only NN, NNS, VB, VBD, VBG, JJ and RB are counted. Every other tag
// (determiners, plural proper nouns, VBZ, comparatives, ...) is left out of
// all four totals.
type Counts struct {
	Nouns      int
	Verbs      int
	Adjectives int
	Adverbs    int
}

// Total returns the sum of the four totals.
func (c Counts) Total() int {
	return c.Nouns + c.Verbs + c.Adjectives + c.Adverbs
}

// Count aggregates tags into coarse totals.
func Count(tokens []Token) Counts {
	var c Counts
	for _, tok := range tokens {
		switch tok.Tag {
		case "NN", "NNS":
			c.Nouns++
		case "VB", "VBD", "VBG":
			c.Verbs++
		case "JJ":
			c.Adjectives++
		case "RB":
			c.Adverbs++
		}
	}
	return c
}
