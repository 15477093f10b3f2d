package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/protonlens/pkg/protonlens/entities"
	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
	"github.com/cognicore/protonlens/pkg/protonlens/sentiment"
	"github.com/cognicore/protonlens/pkg/protonlens/tagger"
)

// Stemmer strips affixes from tokens.
type Stemmer interface {
	StemAll(tokens []string) []string
}

// Lemmatizer reduces tokens to dictionary base forms.
type Lemmatizer interface {
	LemmatizeAll(tokens []string) []string
}

// Tagger assigns a part-of-speech tag and entity label to each token.
type Tagger interface {
	Tag(tokens []string) ([]tagger.Token, error)
}

// Scorer scores raw text for sentiment.
type Scorer interface {
	Score(text string) sentiment.Scores
}

// Resources are the linguistic components shared read-only by every
// document in a batch.
type Resources struct {
	Tokenizer  *Tokenizer
	Stemmer    Stemmer
	Lemmatizer Lemmatizer
	Tagger     Tagger
	Scorer     Scorer
	Taxonomy   *Taxonomy
}

// Validate reports the first missing resource.
func (r Resources) Validate() error {
	switch {
	case r.Tokenizer == nil:
		return fmt.Errorf("tokenizer: %w", internalerr.ErrMissingResource)
	case r.Stemmer == nil:
		return fmt.Errorf("stemmer: %w", internalerr.ErrMissingResource)
	case r.Lemmatizer == nil:
		return fmt.Errorf("lemmatizer: %w", internalerr.ErrMissingResource)
	case r.Tagger == nil:
		return fmt.Errorf("tagger: %w", internalerr.ErrMissingResource)
	case r.Scorer == nil:
		return fmt.Errorf("sentiment scorer: %w", internalerr.ErrMissingResource)
	case r.Taxonomy == nil:
		return fmt.Errorf("taxonomy: %w", internalerr.ErrMissingResource)
	}
	return nil
}

// Note is the analyzed record for one report.
type Note struct {
	AppID            AppID             `json:"app_id"`
	Text             string            `json:"note_text"`
	WordCount        int               `json:"word_count"`
	CharCount        int               `json:"char_count"`
	SentenceCount    int               `json:"sentence_count"`
	AvgWordLength    float64           `json:"avg_word_length"`
	LexicalDiversity float64           `json:"lexical_diversity"`
	Tokens           string            `json:"tokens"`
	StemmedTokens    string            `json:"stemmed_tokens"`
	LemmatizedTokens string            `json:"lemmatized_tokens"`
	NounCount        int               `json:"noun_count"`
	VerbCount        int               `json:"verb_count"`
	AdjectiveCount   int               `json:"adjective_count"`
	AdverbCount      int               `json:"adverb_count"`
	Entities         []entities.Entity `json:"entities"`
	Sentiment        string            `json:"sentiment"`
	CompoundScore    float64           `json:"compound_score"`
	PositiveScore    float64           `json:"positive_score"`
	NegativeScore    float64           `json:"negative_score"`
	NeutralScore     float64           `json:"neutral_score"`
	TopicCategory    string            `json:"topic_category"`
}

// CleanTokens returns the cleaned token sequence of the note.
func (n Note) CleanTokens() []string {
	return strings.Fields(n.Tokens)
}

// Topics returns the topic labels of the note.
func (n Note) Topics() []string {
	return SplitCategory(n.TopicCategory)
}

// Pipeline turns one report into one Note.
type Pipeline struct {
	res Resources
}

// NewPipeline creates a pipeline over validated resources.
func NewPipeline(res Resources) (*Pipeline, error) {
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{res: res}, nil
}

// Process analyzes a report. A zero Note and a non-Accepted reason mean the
// report was skipped.
func (p *Pipeline) Process(appID AppID, report *Report) (Note, SkipReason) {
	text, reason := NoteText(report)
	if reason != Accepted {
		return Note{}, reason
	}
	note, reason := p.ProcessText(text)
	if reason != Accepted {
		return Note{}, reason
	}
	note.AppID = appID
	return note, Accepted
}

// ProcessText analyzes already-trimmed text.
func (p *Pipeline) ProcessText(text string) (Note, SkipReason) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Note{}, SkipBlankNotes
	}

	norm := p.res.Tokenizer.Normalize(text)
	tokens := norm.Tokens
	if len(tokens) == 0 {
		return Note{}, SkipNoTokens
	}

	stems := p.res.Stemmer.StemAll(tokens)
	lemmas := p.res.Lemmatizer.LemmatizeAll(tokens)

	tagged, err := p.res.Tagger.Tag(tokens)
	if err != nil {
		return Note{}, SkipAnalysisFailed
	}
	pos := tagger.Count(tagged)
	ents := entities.Chunk(tagged)
	if ents == nil {
		ents = []entities.Entity{}
	}

	scores := p.res.Scorer.Score(text)

	return Note{
		Text:             text,
		WordCount:        len(tokens),
		CharCount:        utf8.RuneCountInString(text),
		SentenceCount:    norm.Sentences,
		AvgWordLength:    AvgWordLength(tokens),
		LexicalDiversity: LexicalDiversity(tokens),
		Tokens:           strings.Join(tokens, " "),
		StemmedTokens:    strings.Join(stems, " "),
		LemmatizedTokens: strings.Join(lemmas, " "),
		NounCount:        pos.Nouns,
		VerbCount:        pos.Verbs,
		AdjectiveCount:   pos.Adjectives,
		AdverbCount:      pos.Adverbs,
		Entities:         ents,
		Sentiment:        scores.Label(),
		CompoundScore:    scores.Compound,
		PositiveScore:    scores.Positive,
		NegativeScore:    scores.Negative,
		NeutralScore:     scores.Neutral,
		TopicCategory:    p.res.Taxonomy.Category(tokens, lemmas),
	}, Accepted
}

// AvgWordLength is the mean rune length of tokens, or 0 for none.
func AvgWordLength(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	total := 0
	for _, tok := range tokens {
		total += utf8.RuneCountInString(tok)
	}
	return float64(total) / float64(len(tokens))
}

// LexicalDiversity is the ratio of distinct to total tokens, or 0 for none.
func LexicalDiversity(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	distinct := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		distinct[tok] = struct{}{}
	}
	return float64(len(distinct)) / float64(len(tokens))
}
