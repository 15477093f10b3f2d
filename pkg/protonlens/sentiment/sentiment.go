// Package sentiment scores report text for polarity and classifies it.
package sentiment

import (
	"github.com/jonreiter/govader"
)

// Labels assigned by Classify.
const (
	Positive = "positive"
	Neutral  = "neutral"
	Negative = "negative"
)

// Threshold is the compound-score margin around zero that stays neutral.
const Threshold = 0.05

// Scores holds VADER polarity scores. Compound is in [-1, 1]; the other three
// are proportions in [0, 1] summing to 1.
type Scores struct {
	Compound float64
	Positive float64
	Negative float64
	Neutral  float64
}

// Label classifies the scores.
func (s Scores) Label() string {
	return Classify(s.Compound)
}

// Classify maps a compound score to a label. Scores exactly at ±Threshold
// are neutral.
func Classify(compound float64) string {
	switch {
	case compound > Threshold:
		return Positive
	case compound < -Threshold:
		return Negative
	default:
		return Neutral
	}
}

// Vader scores text with the VADER lexicon and rules. It reads the raw text,
// so casing, punctuation and negation all count.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader builds a scorer over the embedded VADER lexicon.
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Score returns the polarity scores for text.
func (v *Vader) Score(text string) Scores {
	s := v.analyzer.PolarityScores(text)
	return Scores{
		Compound: s.Compound,
		Positive: s.Positive,
		Negative: s.Negative,
		Neutral:  s.Neutral,
	}
}
