package cards

import (
	"crypto/rand"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
	"github.com/cognicore/protonlens/pkg/protonlens/collocation"
	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
	"github.com/cognicore/protonlens/pkg/protonlens/sentiment"
)

// Card kinds, in the order Build emits them.
const (
	KindTopics              = "topics"
	KindSentiment           = "sentiment"
	KindPerformanceTerms    = "performance_terms"
	KindPOSBySentiment      = "pos_by_sentiment"
	KindTopWordsBySentiment = "top_words_by_sentiment"
	KindLengthByTopic       = "length_by_topic"
	KindLengthCorrelation   = "length_sentiment_correlation"
	KindTechnicalIssues     = "technical_issues"
	KindCollocations        = "collocations"
	KindGeneral             = "general"
)

// PerformanceTerms are the unigrams reported on the performance card.
var PerformanceTerms = []string{"fps", "performance", "smooth", "lag", "stutter", "slow", "fast", "run"}

// TechnicalPhrases select bigrams for the technical issues card by
// substring match.
var TechnicalPhrases = []string{
	"not working", "doesn work", "cant run", "black screen",
	"crash game", "game crash", "no sound", "proton ge",
}

const (
	topWordsPerSentiment = 5
	maxTechnicalIssues   = 10
	maxCollocations      = 10
	minCollocationCount  = 2
)

// Builder constructs explainable summary cards
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates a new card builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Card is one section of a run summary. Metrics carries the numbers behind
// the bullets.
type Card struct {
	ID      string             `json:"id"`
	Kind    string             `json:"kind"`
	Title   string             `json:"title"`
	Bullets []string           `json:"bullets"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func (b *Builder) newCard(kind, title string) Card {
	b.mu.Lock()
	id := ulid.MustNew(ulid.Now(), b.entropy).String()
	b.mu.Unlock()
	return Card{ID: id, Kind: kind, Title: title, Bullets: []string{}, Metrics: map[string]float64{}}
}

// Build summarizes a run's notes and frequency tables.
func (b *Builder) Build(notes []ingest.Note, unigrams, bigrams []analytics.Entry) []Card {
	return []Card{
		b.topics(notes),
		b.sentiment(notes),
		b.performanceTerms(unigrams),
		b.posBySentiment(notes),
		b.topWordsBySentiment(notes),
		b.lengthByTopic(notes),
		b.lengthCorrelation(notes),
		b.technicalIssues(bigrams),
		b.collocations(unigrams, bigrams),
		b.general(notes),
	}
}

func (b *Builder) topics(notes []ingest.Note) Card {
	card := b.newCard(KindTopics, "Distribution of issue categories")
	for _, vc := range valueCounts(notes, func(n ingest.Note) string { return n.TopicCategory }) {
		card.Bullets = append(card.Bullets, fmt.Sprintf("%s: %d reports (%.1f%%)", vc.value, vc.count, percent(vc.count, len(notes))))
		card.Metrics[vc.value] = float64(vc.count)
	}
	return card
}

func (b *Builder) sentiment(notes []ingest.Note) Card {
	card := b.newCard(KindSentiment, "User sentiment")
	for _, vc := range valueCounts(notes, func(n ingest.Note) string { return n.Sentiment }) {
		card.Bullets = append(card.Bullets, fmt.Sprintf("%s: %d reports (%.1f%%)", vc.value, vc.count, percent(vc.count, len(notes))))
		card.Metrics[vc.value] = float64(vc.count)
	}
	if len(notes) > 0 {
		mean := stat.Mean(column(notes, func(n ingest.Note) float64 { return n.CompoundScore }), nil)
		card.Bullets = append(card.Bullets, fmt.Sprintf("overall sentiment score: %.3f", mean))
		card.Metrics["mean_compound"] = mean
	}
	return card
}

func (b *Builder) performanceTerms(unigrams []analytics.Entry) Card {
	card := b.newCard(KindPerformanceTerms, "Performance-related terms")
	wanted := make(map[string]struct{}, len(PerformanceTerms))
	for _, w := range PerformanceTerms {
		wanted[w] = struct{}{}
	}

	var hits []analytics.Entry
	for _, e := range unigrams {
		if _, ok := wanted[e.Text()]; ok {
			hits = append(hits, e)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Frequency > hits[j].Frequency })
	for _, e := range hits {
		card.Bullets = append(card.Bullets, fmt.Sprintf("%q mentioned %d times", e.Text(), e.Frequency))
		card.Metrics[e.Text()] = float64(e.Frequency)
	}
	return card
}

func (b *Builder) posBySentiment(notes []ingest.Note) Card {
	card := b.newCard(KindPOSBySentiment, "Language usage by sentiment")
	groups := groupBy(notes, func(n ingest.Note) string { return n.Sentiment })
	for _, label := range sortedKeys(groups) {
		g := groups[label]
		nouns := stat.Mean(column(g, func(n ingest.Note) float64 { return float64(n.NounCount) }), nil)
		verbs := stat.Mean(column(g, func(n ingest.Note) float64 { return float64(n.VerbCount) }), nil)
		adjs := stat.Mean(column(g, func(n ingest.Note) float64 { return float64(n.AdjectiveCount) }), nil)
		advs := stat.Mean(column(g, func(n ingest.Note) float64 { return float64(n.AdverbCount) }), nil)

		card.Bullets = append(card.Bullets, fmt.Sprintf("%s: nouns %.1f, verbs %.1f, adjectives %.1f, adverbs %.1f",
			label, nouns, verbs, adjs, advs))
		card.Metrics[label+".nouns"] = nouns
		card.Metrics[label+".verbs"] = verbs
		card.Metrics[label+".adjectives"] = adjs
		card.Metrics[label+".adverbs"] = advs
	}
	return card
}

func (b *Builder) topWordsBySentiment(notes []ingest.Note) Card {
	card := b.newCard(KindTopWordsBySentiment, "Most common words by sentiment")
	for _, label := range []string{sentiment.Positive, sentiment.Negative, sentiment.Neutral} {
		table := analytics.NewTable(1)
		for _, n := range notes {
			if n.Sentiment == label {
				table.Add(n.CleanTokens())
			}
		}

		top := analytics.Top(table.Sorted(), topWordsPerSentiment)
		words := make([]string, len(top))
		for i, e := range top {
			words[i] = fmt.Sprintf("%s (%d)", e.Text(), e.Frequency)
			card.Metrics[label+"."+e.Text()] = float64(e.Frequency)
		}
		if len(words) == 0 {
			words = []string{"none"}
		}
		card.Bullets = append(card.Bullets, label+": "+strings.Join(words, ", "))
	}
	return card
}

func (b *Builder) lengthByTopic(notes []ingest.Note) Card {
	card := b.newCard(KindLengthByTopic, "Review length by category")
	groups := groupBy(notes, func(n ingest.Note) string { return n.TopicCategory })
	for _, topic := range sortedKeys(groups) {
		counts := column(groups[topic], func(n ingest.Note) float64 { return float64(n.WordCount) })
		mean := stat.Mean(counts, nil)
		lo, hi := counts[0], counts[0]
		for _, c := range counts[1:] {
			lo = math.Min(lo, c)
			hi = math.Max(hi, c)
		}

		card.Bullets = append(card.Bullets, fmt.Sprintf("%s: average %.1f words, range %d to %d",
			topic, mean, int(lo), int(hi)))
		card.Metrics[topic+".mean"] = mean
		card.Metrics[topic+".min"] = lo
		card.Metrics[topic+".max"] = hi
	}
	return card
}

func (b *Builder) lengthCorrelation(notes []ingest.Note) Card {
	card := b.newCard(KindLengthCorrelation, "Sentiment and review length correlation")
	r := Correlation(notes)
	if math.IsNaN(r) {
		card.Bullets = append(card.Bullets, "not enough variation to correlate")
		return card
	}
	card.Bullets = append(card.Bullets, fmt.Sprintf("correlation coefficient: %.3f", r))
	card.Metrics["pearson"] = r
	return card
}

// Correlation is the Pearson correlation of word count against compound
// score. It is NaN for fewer than two notes or a constant column.
func Correlation(notes []ingest.Note) float64 {
	if len(notes) < 2 {
		return math.NaN()
	}
	x := column(notes, func(n ingest.Note) float64 { return float64(n.WordCount) })
	y := column(notes, func(n ingest.Note) float64 { return n.CompoundScore })
	if constant(x) || constant(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

func (b *Builder) technicalIssues(bigrams []analytics.Entry) Card {
	card := b.newCard(KindTechnicalIssues, "Most reported technical issues")
	for _, e := range bigrams {
		if len(card.Bullets) == maxTechnicalIssues {
			break
		}
		text := strings.ToLower(e.Text())
		for _, phrase := range TechnicalPhrases {
			if strings.Contains(text, phrase) {
				card.Bullets = append(card.Bullets, fmt.Sprintf("%q reported %d times", e.Text(), e.Frequency))
				card.Metrics[e.Text()] = float64(e.Frequency)
				break
			}
		}
	}
	return card
}

func (b *Builder) collocations(unigrams, bigrams []analytics.Entry) Card {
	card := b.newCard(KindCollocations, "Word pairs that stick together")
	scorer := collocation.NewScorer(1, minCollocationCount)
	for _, c := range scorer.Rank(unigrams, bigrams, maxCollocations) {
		text := strings.Join(c.Gram, " ")
		card.Bullets = append(card.Bullets, fmt.Sprintf("%q npmi %.2f over %d mentions", text, c.NPMI, c.Frequency))
		card.Metrics[text] = c.NPMI
	}
	return card
}

func (b *Builder) general(notes []ingest.Note) Card {
	card := b.newCard(KindGeneral, "General statistics")
	card.Metrics["notes"] = float64(len(notes))
	card.Bullets = append(card.Bullets, fmt.Sprintf("reviews analyzed: %d", len(notes)))
	if len(notes) == 0 {
		return card
	}

	words := stat.Mean(column(notes, func(n ingest.Note) float64 { return float64(n.WordCount) }), nil)
	sents := stat.Mean(column(notes, func(n ingest.Note) float64 { return float64(n.SentenceCount) }), nil)
	diversity := stat.Mean(column(notes, func(n ingest.Note) float64 { return n.LexicalDiversity }), nil)

	card.Bullets = append(card.Bullets,
		fmt.Sprintf("average words per review: %.1f", words),
		fmt.Sprintf("average sentences per review: %.1f", sents),
		fmt.Sprintf("average lexical diversity: %.3f", diversity),
	)
	card.Metrics["mean_words"] = words
	card.Metrics["mean_sentences"] = sents
	card.Metrics["mean_lexical_diversity"] = diversity
	return card
}

// Render writes cards as plain text sections.
func Render(w io.Writer, cards []Card) error {
	for i, c := range cards {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%d. %s\n%s\n", i+1, strings.ToUpper(c.Title), strings.Repeat("-", 50)); err != nil {
			return err
		}
		for _, bullet := range c.Bullets {
			if _, err := fmt.Fprintf(w, "- %s\n", bullet); err != nil {
				return err
			}
		}
	}
	return nil
}

type valueCount struct {
	value string
	count int
}

// valueCounts counts distinct values, most frequent first, ties in
// first-seen order.
func valueCounts(notes []ingest.Note, key func(ingest.Note) string) []valueCount {
	index := make(map[string]int)
	var out []valueCount
	for _, n := range notes {
		k := key(n)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, valueCount{value: k})
		}
		out[i].count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].count > out[j].count })
	return out
}

func groupBy(notes []ingest.Note, key func(ingest.Note) string) map[string][]ingest.Note {
	groups := make(map[string][]ingest.Note)
	for _, n := range notes {
		k := key(n)
		groups[k] = append(groups[k], n)
	}
	return groups
}

func sortedKeys(m map[string][]ingest.Note) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func column(notes []ingest.Note, f func(ingest.Note) float64) []float64 {
	out := make([]float64, len(notes))
	for i, n := range notes {
		out[i] = f(n)
	}
	return out
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
