// Package export writes analyzed notes and frequency tables as CSV files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
)

// NoteColumns is the header of the notes file.
var NoteColumns = []string{
	"app_id", "note_text", "word_count", "char_count", "sentence_count",
	"avg_word_length", "lexical_diversity", "tokens", "stemmed_tokens",
	"lemmatized_tokens", "noun_count", "verb_count", "adjective_count",
	"adverb_count", "entities", "sentiment", "compound_score",
	"positive_score", "negative_score", "neutral_score", "topic_category",
}

// Tables is the content of one export.
type Tables struct {
	Notes    []ingest.Note
	Unigrams []analytics.Entry
	Bigrams  []analytics.Entry
	Trigrams []analytics.Entry
}

// WriteCSV writes four files into dir, creating it if needed:
// protondb_notes, protondb_word_freq, protondb_bigram_freq and
// protondb_trigram_freq, each suffixed with "_"+suffix when suffix is set.
// It returns the paths written.
func WriteCSV(dir, suffix string, t Tables) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	name := func(base string) string {
		if suffix != "" {
			base += "_" + suffix
		}
		return filepath.Join(dir, base+".csv")
	}

	files := []struct {
		path string
		rows func(w *csv.Writer) error
	}{
		{name("protondb_notes"), func(w *csv.Writer) error { return writeNotes(w, t.Notes) }},
		{name("protondb_word_freq"), func(w *csv.Writer) error { return writeEntries(w, "word", t.Unigrams) }},
		{name("protondb_bigram_freq"), func(w *csv.Writer) error { return writeEntries(w, "bigram", t.Bigrams) }},
		{name("protondb_trigram_freq"), func(w *csv.Writer) error { return writeEntries(w, "trigram", t.Trigrams) }},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		if err := writeFile(f.path, f.rows); err != nil {
			return paths, err
		}
		paths = append(paths, f.path)
	}
	return paths, nil
}

func writeFile(path string, rows func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := rows(w); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeNotes(w *csv.Writer, notes []ingest.Note) error {
	if err := w.Write(NoteColumns); err != nil {
		return err
	}
	for _, n := range notes {
		ents, err := json.Marshal(n.Entities)
		if err != nil {
			return err
		}
		record := []string{
			string(n.AppID), n.Text,
			strconv.Itoa(n.WordCount), strconv.Itoa(n.CharCount), strconv.Itoa(n.SentenceCount),
			formatFloat(n.AvgWordLength), formatFloat(n.LexicalDiversity),
			n.Tokens, n.StemmedTokens, n.LemmatizedTokens,
			strconv.Itoa(n.NounCount), strconv.Itoa(n.VerbCount),
			strconv.Itoa(n.AdjectiveCount), strconv.Itoa(n.AdverbCount),
			string(ents), n.Sentiment,
			formatFloat(n.CompoundScore), formatFloat(n.PositiveScore),
			formatFloat(n.NegativeScore), formatFloat(n.NeutralScore),
			n.TopicCategory,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeEntries(w *csv.Writer, column string, entries []analytics.Entry) error {
	if err := w.Write([]string{column, "frequency"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.Write([]string{e.Text(), strconv.FormatInt(e.Frequency, 10)}); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
