// Package storetest holds behaviour checks every store.Store must pass.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
	"github.com/cognicore/protonlens/pkg/protonlens/entities"
	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
	"github.com/cognicore/protonlens/pkg/protonlens/store"
)

// Run exercises st. open must return an empty store.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("Runs", func(t *testing.T) { testRuns(t, open(t)) })
	t.Run("Notes", func(t *testing.T) { testNotes(t, open(t)) })
	t.Run("Frequencies", func(t *testing.T) { testFrequencies(t, open(t)) })
	t.Run("UnknownRun", func(t *testing.T) { testUnknownRun(t, open(t)) })
	t.Run("SaveRun", func(t *testing.T) { testSaveRun(t, open(t)) })
	t.Run("SaveRunInvalid", func(t *testing.T) { testSaveRunInvalid(t, open(t)) })
}

// SampleNotes returns two notes covering every column.
func SampleNotes() []ingest.Note {
	return []ingest.Note{
		{
			AppID:            "570",
			Text:             "The game crashes constantly, very frustrating.",
			WordCount:        4,
			CharCount:        46,
			SentenceCount:    1,
			AvgWordLength:    8.25,
			LexicalDiversity: 1,
			Tokens:           "game crashes constantly frustrating",
			StemmedTokens:    "game crash constant frustrat",
			LemmatizedTokens: "game crash constantly frustrating",
			NounCount:        1,
			VerbCount:        1,
			AdverbCount:      1,
			Entities:         []entities.Entity{},
			Sentiment:        "negative",
			CompoundScore:    -0.5256,
			NegativeScore:    0.383,
			NeutralScore:     0.617,
			TopicCategory:    "bugs",
		},
		{
			AppID:            "1091500",
			Text:             "Runs smooth on Steam Deck",
			WordCount:        4,
			CharCount:        25,
			SentenceCount:    1,
			AvgWordLength:    4.5,
			LexicalDiversity: 1,
			Tokens:           "runs smooth steam deck",
			StemmedTokens:    "run smooth steam deck",
			LemmatizedTokens: "run smooth steam deck",
			NounCount:        2,
			AdjectiveCount:   1,
			Entities:         []entities.Entity{{Text: "steam deck", Label: "GPE"}},
			Sentiment:        "neutral",
			NeutralScore:     1,
			TopicCategory:    "performance",
		},
	}
}

func testRuns(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	if _, err := st.LatestRun(ctx); !errors.Is(err, internalerr.ErrNotFound) {
		t.Fatalf("LatestRun on empty store: err = %v, want ErrNotFound", err)
	}

	first, err := st.CreateRun(ctx, store.Run{Games: 2, Reports: 5, Notes: 3, Skipped: 2})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("CreateRun should assign id and time: %+v", first)
	}
	second, err := st.CreateRun(ctx, store.Run{Games: 1})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	latest, err := st.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("LatestRun = %s, want %s", latest.ID, second.ID)
	}

	got, err := st.GetRun(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Games != 2 || got.Reports != 5 || got.Notes != 3 || got.Skipped != 2 {
		t.Errorf("GetRun counts = %+v", got)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, first.CreatedAt)
	}

	if _, err := st.GetRun(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("GetRun(missing): err = %v, want ErrNotFound", err)
	}
}

func testNotes(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	run, err := st.CreateRun(ctx, store.Run{CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	notes := SampleNotes()
	if err := st.SaveNotes(ctx, run.ID, notes); err != nil {
		t.Fatalf("SaveNotes: %v", err)
	}

	got, err := st.Notes(ctx, run.ID)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if !reflect.DeepEqual(got, notes) {
		t.Errorf("Notes mismatch:\n got  %+v\n want %+v", got, notes)
	}

	// Saving again replaces.
	if err := st.SaveNotes(ctx, run.ID, notes[:1]); err != nil {
		t.Fatalf("SaveNotes: %v", err)
	}
	got, err = st.Notes(ctx, run.ID)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 note after replace, got %d", len(got))
	}
}

func testFrequencies(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	run, err := st.CreateRun(ctx, store.Run{})
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	bigrams := []analytics.Entry{
		{Gram: []string{"black", "screen"}, Frequency: 7},
		{Gram: []string{"proton", "ge"}, Frequency: 3},
		{Gram: []string{"game", "crash"}, Frequency: 3},
	}
	if err := st.SaveFrequencies(ctx, run.ID, store.KindBigram, bigrams); err != nil {
		t.Fatalf("SaveFrequencies: %v", err)
	}

	got, err := st.Frequencies(ctx, run.ID, store.KindBigram, 0)
	if err != nil {
		t.Fatalf("Frequencies: %v", err)
	}
	if !reflect.DeepEqual(got, bigrams) {
		t.Errorf("Frequencies = %v, want %v", got, bigrams)
	}

	top, err := st.Frequencies(ctx, run.ID, store.KindBigram, 2)
	if err != nil {
		t.Fatalf("Frequencies: %v", err)
	}
	if !reflect.DeepEqual(top, bigrams[:2]) {
		t.Errorf("limited Frequencies = %v", top)
	}

	words, err := st.Frequencies(ctx, run.ID, store.KindWord, 0)
	if err != nil {
		t.Fatalf("Frequencies(word): %v", err)
	}
	if len(words) != 0 {
		t.Errorf("unsaved table should be empty, got %v", words)
	}

	wrong := []analytics.Entry{{Gram: []string{"solo"}, Frequency: 1}}
	if err := st.SaveFrequencies(ctx, run.ID, store.KindTrigram, wrong); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("gram length mismatch: err = %v, want ErrInvalidInput", err)
	}
	if _, err := st.Frequencies(ctx, run.ID, store.Kind("fourgram"), 0); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("unknown kind: err = %v, want ErrInvalidInput", err)
	}
}

func testUnknownRun(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	if err := st.SaveNotes(ctx, "missing", SampleNotes()); err == nil {
		t.Error("SaveNotes for an unknown run should fail")
	}
	entries := []analytics.Entry{{Gram: []string{"lag"}, Frequency: 1}}
	if err := st.SaveFrequencies(ctx, "missing", store.KindWord, entries); err == nil {
		t.Error("SaveFrequencies for an unknown run should fail")
	}
}

func sampleTables() map[store.Kind][]analytics.Entry {
	return map[store.Kind][]analytics.Entry{
		store.KindWord:    {{Gram: []string{"crash"}, Frequency: 3}, {Gram: []string{"game"}, Frequency: 2}},
		store.KindBigram:  {{Gram: []string{"game", "crash"}, Frequency: 2}},
		store.KindTrigram: {{Gram: []string{"crash", "on", "launch"}, Frequency: 1}},
	}
}

func testSaveRun(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	notes := SampleNotes()
	tables := sampleTables()
	run, err := st.SaveRun(ctx, store.Run{Games: 1, Reports: 4, Notes: len(notes), Skipped: 1}, notes, tables)
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if run.ID == "" || run.CreatedAt.IsZero() {
		t.Fatalf("SaveRun should fill id and time: %+v", run)
	}

	latest, err := st.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun: %v", err)
	}
	if latest.ID != run.ID || latest.Reports != 4 || latest.Skipped != 1 {
		t.Errorf("LatestRun = %+v, want %+v", latest, run)
	}

	got, err := st.Notes(ctx, run.ID)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if !reflect.DeepEqual(got, notes) {
		t.Errorf("Notes mismatch:\n got  %+v\n want %+v", got, notes)
	}
	for _, kind := range store.Kinds {
		entries, err := st.Frequencies(ctx, run.ID, kind, 0)
		if err != nil {
			t.Fatalf("Frequencies(%s): %v", kind, err)
		}
		if !reflect.DeepEqual(entries, tables[kind]) {
			t.Errorf("Frequencies(%s) = %v, want %v", kind, entries, tables[kind])
		}
	}
}

func testSaveRunInvalid(t *testing.T, st store.Store) {
	ctx := context.Background()
	defer st.Close()

	tables := sampleTables()
	tables[store.KindTrigram] = []analytics.Entry{{Gram: []string{"solo"}, Frequency: 1}}
	if _, err := st.SaveRun(ctx, store.Run{}, SampleNotes(), tables); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("SaveRun: err = %v, want ErrInvalidInput", err)
	}
	if _, err := st.LatestRun(ctx); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("a rejected SaveRun must leave no run: err = %v", err)
	}
}
