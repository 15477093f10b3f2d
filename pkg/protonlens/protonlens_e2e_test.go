package protonlens

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
	"github.com/cognicore/protonlens/pkg/protonlens/config"
	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
	"github.com/cognicore/protonlens/pkg/protonlens/store/memstore"
)

var (
	pipelineOnce sync.Once
	pipelineVal  *ingest.Pipeline
	pipelineErr  error
)

// testPipeline loads the default resources once for the whole package.
func testPipeline(t *testing.T) *ingest.Pipeline {
	t.Helper()
	pipelineOnce.Do(func() {
		loader := config.Loader{}
		comp, err := loader.Load()
		if err != nil {
			pipelineErr = err
			return
		}
		pipelineVal, pipelineErr = ingest.NewPipeline(comp.Resources)
	})
	if pipelineErr != nil {
		t.Fatalf("load pipeline: %v", pipelineErr)
	}
	return pipelineVal
}

func notes(texts ...string) []*ingest.Report {
	out := make([]*ingest.Report, len(texts))
	for i, text := range texts {
		out[i] = &ingest.Report{Notes: &text}
	}
	return out
}

type countingObserver struct {
	analyzed int
	skipped  map[string]int
	batches  int
}

func (c *countingObserver) NoteAnalyzed() { c.analyzed++ }
func (c *countingObserver) ReportSkipped(reason string) {
	if c.skipped == nil {
		c.skipped = map[string]int{}
	}
	c.skipped[reason]++
}
func (c *countingObserver) BatchFinished(time.Duration, *Result) { c.batches++ }

// TestEndToEndSingleReport runs one report through the real resources.
func TestEndToEndSingleReport(t *testing.T) {
	lens := New(Options{Pipeline: testPipeline(t)})

	games := []ingest.Game{{AppID: "570", Title: "Dota 2"}}
	reports := map[ingest.AppID][]*ingest.Report{
		"570": notes("The game crashes constantly, very frustrating."),
	}

	res, err := lens.Analyze(context.Background(), games, reports)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(res.Notes))
	}

	note := res.Notes[0]
	if note.AppID != "570" {
		t.Errorf("AppID = %q", note.AppID)
	}
	if note.WordCount != 4 {
		t.Errorf("WordCount = %d (tokens %q), want 4", note.WordCount, note.Tokens)
	}
	if !strings.Contains(note.TopicCategory, "bugs") {
		t.Errorf("TopicCategory = %q, want it to contain bugs", note.TopicCategory)
	}
	if note.Sentiment != "negative" {
		t.Errorf("Sentiment = %q (compound %v), want negative", note.Sentiment, note.CompoundScore)
	}
	if note.SentenceCount != 1 {
		t.Errorf("SentenceCount = %d, want 1", note.SentenceCount)
	}
	if note.CharCount != len("The game crashes constantly, very frustrating.") {
		t.Errorf("CharCount = %d", note.CharCount)
	}
	if sum := note.NounCount + note.VerbCount + note.AdjectiveCount + note.AdverbCount; sum > note.WordCount {
		t.Errorf("POS sum %d exceeds word count %d", sum, note.WordCount)
	}
	if len(strings.Fields(note.StemmedTokens)) != 4 || len(strings.Fields(note.LemmatizedTokens)) != 4 {
		t.Errorf("reduced sequences misaligned: %q / %q", note.StemmedTokens, note.LemmatizedTokens)
	}
	if len(res.Unigrams) != 4 || len(res.Bigrams) != 3 || len(res.Trigrams) != 2 {
		t.Errorf("table sizes = %d/%d/%d, want 4/3/2", len(res.Unigrams), len(res.Bigrams), len(res.Trigrams))
	}
}

func TestAnalyzeSkipsWithoutError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	obs := &countingObserver{}
	lens := New(Options{Pipeline: testPipeline(t), Logger: zap.New(core), Observer: obs})

	empty := ""
	games := []ingest.Game{{AppID: "1"}, {AppID: "2"}, {AppID: "3"}}
	reports := map[ingest.AppID][]*ingest.Report{
		"1": {{Notes: &empty}},
		"2": {{Notes: nil}},
		"3": {nil},
	}

	res, err := lens.Analyze(context.Background(), games, reports)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(res.Notes) != 0 {
		t.Errorf("expected no notes, got %d", len(res.Notes))
	}
	if res.SkippedTotal() != 3 || res.Reports != 3 {
		t.Errorf("skipped = %v, reports = %d", res.Skipped, res.Reports)
	}
	if obs.skipped["blank_notes"] != 1 || obs.skipped["no_notes"] != 1 || obs.skipped["nil_report"] != 1 {
		t.Errorf("observer skips = %v", obs.skipped)
	}
	if obs.batches != 1 || obs.analyzed != 0 {
		t.Errorf("observer batches=%d analyzed=%d", obs.batches, obs.analyzed)
	}
	if n := logs.FilterMessage("report skipped").Len(); n != 3 {
		t.Errorf("expected 3 skip debug logs, got %d", n)
	}
	for _, entry := range logs.FilterMessage("report skipped").All() {
		if entry.Level != zapcore.DebugLevel {
			t.Errorf("skip logged at %v, want debug", entry.Level)
		}
	}
}

func TestAnalyzePreservesInputOrder(t *testing.T) {
	lens := New(Options{Pipeline: testPipeline(t), Workers: 4})

	games := []ingest.Game{{AppID: "b"}, {AppID: "a"}, {AppID: "none"}, {AppID: "c"}}
	reports := map[ingest.AppID][]*ingest.Report{
		"a": notes("alpha first report", "alpha second report"),
		"b": notes("bravo only report"),
		"c": notes("   ", "charlie report"),
		"x": notes("orphan report for unlisted game"),
	}

	res, err := lens.Analyze(context.Background(), games, reports)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var got []string
	for _, n := range res.Notes {
		got = append(got, string(n.AppID)+":"+n.Text)
	}
	want := []string{
		"b:bravo only report",
		"a:alpha first report",
		"a:alpha second report",
		"c:charlie report",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("order = %v, want %v", got, want)
	}
	if res.Games != 4 || res.Reports != 5 || res.SkippedTotal() != 1 {
		t.Errorf("games=%d reports=%d skipped=%d", res.Games, res.Reports, res.SkippedTotal())
	}
}

// TestAnalyzeCountsIndependentOfOrder checks the tables do not depend on
// report order.
func TestAnalyzeCountsIndependentOfOrder(t *testing.T) {
	lens := New(Options{Pipeline: testPipeline(t), Workers: 2})
	ctx := context.Background()

	first := "Black screen on launch, black screen after update."
	second := "Runs smooth with proton, no black screen."
	games := []ingest.Game{{AppID: "1"}}

	forward, err := lens.Analyze(ctx, games, map[ingest.AppID][]*ingest.Report{"1": notes(first, second)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	backward, err := lens.Analyze(ctx, games, map[ingest.AppID][]*ingest.Report{"1": notes(second, first)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	for name, pair := range map[string][2][]analytics.Entry{
		"unigrams": {forward.Unigrams, backward.Unigrams},
		"bigrams":  {forward.Bigrams, backward.Bigrams},
		"trigrams": {forward.Trigrams, backward.Trigrams},
	} {
		if a, b := countsOf(pair[0]), countsOf(pair[1]); !equalCounts(a, b) {
			t.Errorf("%s differ: %v vs %v", name, a, b)
		}
	}
	if forward.Bigrams[0].Text() != "black screen" || forward.Bigrams[0].Frequency != 3 {
		t.Errorf("top bigram = %v", forward.Bigrams[0])
	}
}

func countsOf(entries []analytics.Entry) map[string]int64 {
	m := make(map[string]int64, len(entries))
	for _, e := range entries {
		m[e.Text()] = e.Frequency
	}
	return m
}

func equalCounts(a, b map[string]int64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func TestAnalyzeCancelled(t *testing.T) {
	lens := New(Options{Pipeline: testPipeline(t)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	games := []ingest.Game{{AppID: "1"}}
	reports := map[ingest.AppID][]*ingest.Report{"1": notes("works fine")}

	if _, err := lens.Analyze(ctx, games, reports); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAnalyzeWithoutPipeline(t *testing.T) {
	lens := New(Options{})
	if _, err := lens.Analyze(context.Background(), nil, nil); !errors.Is(err, internalerr.ErrMissingResource) {
		t.Errorf("err = %v, want ErrMissingResource", err)
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	ctx := context.Background()
	lens := New(Options{Pipeline: testPipeline(t), Store: memstore.New()})
	defer lens.Close()

	if _, _, err := lens.LoadRun(ctx, "", 0); !IsNoRun(err) {
		t.Fatalf("LoadRun on empty store: err = %v", err)
	}

	games := []ingest.Game{{AppID: "1"}}
	reports := map[ingest.AppID][]*ingest.Report{
		"1": notes("Game crashes on startup.", "Works great, smooth performance.", ""),
	}
	res, err := lens.Analyze(ctx, games, reports)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	run, err := lens.Save(ctx, res)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if run.Notes != 2 || run.Skipped != 1 || run.Reports != 3 {
		t.Errorf("run = %+v", run)
	}

	loadedRun, loaded, err := lens.LoadRun(ctx, "", 2)
	if err != nil {
		t.Fatalf("LoadRun: %v", err)
	}
	if loadedRun.ID != run.ID {
		t.Errorf("latest run = %s, want %s", loadedRun.ID, run.ID)
	}
	if len(loaded.Notes) != 2 || loaded.Notes[0].Text != "Game crashes on startup." {
		t.Errorf("loaded notes = %+v", loaded.Notes)
	}
	if len(loaded.Unigrams) != 2 {
		t.Errorf("top-2 unigrams = %v", loaded.Unigrams)
	}
	if loaded.Unigrams[0].Text() != res.Unigrams[0].Text() {
		t.Errorf("unigram order changed: %v vs %v", loaded.Unigrams[0], res.Unigrams[0])
	}
}

func TestSaveWithoutStore(t *testing.T) {
	lens := New(Options{})
	if _, err := lens.Save(context.Background(), &Result{}); !errors.Is(err, internalerr.ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestFailedSaveLeavesNoRun(t *testing.T) {
	ctx := context.Background()
	lens := New(Options{Store: memstore.New()})
	defer lens.Close()

	res := &Result{
		Notes:    []ingest.Note{{Text: "game crash", WordCount: 2, Tokens: "game crash"}},
		Unigrams: []analytics.Entry{{Gram: []string{"game"}, Frequency: 1}, {Gram: []string{"crash"}, Frequency: 1}},
		Bigrams:  []analytics.Entry{{Gram: []string{"game"}, Frequency: 1}},
	}
	if _, err := lens.Save(ctx, res); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("Save: err = %v, want ErrInvalidInput", err)
	}
	if _, _, err := lens.LoadRun(ctx, "", 0); !IsNoRun(err) {
		t.Fatalf("a failed save must not leave a run: err = %v", err)
	}
}
