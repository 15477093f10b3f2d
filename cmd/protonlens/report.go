package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cognicore/protonlens/pkg/protonlens"
	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
	"github.com/cognicore/protonlens/pkg/protonlens/cards"
	"github.com/cognicore/protonlens/pkg/protonlens/store"
)

func runReport(ctx context.Context, args []string) error {
	fs, cfgPath := newFlagSet("report")
	runID := fs.String("run", "", "Run ID (default: latest run)")
	top := fs.Int("top", 10, "N-grams to print per table")
	format := fs.String("format", "json", "Output format: json or text")
	dbPath := fs.String("db", "", "SQLite database (overrides store.path)")
	csvDir := fs.String("csv", "", "Also write notes and frequency tables as CSV files into this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *format != "json" && *format != "text" {
		return fmt.Errorf("unknown format %q", *format)
	}

	a, err := newApp(*cfgPath)
	if err != nil {
		return err
	}
	defer a.close()
	if *dbPath != "" {
		a.cfg.Store.Path = *dbPath
	}

	lens, err := a.openLens(ctx, nil, nil)
	if err != nil {
		return err
	}
	defer lens.Close()

	// Cards filter the full tables, so load them uncapped.
	run, res, err := lens.LoadRun(ctx, *runID, 0)
	if protonlens.IsNoRun(err) {
		return fmt.Errorf("no saved run found; run analyze first: %w", err)
	}
	if err != nil {
		return err
	}
	if err := printSummary(os.Stdout, *format, run, res, *top); err != nil {
		return err
	}
	return a.writeCSV(*csvDir, run, res)
}

type summary struct {
	RunID     string            `json:"run_id"`
	CreatedAt time.Time         `json:"created_at"`
	Games     int               `json:"games"`
	Reports   int               `json:"reports"`
	Notes     int               `json:"notes"`
	Skipped   int               `json:"skipped"`
	Cards     []cards.Card      `json:"cards"`
	Words     []analytics.Entry `json:"top_words"`
	Bigrams   []analytics.Entry `json:"top_bigrams"`
	Trigrams  []analytics.Entry `json:"top_trigrams"`
}

func printSummary(w io.Writer, format string, run store.Run, res *protonlens.Result, top int) error {
	built := cards.New().Build(res.Notes, res.Unigrams, res.Bigrams)

	if format == "text" {
		fmt.Fprintf(w, "Run %s (%s): %d games, %d reports, %d notes, %d skipped\n\n",
			run.ID, run.CreatedAt.Format(time.RFC3339), run.Games, run.Reports, run.Notes, run.Skipped)
		if err := cards.Render(w, built); err != nil {
			return err
		}
		for _, table := range []struct {
			title   string
			entries []analytics.Entry
		}{
			{"Top words", res.Unigrams},
			{"Top bigrams", res.Bigrams},
			{"Top trigrams", res.Trigrams},
		} {
			fmt.Fprintf(w, "\n%s\n", table.title)
			for _, e := range analytics.Top(table.entries, top) {
				fmt.Fprintf(w, "  %6d  %s\n", e.Frequency, e.Text())
			}
		}
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary{
		RunID:     run.ID,
		CreatedAt: run.CreatedAt,
		Games:     run.Games,
		Reports:   run.Reports,
		Notes:     run.Notes,
		Skipped:   run.Skipped,
		Cards:     built,
		Words:     analytics.Top(res.Unigrams, top),
		Bigrams:   analytics.Top(res.Bigrams, top),
		Trigrams:  analytics.Top(res.Trigrams, top),
	})
}
