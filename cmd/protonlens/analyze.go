package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cognicore/protonlens/internal/metrics"
	"github.com/cognicore/protonlens/internal/protondb"
	"github.com/cognicore/protonlens/pkg/protonlens"
	"github.com/cognicore/protonlens/pkg/protonlens/config"
	"github.com/cognicore/protonlens/pkg/protonlens/export"
	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
	"github.com/cognicore/protonlens/pkg/protonlens/store"
	"github.com/cognicore/protonlens/pkg/protonlens/store/sqlite"
)

func runAnalyze(ctx context.Context, args []string) error {
	fs, cfgPath := newFlagSet("analyze")
	in := fs.String("in", "", "Snapshot file written by fetch (required)")
	dbPath := fs.String("db", "", "SQLite database (overrides store.path)")
	textfile := fs.String("metrics", "", "Prometheus textfile to write (overrides metrics.textfile)")
	top := fs.Int("top", 10, "N-grams to print per table")
	csvDir := fs.String("csv", "", "Also write notes and frequency tables as CSV files into this directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("-in is required")
	}

	a, err := newApp(*cfgPath)
	if err != nil {
		return err
	}
	defer a.close()
	if *dbPath != "" {
		a.cfg.Store.Path = *dbPath
	}
	if *textfile != "" {
		a.cfg.Metrics.Textfile = *textfile
	}

	snap, err := protondb.LoadSnapshot(*in)
	if err != nil {
		return err
	}

	loader := config.Loader{
		StoplistPath:   a.cfg.Resources.Stoplist,
		TopicsPath:     a.cfg.Resources.Topics,
		ExceptionsPath: a.cfg.Resources.Exceptions,
	}
	components, err := loader.Load()
	if err != nil {
		return fmt.Errorf("load resources: %w", err)
	}
	pipeline, err := ingest.NewPipeline(components.Resources)
	if err != nil {
		return err
	}

	rec := metrics.New()
	lens, err := a.openLens(ctx, pipeline, rec)
	if err != nil {
		return err
	}
	defer lens.Close()

	res, err := lens.Analyze(ctx, snap.Games, snap.Reports)
	if err != nil {
		return err
	}
	run, err := lens.Save(ctx, res)
	if err != nil {
		return err
	}

	if err := printSummary(os.Stdout, "json", run, res, *top); err != nil {
		return err
	}
	if err := a.writeCSV(*csvDir, run, res); err != nil {
		return err
	}

	if a.cfg.Metrics.Textfile != "" {
		if err := rec.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		a.log.Info("metrics written", zap.String("path", a.cfg.Metrics.Textfile))
	}
	return nil
}

// writeCSV exports a run when dir is set.
func (a *app) writeCSV(dir string, run store.Run, res *protonlens.Result) error {
	if dir == "" {
		return nil
	}
	paths, err := export.WriteCSV(dir, run.ID, export.Tables{
		Notes:    res.Notes,
		Unigrams: res.Unigrams,
		Bigrams:  res.Bigrams,
		Trigrams: res.Trigrams,
	})
	if err != nil {
		return err
	}
	a.log.Info("csv export written", zap.String("run_id", run.ID), zap.Strings("files", paths))
	return nil
}

// openLens opens the configured SQLite store. pipeline and obs may be nil
// for read-only use.
func (a *app) openLens(ctx context.Context, pipeline *ingest.Pipeline, obs protonlens.Observer) (*protonlens.Lens, error) {
	if dir := filepath.Dir(a.cfg.Store.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	st, err := sqlite.OpenSQLite(ctx, a.cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	return protonlens.New(protonlens.Options{
		Store:    st,
		Pipeline: pipeline,
		Logger:   a.log,
		Observer: obs,
		Workers:  a.cfg.Pipeline.Workers,
	}), nil
}

