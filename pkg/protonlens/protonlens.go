package protonlens

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/protonlens/pkg/protonlens/analytics"
	"github.com/cognicore/protonlens/pkg/protonlens/ingest"
	"github.com/cognicore/protonlens/pkg/protonlens/internalerr"
	"github.com/cognicore/protonlens/pkg/protonlens/store"
)

// Lens is the report analysis facade
type Lens struct {
	store    store.Store
	pipeline *ingest.Pipeline
	log      *zap.Logger
	obs      Observer
	workers  int
}

// Observer receives batch progress. Calls are made from a single goroutine.
type Observer interface {
	NoteAnalyzed()
	ReportSkipped(reason string)
	BatchFinished(elapsed time.Duration, res *Result)
}

type nopObserver struct{}

func (nopObserver) NoteAnalyzed()                        {}
func (nopObserver) ReportSkipped(string)                 {}
func (nopObserver) BatchFinished(time.Duration, *Result) {}

// Options configures a Lens instance
type Options struct {
	Store    store.Store // optional; required by Save and LoadRun
	Pipeline *ingest.Pipeline
	Logger   *zap.Logger
	Observer Observer
	Workers  int // defaults to GOMAXPROCS
}

// New creates a Lens with the given dependencies
func New(opts Options) *Lens {
	l := &Lens{
		store:    opts.Store,
		pipeline: opts.Pipeline,
		log:      opts.Logger,
		obs:      opts.Observer,
		workers:  opts.Workers,
	}
	if l.log == nil {
		l.log = zap.NewNop()
	}
	if l.obs == nil {
		l.obs = nopObserver{}
	}
	if l.workers <= 0 {
		l.workers = runtime.GOMAXPROCS(0)
	}
	return l
}

// Close releases the store, if any.
func (l *Lens) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

// Result is the output of one batch.
type Result struct {
	Notes    []ingest.Note
	Unigrams []analytics.Entry
	Bigrams  []analytics.Entry
	Trigrams []analytics.Entry

	Games   int
	Reports int
	Skipped map[string]int // by skip reason
}

// SkippedTotal sums skipped reports over all reasons.
func (r *Result) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

type job struct {
	appID  ingest.AppID
	report *ingest.Report
}

type outcome struct {
	note   ingest.Note
	reason ingest.SkipReason
}

// Analyze runs every report through the pipeline and aggregates n-gram
// tables. Notes come back in input order: games in slice order, reports in
// per-game order. Games without reports contribute nothing.
func (l *Lens) Analyze(ctx context.Context, games []ingest.Game, reports map[ingest.AppID][]*ingest.Report) (*Result, error) {
	if l.pipeline == nil {
		return nil, fmt.Errorf("pipeline: %w", internalerr.ErrMissingResource)
	}
	start := time.Now()

	var jobs []job
	for _, g := range games {
		for _, r := range reports[g.AppID] {
			jobs = append(jobs, job{appID: g.AppID, report: r})
		}
	}

	outcomes := make([]outcome, len(jobs))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(l.workers)
	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		grp.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			note, reason := l.pipeline.Process(jobs[i].appID, jobs[i].report)
			outcomes[i] = outcome{note: note, reason: reason}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Games:   len(games),
		Reports: len(jobs),
		Skipped: make(map[string]int),
	}
	agg := analytics.NewAnalyzer()
	for i, o := range outcomes {
		if o.reason != ingest.Accepted {
			res.Skipped[o.reason.String()]++
			l.obs.ReportSkipped(o.reason.String())
			l.log.Debug("report skipped",
				zap.String("app_id", string(jobs[i].appID)),
				zap.Int("index", i),
				zap.Stringer("reason", o.reason))
			continue
		}
		res.Notes = append(res.Notes, o.note)
		agg.Process(o.note.CleanTokens())
		l.obs.NoteAnalyzed()
	}

	stats := agg.Snapshot()
	res.Unigrams = stats.Unigrams
	res.Bigrams = stats.Bigrams
	res.Trigrams = stats.Trigrams

	elapsed := time.Since(start)
	l.obs.BatchFinished(elapsed, res)
	l.log.Info("batch analyzed",
		zap.Int("games", res.Games),
		zap.Int("reports", res.Reports),
		zap.Int("notes", len(res.Notes)),
		zap.Int("skipped", res.SkippedTotal()),
		zap.Int("unigrams", len(res.Unigrams)),
		zap.Duration("elapsed", elapsed))
	return res, nil
}

// Save persists a batch as a new run. The run, its notes and its tables
// are written together; a failed save leaves no run behind.
func (l *Lens) Save(ctx context.Context, res *Result) (store.Run, error) {
	if l.store == nil {
		return store.Run{}, internalerr.ErrStoreUnavailable
	}

	run, err := l.store.SaveRun(ctx, store.Run{
		Games:   res.Games,
		Reports: res.Reports,
		Notes:   len(res.Notes),
		Skipped: res.SkippedTotal(),
	}, res.Notes, map[store.Kind][]analytics.Entry{
		store.KindWord:    res.Unigrams,
		store.KindBigram:  res.Bigrams,
		store.KindTrigram: res.Trigrams,
	})
	if err != nil {
		return store.Run{}, fmt.Errorf("save run: %w", err)
	}

	l.log.Info("run saved", zap.String("run_id", run.ID), zap.Int("notes", run.Notes))
	return run, nil
}

// LoadRun reads a saved run back. An empty id selects the latest run; top
// caps each frequency table (non-positive keeps all).
func (l *Lens) LoadRun(ctx context.Context, id string, top int) (store.Run, *Result, error) {
	if l.store == nil {
		return store.Run{}, nil, internalerr.ErrStoreUnavailable
	}

	var run store.Run
	var err error
	if id == "" {
		run, err = l.store.LatestRun(ctx)
	} else {
		run, err = l.store.GetRun(ctx, id)
	}
	if err != nil {
		return store.Run{}, nil, err
	}

	notes, err := l.store.Notes(ctx, run.ID)
	if err != nil {
		return store.Run{}, nil, fmt.Errorf("load notes: %w", err)
	}
	res := &Result{Notes: notes, Games: run.Games, Reports: run.Reports}

	dst := map[store.Kind]*[]analytics.Entry{
		store.KindWord:    &res.Unigrams,
		store.KindBigram:  &res.Bigrams,
		store.KindTrigram: &res.Trigrams,
	}
	for _, kind := range store.Kinds {
		entries, err := l.store.Frequencies(ctx, run.ID, kind, top)
		if err != nil {
			return store.Run{}, nil, fmt.Errorf("load %s frequencies: %w", kind, err)
		}
		*dst[kind] = entries
	}
	return run, res, nil
}

// IsNoRun reports whether err means no run has been saved yet.
func IsNoRun(err error) bool {
	return errors.Is(err, internalerr.ErrNotFound)
}
