package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/cognicore/protonlens/internal/metrics"
	"github.com/cognicore/protonlens/internal/protondb"
	"github.com/cognicore/protonlens/internal/retry"
)

func runFetch(ctx context.Context, args []string) error {
	fs, cfgPath := newFlagSet("fetch")
	out := fs.String("out", "snapshot.json", "Snapshot file to write")
	limit := fs.Int("limit", 0, "Fetch reports for the first N games only (0 = all)")
	force := fs.Bool("force", false, "Fetch again even if the snapshot file exists")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(*cfgPath)
	if err != nil {
		return err
	}
	defer a.close()

	if !*force {
		if _, err := os.Stat(*out); err == nil {
			snap, err := protondb.LoadSnapshot(*out)
			if err != nil {
				return err
			}
			a.log.Info("snapshot exists, not fetching again",
				zap.String("path", *out),
				zap.Int("games", len(snap.Games)),
				zap.Int("reports", snap.ReportCount()))
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	rec := metrics.New()
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = a.cfg.API.RetryAttempts
	retryCfg.Logger = a.log

	client := protondb.New(protondb.Options{
		BaseURL:           a.cfg.API.BaseURL,
		HTTPClient:        &http.Client{Timeout: a.cfg.API.Timeout},
		RequestsPerSecond: a.cfg.API.RequestsPerSecond,
		Burst:             a.cfg.API.Burst,
		Retry:             retryCfg,
		Logger:            a.log,
		Observer:          rec,
	})

	snap, err := client.Extract(ctx, *limit)
	if err != nil {
		return err
	}
	if err := snap.Save(*out); err != nil {
		return err
	}
	a.log.Info("snapshot saved",
		zap.String("path", *out),
		zap.Int("games", len(snap.Games)),
		zap.Int("reports", snap.ReportCount()))

	if a.cfg.Metrics.Textfile != "" {
		if err := rec.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
