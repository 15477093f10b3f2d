// Command protonlens fetches ProtonDB reports, analyzes them and reports on
// saved runs.
//
// Usage:
//
//	protonlens fetch   [-config file] [-out snapshot.json] [-limit N] [-force]
//	protonlens analyze [-config file] -in snapshot.json [-db path] [-metrics file] [-csv dir]
//	protonlens report  [-config file] [-run id] [-top N] [-format json|text] [-csv dir]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/cognicore/protonlens/internal/logger"
	"github.com/cognicore/protonlens/internal/settings"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string) error
}

var commands = []command{
	{"fetch", "download games and reports into a snapshot file", runFetch},
	{"analyze", "analyze a snapshot and save the run", runAnalyze},
	{"report", "print summary cards and top n-grams of a saved run", runReport},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	name := os.Args[1]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		err := cmd.run(ctx, os.Args[2:])
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "protonlens %s: %v\n", name, err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: protonlens <command> [flags]")
	fmt.Fprintln(os.Stderr)
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", cmd.name, cmd.summary)
	}
}

// app holds what every command needs.
type app struct {
	cfg *settings.Settings
	log *zap.Logger
}

// newFlagSet returns a flag set with the shared -config flag.
func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Settings file (default: ./protonlens.yaml if present)")
	return fs, cfgPath
}

func newApp(cfgPath string) (*app, error) {
	cfg, err := settings.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}
