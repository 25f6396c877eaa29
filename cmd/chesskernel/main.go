// Command chesskernel is an interactive shell over the chess rules kernel.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/hailam/chesskernel/internal/board"
	"github.com/hailam/chesskernel/internal/fen"
	"github.com/hailam/chesskernel/internal/shell"
	"github.com/hailam/chesskernel/internal/storage"
	"github.com/hailam/chesskernel/internal/tablebase"
)

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	board.DebugMoveValidation = cfg.debug

	// Start CPU profiling if requested (via flag or environment variable)
	if cfg.cpuprofile != "" {
		f, err := os.Create(cfg.cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", cfg.cpuprofile)
	}

	opts := shell.Options{Workers: cfg.workers, SquareSize: cfg.squareSize}

	switch cfg.tablebase {
	case "":
	case "lichess", tablebase.DefaultLichessURL:
		opts.Tablebase = tablebase.NewCachedLichessProber()
	default:
		lp := tablebase.NewLichessProber()
		lp.BaseURL = cfg.tablebase
		opts.Tablebase = tablebase.NewCachedProber(lp, 10000)
	}

	var store *storage.Storage
	var prefs *storage.Preferences
	if !cfg.noCache {
		store, err = storage.Open(cfg.dbDir)
		if err != nil {
			log.Printf("Warning: perft cache unavailable: %v", err)
		} else {
			defer store.Close()
			opts.Store = store

			prefs, err = store.LoadPreferences()
			if err != nil {
				log.Printf("Warning: could not load preferences: %v", err)
				prefs = storage.DefaultPreferences()
			}
			if !cfg.workersSet {
				opts.Workers = prefs.Workers
			}
		}
	}

	sh := shell.New(os.Stdout, opts)
	if prefs != nil && prefs.LastFEN != "" {
		if err := sh.SetPosition(prefs.LastFEN); err != nil {
			log.Printf("Warning: ignoring saved position %q: %v", prefs.LastFEN, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := sh.Run(ctx, os.Stdin); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("shell: %v", err)
	}

	if prefs != nil {
		prefs.Workers = sh.Workers()
		prefs.LastFEN = fen.Format(sh.Position())
		if err := store.SavePreferences(prefs); err != nil {
			log.Printf("Warning: could not save preferences: %v", err)
		}
	}
}
