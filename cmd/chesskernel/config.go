package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
)

// config holds the command-line settings. Each flag falls back to an
// environment variable when not given.
type config struct {
	dbDir      string
	workers    int
	cpuprofile string
	noCache    bool
	squareSize int
	debug      bool
	tablebase  string

	workersSet bool // -workers or CHESSKERNEL_WORKERS was given
}

func parseConfig(args []string, getenv func(string) string, errOut io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("chesskernel", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&cfg.dbDir, "db", "", "database directory (env CHESSKERNEL_DB, default: platform data dir)")
	fs.IntVar(&cfg.workers, "workers", 0, "perft worker goroutines, 0 = GOMAXPROCS (env CHESSKERNEL_WORKERS)")
	fs.StringVar(&cfg.cpuprofile, "cpuprofile", "", "write cpu profile to file (env CPUPROFILE)")
	fs.BoolVar(&cfg.noCache, "nocache", false, "run without the perft database")
	fs.IntVar(&cfg.squareSize, "size", 64, "square size in pixels for rendered diagrams")
	fs.StringVar(&cfg.tablebase, "tablebase", "", `online tablebase URL, "lichess" for the public one (env CHESSKERNEL_TABLEBASE)`)
	fs.BoolVar(&cfg.debug, "debug", false, "validate the king cache before every move generation")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["db"] {
		cfg.dbDir = getenv("CHESSKERNEL_DB")
	}
	if !set["cpuprofile"] {
		cfg.cpuprofile = getenv("CPUPROFILE")
	}
	if !set["tablebase"] {
		cfg.tablebase = getenv("CHESSKERNEL_TABLEBASE")
	}
	cfg.workersSet = set["workers"]
	if !set["workers"] {
		if v := getenv("CHESSKERNEL_WORKERS"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("invalid CHESSKERNEL_WORKERS %q: %w", v, err)
			}
			cfg.workers = n
			cfg.workersSet = true
		}
	}
	if cfg.workers < 0 {
		return cfg, fmt.Errorf("workers must be >= 0, got %d", cfg.workers)
	}
	return cfg, nil
}
