// Package shell implements a line-oriented command loop over the board.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/chesskernel/internal/board"
	"github.com/hailam/chesskernel/internal/fen"
	"github.com/hailam/chesskernel/internal/perft"
	"github.com/hailam/chesskernel/internal/render"
	"github.com/hailam/chesskernel/internal/storage"
	"github.com/hailam/chesskernel/internal/tablebase"
)

// Store persists perft totals and run statistics. *storage.Storage
// implements it.
type Store interface {
	perft.Cache
	RecordRun(nodes int64, elapsed time.Duration, cached bool) error
	LoadStats() (*storage.PerftStats, error)
	ListPerft() ([]storage.PerftRecord, error)
	DeletePerft() (int, error)
}

// Options configures a Shell.
type Options struct {
	Workers    int              // perft goroutines; zero means GOMAXPROCS
	Store      Store            // optional
	SquareSize int              // render square size in pixels; zero means 64
	Tablebase  tablebase.Prober // optional, used by "tb"
}

// Shell holds the current position and executes commands against it.
type Shell struct {
	out      io.Writer
	position *board.Board
	runner   *perft.Runner
	store    Store
	prober   tablebase.Prober

	squareSize int
	renderer   *render.Renderer
}

// New creates a shell writing to out, starting from the two-king position.
func New(out io.Writer, opts Options) *Shell {
	size := opts.SquareSize
	if size == 0 {
		size = 64
	}
	s := &Shell{
		out:        out,
		position:   board.NewBoard(),
		runner:     &perft.Runner{Workers: opts.Workers},
		store:      opts.Store,
		prober:     opts.Tablebase,
		squareSize: size,
	}
	if opts.Store != nil {
		s.runner.Cache = opts.Store
	}
	if s.prober == nil {
		s.prober = tablebase.NoopProber{}
	}
	return s
}

// Position returns the current board.
func (s *Shell) Position() *board.Board {
	return s.position
}

// SetPosition replaces the current board with one parsed from a FEN string.
func (s *Shell) SetPosition(f string) error {
	b, err := fen.Parse(f)
	if err != nil {
		return err
	}
	s.position = b
	return nil
}

// Run reads commands from in until "quit", end of input or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if quit := s.Execute(ctx, scanner.Text()); quit {
			return nil
		}
	}
	return scanner.Err()
}

// Execute runs one command line and reports whether it was "quit". Failures
// are written to the output as "error: ..." lines.
func (s *Shell) Execute(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	parts := strings.Fields(line)
	cmd := parts[0]
	args := parts[1:]

	var err error
	switch cmd {
	case "position":
		err = s.handlePosition(args)
	case "d":
		fmt.Fprint(s.out, s.position.String())
	case "fen":
		fmt.Fprintln(s.out, fen.Format(s.position))
	case "moves":
		err = s.handleMoves()
	case "san":
		err = s.handleSAN()
	case "push":
		err = s.handlePush(args)
	case "pop":
		err = s.position.PopMove()
	case "check":
		fmt.Fprintf(s.out, "check: %v\n", s.position.IsCurrentPlayerInCheck())
	case "legal":
		fmt.Fprintf(s.out, "legal: %v\n", s.position.IsLegalPosition())
	case "perft":
		err = s.handlePerft(ctx, args)
	case "divide":
		err = s.handleDivide(args)
	case "stats":
		err = s.handleStats()
	case "cache":
		err = s.handleCache(args)
	case "tb":
		err = s.handleTablebase(ctx, args)
	case "render":
		err = s.handleRender(args)
	case "setoption":
		err = s.handleSetOption(args)
	case "quit":
		return true
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	return false
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e1e2 e8d8
//   - position fen <fen>
//   - position fen <fen> moves e1e2
//
// The current position is kept when any part fails.
func (s *Shell) handlePosition(args []string) error {
	if len(args) == 0 {
		return errors.New("position: expected startpos or fen")
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	var b *board.Board
	switch args[0] {
	case "startpos":
		if movesAt != 1 {
			return fmt.Errorf("position: unexpected %q after startpos", args[1])
		}
		b = board.NewBoard()
	case "fen":
		var err error
		b, err = fen.Parse(strings.Join(args[1:movesAt], " "))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("position: unknown kind %q", args[0])
	}

	if movesAt < len(args) {
		for _, moveStr := range args[movesAt+1:] {
			if err := pushLegal(b, moveStr); err != nil {
				return err
			}
		}
	}

	s.position = b
	if board.DebugMoveValidation {
		fmt.Fprintf(os.Stderr, "DEBUG: position set - key=%016x depth=%d\n", b.Key(), b.Depth())
	}
	return nil
}

// pushLegal applies a move given in coordinate notation or SAN after
// checking it against the generated legal moves.
func pushLegal(b *board.Board, moveStr string) error {
	m, err := board.ParseMove(moveStr)
	if err != nil {
		if m, err = b.ParseSAN(moveStr); err != nil {
			return err
		}
	}
	ml, err := b.LegalMoves()
	if err != nil {
		return err
	}
	if !ml.Contains(m.Source, m.Dest) {
		return fmt.Errorf("illegal move: %s", moveStr)
	}
	return b.PushMove(m)
}

func (s *Shell) handleMoves() error {
	ml, err := s.position.LegalMoves()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "moves (%d): %s\n", ml.Len(), strings.Join(ml.Strings(), " "))
	return nil
}

func (s *Shell) handleSAN() error {
	sans, err := s.position.SANs()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "san (%d): %s\n", len(sans), strings.Join(sans, " "))
	return nil
}

func (s *Shell) handlePush(args []string) error {
	if len(args) != 1 {
		return errors.New("push: expected one move")
	}
	return pushLegal(s.position, args[0])
}

func parseDepth(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected a depth")
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil || depth < 1 {
		return 0, fmt.Errorf("invalid depth: %s", args[0])
	}
	return depth, nil
}

func (s *Shell) handlePerft(ctx context.Context, args []string) error {
	depth, err := parseDepth(args)
	if err != nil {
		return err
	}

	res, err := s.runner.Run(ctx, s.position, depth)
	if err != nil {
		return err
	}

	if res.Cached {
		fmt.Fprintf(s.out, "Nodes: %d (cached)\n", res.Nodes)
	} else {
		fmt.Fprintf(s.out, "Nodes: %d\n", res.Nodes)
		fmt.Fprintf(s.out, "Time: %v\n", res.Elapsed)
		fmt.Fprintf(s.out, "NPS: %d\n", res.NodesPerSecond())
	}

	if s.store != nil {
		if err := s.store.RecordRun(res.Nodes, res.Elapsed, res.Cached); err != nil {
			return fmt.Errorf("record stats: %w", err)
		}
	}
	return nil
}

// handleDivide prints the node count below each root move. Reference counts
// given as move=count pairs (e.g. "divide 3 e1e2=34 e1d1=29") are compared
// with the result and every disagreement is listed.
func (s *Shell) handleDivide(args []string) error {
	if len(args) == 0 {
		return errors.New("expected a depth")
	}
	depth, err := parseDepth(args[:1])
	if err != nil {
		return err
	}
	want, err := parseReference(args[1:])
	if err != nil {
		return err
	}

	entries, err := perft.Divide(s.position, depth)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(s.out, "%s: %d\n", e.Move, e.Nodes)
	}
	fmt.Fprintf(s.out, "\nNodes: %d\n", perft.Total(entries))

	if want == nil {
		return nil
	}
	mismatches := perft.Diff(entries, want)
	if len(mismatches) == 0 {
		fmt.Fprintln(s.out, "reference: match")
		return nil
	}
	fmt.Fprintf(s.out, "reference: %d mismatches\n", len(mismatches))
	for _, m := range mismatches {
		fmt.Fprintf(s.out, "  %s\n", m)
	}
	return nil
}

// parseReference reads move=count pairs. It returns nil for no pairs.
func parseReference(args []string) (map[string]int64, error) {
	if len(args) == 0 {
		return nil, nil
	}
	want := make(map[string]int64, len(args))
	for _, arg := range args {
		mv, n, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("divide: expected move=count, got %q", arg)
		}
		if _, err := board.ParseMove(mv); err != nil {
			return nil, fmt.Errorf("divide: %w", err)
		}
		nodes, err := strconv.ParseInt(n, 10, 64)
		if err != nil || nodes < 0 {
			return nil, fmt.Errorf("divide: invalid count in %q", arg)
		}
		want[mv] = nodes
	}
	return want, nil
}

func (s *Shell) handleStats() error {
	if s.store == nil {
		return errors.New("stats: no database")
	}
	stats, err := s.store.LoadStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Runs: %d (%d cached)\n", stats.Runs, stats.CacheHits)
	fmt.Fprintf(s.out, "Nodes: %d\n", stats.TotalNodes)
	fmt.Fprintf(s.out, "Time: %v\n", stats.TotalTime)
	fmt.Fprintf(s.out, "NPS: %d\n", stats.NodesPerSecond())
	return nil
}

// handleCache processes "cache list" and "cache clear".
func (s *Shell) handleCache(args []string) error {
	if s.store == nil {
		return errors.New("cache: no database")
	}
	if len(args) != 1 {
		return errors.New("cache: expected list or clear")
	}

	switch args[0] {
	case "list":
		records, err := s.store.ListPerft()
		if err != nil {
			return err
		}
		for _, rec := range records {
			fmt.Fprintf(s.out, "%016x depth %d: %d  %s\n", rec.Key, rec.Depth, rec.Nodes, rec.FEN)
		}
		fmt.Fprintf(s.out, "%d records\n", len(records))
	case "clear":
		n, err := s.store.DeletePerft()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "removed %d records\n", n)
	default:
		return fmt.Errorf("cache: unknown subcommand %q", args[0])
	}
	return nil
}

// cacheReporter is implemented by probers that keep a result cache.
type cacheReporter interface {
	HitRate() float64
	CacheSize() int
	Clear()
}

// handleTablebase prints the endgame result of the current position and, when
// the position is won or drawn, the move that keeps it so. "tb clear" empties
// the prober's cache.
func (s *Shell) handleTablebase(ctx context.Context, args []string) error {
	if s.prober.MaxPieces() == 0 {
		return errors.New("tb: no tablebase configured")
	}
	cache, cached := s.prober.(cacheReporter)

	if len(args) == 1 && args[0] == "clear" {
		if !cached {
			return errors.New("tb: prober has no cache")
		}
		cache.Clear()
		fmt.Fprintln(s.out, "tb: cache cleared")
		return nil
	}
	if len(args) != 0 {
		return fmt.Errorf("tb: unexpected %q", strings.Join(args, " "))
	}

	if n := tablebase.CountPieces(s.position); n > s.prober.MaxPieces() {
		return fmt.Errorf("tb: %d pieces, tablebase holds at most %d", n, s.prober.MaxPieces())
	}

	res, err := s.prober.Probe(ctx, s.position)
	if err != nil {
		return err
	}
	if !res.Found {
		fmt.Fprintln(s.out, "tb: not found")
	} else {
		fmt.Fprintf(s.out, "tb: %s dtz %d dtm %d score %d\n",
			res.WDL, res.DTZ, res.DTM, tablebase.Score(res.WDL, s.position.SideToMove()))

		root, err := s.prober.ProbeRoot(ctx, s.position)
		if err != nil {
			return err
		}
		if root.Found {
			fmt.Fprintf(s.out, "bestmove %s (%s)\n", root.Move, root.WDL)
		}
	}

	if cached {
		fmt.Fprintf(s.out, "tb cache: %d entries, %.1f%% hits\n", cache.CacheSize(), cache.HitRate())
	}
	return nil
}

func (s *Shell) handleRender(args []string) (err error) {
	if len(args) != 1 {
		return errors.New("render: expected a file name")
	}
	r, err := s.getRenderer()
	if err != nil {
		return err
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := r.WritePNG(f, s.position); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "wrote %s\n", args[0])
	return nil
}

// getRenderer builds the renderer on first use.
func (s *Shell) getRenderer() (*render.Renderer, error) {
	if s.renderer == nil {
		r, err := render.NewRenderer(s.squareSize)
		if err != nil {
			return nil, err
		}
		s.renderer = r
	}
	return s.renderer, nil
}

// handleSetOption processes "setoption name <name> value <value>".
func (s *Shell) handleSetOption(args []string) error {
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("setoption: invalid Workers value %q", value)
		}
		s.runner.Workers = n
	case "debug":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("setoption: invalid Debug value %q", value)
		}
		board.DebugMoveValidation = on
	case "flipped":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("setoption: invalid Flipped value %q", value)
		}
		r, err := s.getRenderer()
		if err != nil {
			return err
		}
		r.Flipped = on
	default:
		return fmt.Errorf("setoption: unknown option %q", name)
	}
	return nil
}

// Workers returns the configured perft worker count.
func (s *Shell) Workers() int {
	return s.runner.Workers
}
