package perft

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/chesskernel/internal/board"
	"github.com/hailam/chesskernel/internal/fen"
)

// Cache stores perft totals by position key and depth. Implementations must
// be safe for concurrent use.
type Cache interface {
	LoadPerft(key uint64, depth int) (nodes int64, ok bool, err error)
	SavePerft(key uint64, depth int, nodes int64, fen string) error
}

// Runner runs perft with the root moves split across goroutines.
type Runner struct {
	// Workers bounds the number of root moves searched at once.
	// Zero or less means GOMAXPROCS.
	Workers int

	// Cache, if set, is consulted for the root and each child position and
	// receives every freshly computed total.
	Cache Cache
}

// Result is the outcome of one Run.
type Result struct {
	Depth   int
	Nodes   int64
	Entries []Entry // per root move in generation order; nil when the root came from the cache
	Cached  bool
	Elapsed time.Duration
}

// NodesPerSecond returns the search speed, or 0 for an instant result.
func (r Result) NodesPerSecond() int64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return int64(float64(r.Nodes) / r.Elapsed.Seconds())
}

// Run counts the nodes depth plies below b. b itself is never modified; each
// goroutine walks its own copy. Cancelling ctx aborts the count.
func (r *Runner) Run(ctx context.Context, b *board.Board, depth int) (Result, error) {
	start := time.Now()
	res := Result{Depth: depth}
	if depth < 1 {
		return res, fmt.Errorf("perft: depth must be >= 1, got %d", depth)
	}

	if n, ok := r.load(b.Key(), depth); ok {
		res.Nodes = n
		res.Cached = true
		res.Elapsed = time.Since(start)
		return res, nil
	}

	ml, err := b.LegalMoves()
	if err != nil {
		return res, err
	}
	moves := ml.Slice()
	entries := make([]Entry, len(moves))

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	abort := func() error { return gctx.Err() }

	for i, m := range moves {
		if gctx.Err() != nil {
			break
		}
		i, m := i, m
		g.Go(func() error {
			wb := b.Copy()
			if err := wb.PushMove(m); err != nil {
				return err
			}
			n, err := r.child(wb, depth-1, abort)
			if err != nil {
				return err
			}
			entries[i] = Entry{Move: m, Nodes: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.Entries = entries
	res.Nodes = Total(entries)
	res.Elapsed = time.Since(start)
	r.save(b, depth, res.Nodes)
	return res, nil
}

// child counts below one root move, going through the cache when the
// subtree is deep enough to be worth storing.
func (r *Runner) child(b *board.Board, depth int, abort func() error) (int64, error) {
	if depth < 2 {
		return count(b, depth, abort)
	}
	if n, ok := r.load(b.Key(), depth); ok {
		return n, nil
	}
	n, err := count(b, depth, abort)
	if err != nil {
		return 0, err
	}
	r.save(b, depth, n)
	return n, nil
}

func (r *Runner) load(key uint64, depth int) (int64, bool) {
	if r.Cache == nil {
		return 0, false
	}
	n, ok, err := r.Cache.LoadPerft(key, depth)
	if err != nil {
		log.Printf("Warning: perft cache lookup failed: %v", err)
		return 0, false
	}
	return n, ok
}

func (r *Runner) save(b *board.Board, depth int, nodes int64) {
	if r.Cache == nil {
		return
	}
	if err := r.Cache.SavePerft(b.Key(), depth, nodes, fen.Format(b)); err != nil {
		log.Printf("Warning: failed to save perft result: %v", err)
	}
}
