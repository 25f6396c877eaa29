// Package perft counts the leaf nodes of the legal move tree, the standard
// way to check a move generator against known totals.
package perft

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/hailam/chesskernel/internal/board"
)

// Entry is the node count below one root move.
type Entry struct {
	Move  board.Move
	Nodes int64
}

// Count returns the number of leaf nodes depth plies below b. The board is
// restored before Count returns, including on error.
func Count(b *board.Board, depth int) (int64, error) {
	if depth < 0 {
		return 0, fmt.Errorf("perft: negative depth %d", depth)
	}
	return count(b, depth, nil)
}

// count is Count with an optional abort check consulted before each node.
func count(b *board.Board, depth int, abort func() error) (int64, error) {
	if abort != nil {
		if err := abort(); err != nil {
			return 0, err
		}
	}
	if depth == 0 {
		return 1, nil
	}

	ml, err := b.LegalMoves()
	if err != nil {
		return 0, err
	}
	if depth == 1 {
		return int64(ml.Len()), nil
	}

	var nodes int64
	for _, m := range ml.Slice() {
		err := b.WithMove(m, func() error {
			n, err := count(b, depth-1, abort)
			nodes += n
			return err
		})
		if err != nil {
			return 0, err
		}
	}
	return nodes, nil
}

// Divide returns the node count below each root move, in generation order.
func Divide(b *board.Board, depth int) ([]Entry, error) {
	if depth < 1 {
		return nil, fmt.Errorf("perft: divide needs depth >= 1, got %d", depth)
	}

	ml, err := b.LegalMoves()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, ml.Len())
	for _, m := range ml.Slice() {
		var n int64
		err := b.WithMove(m, func() error {
			var err error
			n, err = count(b, depth-1, nil)
			return err
		})
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Move: m, Nodes: n})
	}
	return entries, nil
}

// Total sums the node counts of a divide.
func Total(entries []Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Nodes
	}
	return total
}

// Mismatch describes one root move on which two divides disagree. A count
// of -1 means the move is absent from that side.
type Mismatch struct {
	Move string
	Got  int64
	Want int64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: got %d, want %d", m.Move, m.Got, m.Want)
}

// Diff compares a divide against reference counts keyed by move string and
// returns the disagreements sorted by move.
func Diff(got []Entry, want map[string]int64) []Mismatch {
	have := make(map[string]int64, len(got))
	for _, e := range got {
		have[e.Move.String()] = e.Nodes
	}

	seen := make(map[string]struct{}, len(have)+len(want))
	for _, k := range maps.Keys(have) {
		seen[k] = struct{}{}
	}
	for _, k := range maps.Keys(want) {
		seen[k] = struct{}{}
	}
	moves := maps.Keys(seen)
	slices.Sort(moves)

	var out []Mismatch
	for _, mv := range moves {
		g, ok := have[mv]
		if !ok {
			g = -1
		}
		w, ok := want[mv]
		if !ok {
			w = -1
		}
		if g != w {
			out = append(out, Mismatch{Move: mv, Got: g, Want: w})
		}
	}
	return out
}
