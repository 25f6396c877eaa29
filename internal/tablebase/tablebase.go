// Package tablebase looks up endgame results for pawn-free positions.
package tablebase

import (
	"context"

	"github.com/hailam/chesskernel/internal/board"
)

// WDL represents Win/Draw/Loss result from the side to move's point of view.
type WDL int

const (
	WDLLoss        WDL = -2
	WDLBlessedLoss WDL = -1 // Loss but 50-move rule may save
	WDLDraw        WDL = 0
	WDLCursedWin   WDL = 1 // Win but 50-move rule may interfere
	WDLWin         WDL = 2
)

func (w WDL) String() string {
	switch w {
	case WDLLoss:
		return "loss"
	case WDLBlessedLoss:
		return "blessed-loss"
	case WDLDraw:
		return "draw"
	case WDLCursedWin:
		return "cursed-win"
	case WDLWin:
		return "win"
	default:
		return "unknown"
	}
}

// ProbeResult contains the result of a tablebase probe.
type ProbeResult struct {
	Found bool
	WDL   WDL
	DTZ   int // Distance to zeroing move (capture)
	DTM   int // Distance to mate in plies, 0 when unknown
}

// RootResult contains the best move from tablebase at root position.
type RootResult struct {
	Found bool
	Move  board.Move
	WDL   WDL // from the side to move's point of view
	DTZ   int
}

// Prober is the interface for tablebase probing.
type Prober interface {
	// Probe looks up a position in the tablebase.
	Probe(ctx context.Context, b *board.Board) (ProbeResult, error)

	// ProbeRoot finds the best move from the tablebase at the root position.
	ProbeRoot(ctx context.Context, b *board.Board) (RootResult, error)

	// MaxPieces returns the maximum number of pieces supported.
	MaxPieces() int
}

// Score converts a result for side to move into the board's white-relative
// score scale: WhiteMates for a white win, BlackMates for a black win and
// Draw otherwise. Cursed wins and blessed losses count as draws.
func Score(wdl WDL, toMove board.Side) int16 {
	var white int16
	switch wdl {
	case WDLWin:
		white = board.WhiteMates
	case WDLLoss:
		white = board.BlackMates
	default:
		return board.Draw
	}
	if toMove == board.Black {
		return -white
	}
	return white
}

// NoopProber is a prober that always returns "not found".
type NoopProber struct{}

func (NoopProber) Probe(context.Context, *board.Board) (ProbeResult, error) {
	return ProbeResult{}, nil
}

func (NoopProber) ProbeRoot(context.Context, *board.Board) (RootResult, error) {
	return RootResult{}, nil
}

func (NoopProber) MaxPieces() int {
	return 0
}

// CountPieces returns the total number of pieces on the board.
func CountPieces(b *board.Board) int {
	n := 0
	for o := board.A1; o <= board.H8; o++ {
		if sq, err := b.GetSquare(o); err == nil && sq != board.Empty {
			n++
		}
	}
	return n
}
