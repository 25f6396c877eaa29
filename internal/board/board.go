package board

import (
	"fmt"
	"strings"
)

// Board is a mutable chess position on a bordered 10x12 grid.
//
// The grid is the source of truth. The king offsets are a cache of where
// WhiteKing and BlackKing sit, kept in step by every mutating method.
// A Board is not safe for concurrent use: generation temporarily mutates it.
type Board struct {
	cells      [BoardCells]Square
	whiteKing  Offset
	blackKing  Offset
	sideToMove Side
	unmoves    []Unmove

	// Zobrist key of cells and side to move, updated incrementally
	key uint64
}

// NewBoard creates a board with only the two kings on e1 and e8, White to move.
func NewBoard() *Board {
	b := &Board{}
	b.Clear(true)
	return b
}

// Clear resets the board to the two-king position and empties the undo stack.
func (b *Board) Clear(whiteToMove bool) {
	for o := range b.cells {
		if Offset(o).IsValid() {
			b.cells[o] = Empty
		} else {
			b.cells[o] = OffBoard
		}
	}

	b.whiteKing = E1
	b.cells[E1] = WhiteKing
	b.blackKing = E8
	b.cells[E8] = BlackKing

	b.sideToMove = White
	if !whiteToMove {
		b.sideToMove = Black
	}
	b.unmoves = b.unmoves[:0]
	b.key = b.computeKey()
}

// Copy creates a deep copy of the board, including its undo stack.
func (b *Board) Copy() *Board {
	nb := *b
	nb.unmoves = append([]Unmove(nil), b.unmoves...)
	return &nb
}

// SideToMove returns the side whose turn it is.
func (b *Board) SideToMove() Side {
	return b.sideToMove
}

// SetSideToMove hands the turn to s, which must be White or Black.
func (b *Board) SetSideToMove(s Side) error {
	if s != White && s != Black {
		return fmt.Errorf("%w: side %s cannot move", ErrInvalidValue, s)
	}
	if s != b.sideToMove {
		b.sideToMove = s
		b.key ^= zobristSideToMove
	}
	return nil
}

// KingPos returns the cached king offset for White or Black, or NoOffset for
// any other side.
func (b *Board) KingPos(s Side) Offset {
	switch s {
	case White:
		return b.whiteKing
	case Black:
		return b.blackKing
	default:
		return NoOffset
	}
}

// Depth returns the number of applied moves that have not been undone.
func (b *Board) Depth() int {
	return len(b.unmoves)
}

// Key returns the Zobrist key of the grid and side to move.
func (b *Board) Key() uint64 {
	return b.key
}

// GetSquare returns the content of an interior cell.
func (b *Board) GetSquare(o Offset) (Square, error) {
	if !o.IsValid() {
		return OffBoard, fmt.Errorf("%w: %d", ErrInvalidOffset, int(o))
	}
	return b.cells[o], nil
}

// SetSquare writes value into an interior cell.
//
// Placing a king moves that side's king: the previous king cell becomes Empty.
// Any write that would leave a side without exactly one cached king fails with
// ErrKingMissing and leaves the board unchanged.
func (b *Board) SetSquare(o Offset, value Square) error {
	if !o.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidOffset, int(o))
	}
	if value.Side() == Invalid {
		return fmt.Errorf("%w: %d", ErrInvalidValue, int(value))
	}

	saved := struct {
		target, kingCell     Square
		whiteKing, blackKing Offset
	}{target: b.cells[o], whiteKing: b.whiteKing, blackKing: b.blackKing}

	evacuated := NoOffset
	switch value {
	case WhiteKing:
		evacuated = b.whiteKing
		b.whiteKing = o
	case BlackKing:
		evacuated = b.blackKing
		b.blackKing = o
	}
	if evacuated == o {
		evacuated = NoOffset
	}
	if evacuated != NoOffset {
		saved.kingCell = b.cells[evacuated]
		b.cells[evacuated] = Empty
	}
	b.cells[o] = value

	if err := b.checkKings(); err != nil {
		b.cells[o] = saved.target
		if evacuated != NoOffset {
			b.cells[evacuated] = saved.kingCell
		}
		b.whiteKing, b.blackKing = saved.whiteKing, saved.blackKing
		return fmt.Errorf("%w: writing %s to %s", err, value, o)
	}

	if evacuated != NoOffset {
		b.key ^= zobristCell[saved.kingCell][evacuated]
	}
	b.key ^= zobristCell[saved.target][o] ^ zobristCell[value][o]
	return nil
}

// checkKings verifies the king cache against the grid.
func (b *Board) checkKings() error {
	if b.cells[b.whiteKing] != WhiteKing {
		return fmt.Errorf("%w: White king not on %s", ErrKingMissing, b.whiteKing)
	}
	if b.cells[b.blackKing] != BlackKing {
		return fmt.Errorf("%w: Black king not on %s", ErrKingMissing, b.blackKing)
	}
	return nil
}

// PushMove applies a move and records how to undo it.
//
// The piece on move.Source must belong to the side to move. The destination
// must be empty or hold a non-king enemy piece.
func (b *Board) PushMove(move Move) error {
	if !move.Source.IsValid() || !move.Dest.IsValid() {
		return fmt.Errorf("%w: move %d-%d", ErrInvalidOffset, int(move.Source), int(move.Dest))
	}

	mover := b.cells[move.Source]
	if mover.Side() != b.sideToMove {
		return fmt.Errorf("%w: %s cannot move %s from %s", ErrIllegalMover, b.sideToMove, mover, move.Source)
	}
	capture := b.cells[move.Dest]
	if capture.Side() == b.sideToMove || capture.IsKing() {
		return fmt.Errorf("%w: %s cannot land on %s at %s", ErrIllegalMover, mover, capture, move.Dest)
	}

	b.unmoves = append(b.unmoves, Unmove{Move: move, Captured: capture})

	switch mover {
	case WhiteKing:
		b.whiteKing = move.Dest
	case BlackKing:
		b.blackKing = move.Dest
	}

	b.cells[move.Dest] = mover
	b.cells[move.Source] = Empty
	b.sideToMove = b.sideToMove.Other()

	b.key ^= zobristCell[mover][move.Source] ^
		zobristCell[capture][move.Dest] ^
		zobristCell[mover][move.Dest] ^
		zobristSideToMove
	return nil
}

// PopMove undoes the most recently pushed move.
//
// The source cell must still be empty and the destination must still hold a
// piece of the side that moved. If SetSquare or SetSideToMove has changed
// either since the push, PopMove fails with ErrUndoMismatch and leaves the
// board and the undo stack as they are.
func (b *Board) PopMove() error {
	n := len(b.unmoves)
	if n == 0 {
		return ErrEmptyUndoStack
	}
	unmove := b.unmoves[n-1]
	move := unmove.Move

	mover := b.cells[move.Dest]
	if b.cells[move.Source] != Empty {
		return fmt.Errorf("%w: %s is occupied by %s", ErrUndoMismatch, move.Source, b.cells[move.Source])
	}
	if mover.Side() != b.sideToMove.Other() {
		return fmt.Errorf("%w: %s holds %s, not a %s piece", ErrUndoMismatch, move.Dest, mover, b.sideToMove.Other())
	}

	b.unmoves = b.unmoves[:n-1]
	b.sideToMove = b.sideToMove.Other()
	b.cells[move.Source] = mover
	b.cells[move.Dest] = unmove.Captured

	switch mover {
	case WhiteKing:
		b.whiteKing = move.Source
	case BlackKing:
		b.blackKing = move.Source
	}

	b.key ^= zobristCell[mover][move.Source] ^
		zobristCell[unmove.Captured][move.Dest] ^
		zobristCell[mover][move.Dest] ^
		zobristSideToMove
	return nil
}

// WithMove pushes move, runs fn on the resulting position and pops the move
// again on every exit path, including a panic in fn.
func (b *Board) WithMove(move Move, fn func() error) (err error) {
	if err := b.PushMove(move); err != nil {
		return err
	}
	defer func() {
		if popErr := b.PopMove(); popErr != nil && err == nil {
			err = popErr
		}
	}()
	return fn()
}

// LastMove returns the most recently pushed move that has not been popped.
func (b *Board) LastMove() (Move, bool) {
	if len(b.unmoves) == 0 {
		return NoMove, false
	}
	return b.unmoves[len(b.unmoves)-1].Move, true
}

// IsCurrentPlayerInCheck reports whether the side to move has its king attacked.
func (b *Board) IsCurrentPlayerInCheck() bool {
	us := b.sideToMove
	return b.IsAttacked(b.KingPos(us), us.Other())
}

// IsLegalPosition reports whether the side that just moved left its own king
// safe, i.e. the side to move cannot capture the opposing king.
func (b *Board) IsLegalPosition() bool {
	them := b.sideToMove.Other()
	return !b.IsAttacked(b.KingPos(them), b.sideToMove)
}

// String returns a visual representation of the board.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := boardRanks - 1; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < boardFiles; file++ {
			sb.WriteString(b.cells[NewOffset(file, rank)].String())
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", b.sideToMove)
	fmt.Fprintf(&sb, "Key: %016x\n", b.key)
	return sb.String()
}
