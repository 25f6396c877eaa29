package board

import "errors"

var (
	// ErrInvalidOffset reports an offset outside the 64 interior cells.
	ErrInvalidOffset = errors.New("invalid offset")
	// ErrInvalidValue reports a Square or Side that cannot be placed or moved.
	ErrInvalidValue = errors.New("invalid square value")
	// ErrKingMissing reports a write that would leave a side without its cached king.
	ErrKingMissing = errors.New("king missing")
	// ErrIllegalMover reports a move of a piece the side to move does not own,
	// or onto its own piece or a king.
	ErrIllegalMover = errors.New("illegal mover")
	// ErrEmptyUndoStack is returned by PopMove when nothing has been pushed.
	ErrEmptyUndoStack = errors.New("unmove stack is empty")
	// ErrUndoMismatch is returned by PopMove when the board no longer matches
	// the move being undone.
	ErrUndoMismatch = errors.New("board does not match undo record")
	// ErrNotImplemented is returned when generation meets a pawn of the side to move.
	ErrNotImplemented = errors.New("not implemented")
	// ErrOverflow is returned when a move list is full.
	ErrOverflow = errors.New("move list overflow")
)
