package board

import (
	"fmt"
	"log"
)

// DebugMoveValidation makes the generator verify the king cache before every
// run and fail with ErrKingMissing when it is out of step with the grid.
var DebugMoveValidation = false

// geometry describes how a piece kind moves: single steps along dirs, or rays
// along dirs when slides is set. Pawns have no entry.
type geometry struct {
	dirs   []Offset
	slides bool
}

// pieceGeometry maps each piece kind to its movement. Direction order is the
// order moves are emitted in:
//
//	King, Queen: N, NE, E, SE, S, SW, W, NW
//	Rook:        N, E, S, W
//	Bishop:      NE, SE, SW, NW
//	Knight:      NNE, NNW, SSE, SSW, ENE, ESE, WNW, WSW
var pieceGeometry = [...]geometry{
	King:   {dirs: kingDirs[:]},
	Queen:  {dirs: kingDirs[:], slides: true},
	Rook:   {dirs: orthogonalDirs[:], slides: true},
	Bishop: {dirs: diagonalDirs[:], slides: true},
	Knight: {dirs: knightDirs[:]},
}

// LegalMoves generates all legal moves for the side to move into a new list.
func (b *Board) LegalMoves() (*MoveList, error) {
	ml := NewMoveList()
	if err := b.GenerateMoves(ml); err != nil {
		return nil, err
	}
	return ml, nil
}

// GenerateMoves replaces the contents of ml with the legal moves of the side
// to move.
//
// Squares are visited file by file (a1, a2, ..., a8, b1, ...) and each piece
// emits its moves in pieceGeometry order. A pawn of the side to move fails the
// whole call with ErrNotImplemented. On any error ml is left empty.
func (b *Board) GenerateMoves(ml *MoveList) error {
	ml.Clear()
	us := b.sideToMove

	if DebugMoveValidation {
		if err := b.checkKings(); err != nil {
			log.Printf("MOVEGEN FATAL: %v Key=%x Depth=%d", err, b.key, len(b.unmoves))
			return err
		}
	}

	for file := 0; file < boardFiles; file++ {
		for rank := 0; rank < boardRanks; rank++ {
			source := NewOffset(file, rank)
			piece := b.cells[source]
			if piece.Side() != us {
				continue
			}

			if err := b.generatePieceMoves(ml, source, piece); err != nil {
				ml.Clear()
				return err
			}
		}
	}
	return nil
}

func (b *Board) generatePieceMoves(ml *MoveList, source Offset, piece Square) error {
	kind := piece.Kind()
	if kind == Pawn {
		return fmt.Errorf("%w: pawn moves (%s on %s)", ErrNotImplemented, piece, source)
	}
	if int(kind) >= len(pieceGeometry) || len(pieceGeometry[kind].dirs) == 0 {
		return fmt.Errorf("%w: no geometry for %s on %s", ErrInvalidValue, piece, source)
	}

	g := pieceGeometry[kind]
	for _, dir := range g.dirs {
		var err error
		if g.slides {
			err = b.tryRay(ml, source, dir)
		} else {
			err = b.tryMove(ml, source, source+dir)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// tryMove adds source-dest to ml if dest is empty or holds a capturable enemy
// piece and the move does not leave the mover's king attacked.
func (b *Board) tryMove(ml *MoveList, source, dest Offset) error {
	us := b.sideToMove
	if b.cells[source].Side() != us {
		return fmt.Errorf("%w: generator picked %s on %s for %s", ErrIllegalMover, b.cells[source], source, us)
	}

	target := b.cells[dest]
	switch target.Side() {
	case Nobody:
	case us.Other():
		if target.IsKing() {
			return nil
		}
	default:
		return nil // own piece or border
	}

	move := NewMove(source, dest)
	selfCheck := false
	err := b.WithMove(move, func() error {
		selfCheck = b.IsAttacked(b.KingPos(us), us.Other())
		return nil
	})
	if err != nil {
		return err
	}
	if selfCheck {
		return nil
	}
	return ml.Add(move)
}

// tryRay tries every empty cell from source along dir, then the first
// occupied cell if it holds an enemy piece.
func (b *Board) tryRay(ml *MoveList, source, dir Offset) error {
	dest := source + dir
	for b.cells[dest] == Empty {
		if err := b.tryMove(ml, source, dest); err != nil {
			return err
		}
		dest += dir
	}
	if b.cells[dest].Side() == b.sideToMove.Other() {
		return b.tryMove(ml, source, dest)
	}
	return nil
}
