package board

// Step and ray direction sets, each in a fixed order.
var (
	kingDirs       = [8]Offset{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}
	orthogonalDirs = [4]Offset{North, East, South, West}
	diagonalDirs   = [4]Offset{NorthEast, SouthEast, SouthWest, NorthWest}
	knightDirs     = [8]Offset{KnightDir1, KnightDir2, KnightDir3, KnightDir4, KnightDir5, KnightDir6, KnightDir7, KnightDir8}
)

// pawnAttackFrom lists, per attacking side, where a pawn must stand to
// capture onto a given cell. White pawns capture upward, so they sit below.
var pawnAttackFrom = [...][2]Offset{
	White: {SouthEast, SouthWest},
	Black: {NorthEast, NorthWest},
}

// IsAttacked reports whether side by attacks the cell at o, regardless of
// whose turn it is. It never mutates the board. Offsets outside the interior
// and sides other than White or Black are never attacked.
func (b *Board) IsAttacked(o Offset, by Side) bool {
	if !o.IsValid() || (by != White && by != Black) {
		return false
	}

	king := MakeSquare(King, by)
	for _, d := range kingDirs {
		if b.cells[o+d] == king {
			return true
		}
	}

	knight := MakeSquare(Knight, by)
	for _, d := range knightDirs {
		if b.cells[o+d] == knight {
			return true
		}
	}

	pawn := MakeSquare(Pawn, by)
	for _, d := range pawnAttackFrom[by] {
		if b.cells[o+d] == pawn {
			return true
		}
	}

	queen := MakeSquare(Queen, by)
	rook := MakeSquare(Rook, by)
	for _, d := range orthogonalDirs {
		if b.isAttackedRay(o, d, rook, queen) {
			return true
		}
	}

	bishop := MakeSquare(Bishop, by)
	for _, d := range diagonalDirs {
		if b.isAttackedRay(o, d, bishop, queen) {
			return true
		}
	}

	return false
}

// isAttackedRay walks from o in direction dir over empty cells and reports
// whether the first occupied cell holds piece1 or piece2. The sentinel border
// ends every walk.
func (b *Board) isAttackedRay(o, dir Offset, piece1, piece2 Square) bool {
	dest := o + dir
	for b.cells[dest] == Empty {
		dest += dir
	}
	return b.cells[dest] == piece1 || b.cells[dest] == piece2
}
