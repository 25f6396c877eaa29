package board

// Side identifies who owns the contents of a cell.
type Side uint8

const (
	Invalid Side = iota
	Nobody
	White
	Black
)

// Other returns the opposing side. Invalid and Nobody map to themselves.
func (s Side) Other() Side {
	switch s {
	case White:
		return Black
	case Black:
		return White
	default:
		return s
	}
}

// String returns the side name.
func (s Side) String() string {
	switch s {
	case White:
		return "White"
	case Black:
		return "Black"
	case Nobody:
		return "Nobody"
	default:
		return "Invalid"
	}
}

// PieceKind is the colorless identity of a piece.
type PieceKind uint8

const (
	NoKind PieceKind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// String returns the piece kind name.
func (k PieceKind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Square is the content of one board cell: empty, the off-board sentinel,
// or one of the twelve colored pieces.
type Square uint8

const (
	Empty Square = iota
	OffBoard

	WhitePawn
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing

	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing

	squareCount
)

// MakeSquare combines a piece kind and a side. It returns OffBoard when the
// pair does not name a piece.
func MakeSquare(k PieceKind, s Side) Square {
	if k == NoKind || k > King {
		return OffBoard
	}
	switch s {
	case White:
		return WhitePawn + Square(k-Pawn)
	case Black:
		return BlackPawn + Square(k-Pawn)
	default:
		return OffBoard
	}
}

// Side returns the owner of the cell content. Empty belongs to Nobody;
// OffBoard and undefined tags are Invalid.
func (sq Square) Side() Side {
	switch {
	case sq == Empty:
		return Nobody
	case sq >= WhitePawn && sq <= WhiteKing:
		return White
	case sq >= BlackPawn && sq <= BlackKing:
		return Black
	default:
		return Invalid
	}
}

// Kind returns the piece kind, or NoKind for empty and sentinel cells.
func (sq Square) Kind() PieceKind {
	switch sq.Side() {
	case White:
		return Pawn + PieceKind(sq-WhitePawn)
	case Black:
		return Pawn + PieceKind(sq-BlackPawn)
	default:
		return NoKind
	}
}

// IsKing reports whether the cell holds a king of either side.
func (sq Square) IsKing() bool {
	return sq == WhiteKing || sq == BlackKing
}

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black, "." for empty and "#" for the sentinel.
func (sq Square) String() string {
	switch sq.Side() {
	case Nobody:
		return "."
	case Invalid:
		return "#"
	}
	chars := "PNBRQKpnbrqk"
	return string(chars[sq-WhitePawn])
}

// SquareFromChar converts a FEN character to a piece. It returns OffBoard for
// characters that do not name a piece.
func SquareFromChar(c byte) Square {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return OffBoard
	}
}
