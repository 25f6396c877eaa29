// Package board implements a mailbox chess position with make/unmake and
// self-check filtered move generation.
package board

import "fmt"

// Offset indexes one cell of the bordered grid.
//
// The 8x8 board is embedded in a 10x12 buffer: a1 is 21, h1 is 28, a8 is 91
// and h8 is 98. Columns 0 and 9 and the two rows above and below the board
// hold OffBoard, so any king step, knight jump or ray from an interior cell
// stays inside the buffer.
type Offset int

const (
	// BoardCells is the size of the bordered grid.
	BoardCells = 120

	// NoOffset marks the absence of a cell.
	NoOffset Offset = -1

	gridWidth  = 10
	firstCell  = 21
	lastCell   = 98
	boardFiles = 8
	boardRanks = 8
)

// Directions between neighboring cells.
const (
	North     Offset = +10
	NorthEast Offset = +11
	East      Offset = +1
	SouthEast Offset = -9
	South     Offset = -10
	SouthWest Offset = -11
	West      Offset = -1
	NorthWest Offset = +9
)

// Knight jump offsets.
const (
	KnightDir1 = 2*North + East
	KnightDir2 = 2*North + West
	KnightDir3 = 2*South + East
	KnightDir4 = 2*South + West
	KnightDir5 = 2*East + North
	KnightDir6 = 2*East + South
	KnightDir7 = 2*West + North
	KnightDir8 = 2*West + South
)

// Interior cells, rank by rank.
const (
	A1 Offset = 21 + iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
)

const (
	A2 Offset = 31 + iota
	B2
	C2
	D2
	E2
	F2
	G2
	H2
)

const (
	A3 Offset = 41 + iota
	B3
	C3
	D3
	E3
	F3
	G3
	H3
)

const (
	A4 Offset = 51 + iota
	B4
	C4
	D4
	E4
	F4
	G4
	H4
)

const (
	A5 Offset = 61 + iota
	B5
	C5
	D5
	E5
	F5
	G5
	H5
)

const (
	A6 Offset = 71 + iota
	B6
	C6
	D6
	E6
	F6
	G6
	H6
)

const (
	A7 Offset = 81 + iota
	B7
	C7
	D7
	E7
	F7
	G7
	H7
)

const (
	A8 Offset = 91 + iota
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

// NewOffset maps a 0-based file (0=a) and rank (0=1) to a cell.
// It returns NoOffset when either coordinate is off the board.
func NewOffset(file, rank int) Offset {
	if file < 0 || file >= boardFiles || rank < 0 || rank >= boardRanks {
		return NoOffset
	}
	return Offset(firstCell + gridWidth*rank + file)
}

// OffsetOf maps algebraic coordinates ('a'..'h', '1'..'8') to a cell.
func OffsetOf(file, rank byte) (Offset, error) {
	o := NewOffset(int(file)-'a', int(rank)-'1')
	if o == NoOffset {
		return NoOffset, fmt.Errorf("%w: %c%c", ErrInvalidOffset, file, rank)
	}
	return o, nil
}

// ParseOffset parses algebraic notation (e.g., "e4").
func ParseOffset(s string) (Offset, error) {
	if len(s) != 2 {
		return NoOffset, fmt.Errorf("%w: %q", ErrInvalidOffset, s)
	}
	return OffsetOf(s[0], s[1])
}

// IsValid reports whether the offset addresses an interior cell.
func (o Offset) IsValid() bool {
	if o < firstCell || o > lastCell {
		return false
	}
	col := int(o) % gridWidth
	return col >= 1 && col <= boardFiles
}

// File returns the 0-based file of an interior cell (0=a, 7=h).
func (o Offset) File() int {
	return int(o)%gridWidth - 1
}

// Rank returns the 0-based rank of an interior cell (0=1, 7=8).
func (o Offset) Rank() int {
	return int(o)/gridWidth - 2
}

// String returns the algebraic notation for the cell (e.g., "e4"), or "-"
// for offsets outside the interior.
func (o Offset) String() string {
	if !o.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+o.File(), '1'+o.Rank())
}
