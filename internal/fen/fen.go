// Package fen converts between FEN strings and board positions.
//
// Only the piece placement and side to move carry information: the board has
// no castling or en passant state, so those fields must be "-".
package fen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hailam/chesskernel/internal/board"
)

// StartFEN is the position a fresh board starts in: the two kings on their
// home squares, White to move.
const StartFEN = "4k3/8/8/8/8/8/8/4K3 w - - 0 1"

// Parse parses a FEN string and returns a Board.
func Parse(s string) (*board.Board, error) {
	parts := strings.Fields(s)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid FEN: need at least 2 fields, got %d", len(parts))
	}

	placement, err := parsePiecePlacement(parts[0])
	if err != nil {
		return nil, err
	}

	var side board.Side
	switch parts[1] {
	case "w":
		side = board.White
	case "b":
		side = board.Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Castling rights (field 2) and en passant square (field 3) are optional,
	// but when present they must be empty.
	if len(parts) > 2 && parts[2] != "-" {
		return nil, fmt.Errorf("castling rights not supported: %s", parts[2])
	}
	if len(parts) > 3 && parts[3] != "-" {
		return nil, fmt.Errorf("en passant not supported: %s", parts[3])
	}

	// Half-move clock and full-move number are validated and dropped.
	for i := 4; i < len(parts) && i < 6; i++ {
		if _, err := strconv.Atoi(parts[i]); err != nil {
			return nil, fmt.Errorf("invalid move counter: %s", parts[i])
		}
	}

	b := board.NewBoard()
	if err := placeKings(b, placement); err != nil {
		return nil, err
	}
	for o, sq := range placement {
		if sq.IsKing() {
			continue
		}
		if err := b.SetSquare(o, sq); err != nil {
			return nil, err
		}
	}
	if err := b.SetSideToMove(side); err != nil {
		return nil, err
	}
	return b, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(placement string) (map[board.Offset]board.Square, error) {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	pieces := make(map[board.Offset]board.Square)
	kings := map[board.Square]int{}
	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return nil, fmt.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			sq := board.SquareFromChar(byte(c))
			if sq == board.OffBoard {
				return nil, fmt.Errorf("invalid piece character: %c", c)
			}
			pieces[board.NewOffset(file, rank)] = sq
			if sq.IsKing() {
				kings[sq]++
			}
			file++
		}

		if file != 8 {
			return nil, fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}

	if kings[board.WhiteKing] != 1 {
		return nil, fmt.Errorf("white must have exactly one king")
	}
	if kings[board.BlackKing] != 1 {
		return nil, fmt.Errorf("black must have exactly one king")
	}
	return pieces, nil
}

// placeKings relocates both kings of a fresh board to their FEN squares. The
// white king parks on a free cell first so neither king is ever written over
// the other.
func placeKings(b *board.Board, placement map[board.Offset]board.Square) error {
	var whiteTarget, blackTarget board.Offset
	for o, sq := range placement {
		switch sq {
		case board.WhiteKing:
			whiteTarget = o
		case board.BlackKing:
			blackTarget = o
		}
	}

	park := board.NoOffset
	for o := board.A1; o <= board.H8; o++ {
		if o.IsValid() && o != blackTarget && o != b.KingPos(board.Black) {
			park = o
			break
		}
	}

	if err := b.SetSquare(park, board.WhiteKing); err != nil {
		return err
	}
	if err := b.SetSquare(blackTarget, board.BlackKing); err != nil {
		return err
	}
	return b.SetSquare(whiteTarget, board.WhiteKing)
}

// Format returns the FEN representation of the board.
func Format(b *board.Board) string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq, err := b.GetSquare(board.NewOffset(file, rank))
			if err != nil || sq == board.Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(sq.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if b.SideToMove() == board.White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteString(" - - 0 1")
	return sb.String()
}
