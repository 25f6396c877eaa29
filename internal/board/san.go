package board

import (
	"fmt"
	"strings"
)

// SAN converts a legal move to Standard Algebraic Notation. The board is
// unchanged on return.
func (b *Board) SAN(m Move) (string, error) {
	ml, err := b.LegalMoves()
	if err != nil {
		return "", err
	}
	if !ml.Contains(m.Source, m.Dest) {
		return "", fmt.Errorf("%w: %v is not legal here", ErrIllegalMover, m)
	}
	return b.san(m, ml)
}

// san formats m, given the legal moves of the current position.
func (b *Board) san(m Move, legal *MoveList) (string, error) {
	piece := b.cells[m.Source]
	var sb strings.Builder

	sb.WriteByte("?PNBRQK"[piece.Kind()])
	sb.WriteString(b.disambiguation(m, legal))
	if b.cells[m.Dest] != Empty {
		sb.WriteByte('x')
	}
	sb.WriteString(m.Dest.String())

	// Check/checkmate marker
	err := b.WithMove(m, func() error {
		if !b.IsCurrentPlayerInCheck() {
			return nil
		}
		replies, err := b.LegalMoves()
		if err == nil && replies.Len() == 0 {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('+')
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// disambiguation returns the file, rank or square needed to tell m apart
// from other legal moves of the same piece type to the same square.
func (b *Board) disambiguation(m Move, legal *MoveList) string {
	piece := b.cells[m.Source]

	var candidates []Offset
	for _, other := range legal.Slice() {
		if other.Dest != m.Dest || other.Source == m.Source {
			continue
		}
		if b.cells[other.Source] == piece {
			candidates = append(candidates, other.Source)
		}
	}

	// No ambiguity
	if len(candidates) == 0 {
		return ""
	}

	sameFile := false
	sameRank := false
	for _, o := range candidates {
		if o.File() == m.Source.File() {
			sameFile = true
		}
		if o.Rank() == m.Source.Rank() {
			sameRank = true
		}
	}

	if !sameFile {
		return string(rune('a' + m.Source.File()))
	}
	if !sameRank {
		return string(rune('1' + m.Source.Rank()))
	}
	return m.Source.String()
}

// ParseSAN parses a SAN string and returns the matching legal move.
func (b *Board) ParseSAN(s string) (Move, error) {
	orig := s
	s = strings.TrimSpace(s)

	// Remove check/checkmate markers
	s = strings.TrimSuffix(s, "+")
	s = strings.TrimSuffix(s, "#")

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	if len(s) < 3 {
		return NoMove, fmt.Errorf("invalid SAN: %q", orig)
	}
	var kind PieceKind
	switch s[0] {
	case 'N':
		kind = Knight
	case 'B':
		kind = Bishop
	case 'R':
		kind = Rook
	case 'Q':
		kind = Queen
	case 'K':
		kind = King
	default:
		return NoMove, fmt.Errorf("invalid SAN: %q (pawn moves are not supported)", orig)
	}
	s = s[1:]

	dest, err := ParseOffset(s[len(s)-2:])
	if err != nil {
		return NoMove, fmt.Errorf("invalid SAN %q: %w", orig, err)
	}
	s = s[:len(s)-2]

	// Parse disambiguation (file, rank, or both)
	disambigFile, disambigRank := -1, -1
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'h':
			disambigFile = int(c - 'a')
		case c >= '1' && c <= '8':
			disambigRank = int(c - '1')
		default:
			return NoMove, fmt.Errorf("invalid SAN: %q", orig)
		}
	}

	legal, err := b.LegalMoves()
	if err != nil {
		return NoMove, err
	}

	match := NoMove
	for _, m := range legal.Slice() {
		if m.Dest != dest || b.cells[m.Source].Kind() != kind {
			continue
		}
		if disambigFile >= 0 && m.Source.File() != disambigFile {
			continue
		}
		if disambigRank >= 0 && m.Source.Rank() != disambigRank {
			continue
		}
		if isCapture && b.cells[m.Dest] == Empty {
			continue
		}
		if match != NoMove {
			return NoMove, fmt.Errorf("ambiguous SAN: %q", orig)
		}
		match = m
	}
	if match == NoMove {
		return NoMove, fmt.Errorf("no legal move matches %q", orig)
	}
	return match, nil
}

// MovesToSAN converts a sequence of moves, each played after the previous
// one, to SAN. The board is unchanged on return.
func (b *Board) MovesToSAN(moves []Move) ([]string, error) {
	result := make([]string, 0, len(moves))
	pushed := 0
	defer func() {
		for ; pushed > 0; pushed-- {
			_ = b.PopMove()
		}
	}()

	for _, m := range moves {
		s, err := b.SAN(m)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
		if err := b.PushMove(m); err != nil {
			return nil, err
		}
		pushed++
	}
	return result, nil
}

// SANs returns every legal move of the position in SAN, in generation order.
func (b *Board) SANs() ([]string, error) {
	legal, err := b.LegalMoves()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, legal.Len())
	for _, m := range legal.Slice() {
		s, err := b.san(m, legal)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
