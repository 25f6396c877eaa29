package board

import "fmt"

// Score sentinels. The core never reads Move.Score; search and evaluation
// code layered on top uses these values.
const (
	Unscored   int16 = -2000
	BlackMates int16 = -1000
	Draw       int16 = 0
	WhiteMates int16 = +1000
	PosInf     int16 = +2000
)

// MaxMoves bounds the number of moves generated for one position.
const MaxMoves = 255

// Move carries a move's endpoints and an optional score.
type Move struct {
	Source Offset
	Dest   Offset
	Score  int16
}

// NoMove represents an invalid or null move.
var NoMove = Move{Source: NoOffset, Dest: NoOffset, Score: Unscored}

// NewMove creates an unscored move.
func NewMove(source, dest Offset) Move {
	return Move{Source: source, Dest: dest, Score: Unscored}
}

// String returns coordinate notation for the move (e.g., "e1e2").
func (m Move) String() string {
	if !m.Source.IsValid() || !m.Dest.IsValid() {
		return "0000"
	}
	return m.Source.String() + m.Dest.String()
}

// ParseMove parses coordinate notation ("e1e2").
func ParseMove(s string) (Move, error) {
	if len(s) != 4 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}
	from, err := ParseOffset(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseOffset(s[2:4])
	if err != nil {
		return NoMove, err
	}
	return NewMove(from, to), nil
}

// Unmove stores what PopMove needs to reverse one applied move.
type Unmove struct {
	Move     Move
	Captured Square // content of Move.Dest before the move, possibly Empty
}

// MoveList is a fixed-capacity list of moves to avoid allocations.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends a move, failing with ErrOverflow once MaxMoves is reached.
func (ml *MoveList) Add(m Move) error {
	if ml.count >= MaxMoves {
		return fmt.Errorf("%w: more than %d moves", ErrOverflow, MaxMoves)
	}
	ml.moves[ml.count] = m
	ml.count++
	return nil
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains reports whether the list holds a move with the same endpoints.
func (ml *MoveList) Contains(source, dest Offset) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i].Source == source && ml.moves[i].Dest == dest {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// Strings returns the moves in coordinate notation, in list order.
func (ml *MoveList) Strings() []string {
	out := make([]string, ml.count)
	for i := 0; i < ml.count; i++ {
		out[i] = ml.moves[i].String()
	}
	return out
}
