package board

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
)

// place puts pieces on a board, failing the test on error.
func place(t *testing.T, b *Board, pieces map[Offset]Square) {
	t.Helper()
	for o, sq := range pieces {
		if err := b.SetSquare(o, sq); err != nil {
			t.Fatalf("SetSquare(%v, %v): %v", o, sq, err)
		}
	}
}

// countKings checks the one-king-per-side invariant against the grid.
func countKings(t *testing.T, b *Board) {
	t.Helper()
	white, black := 0, 0
	for o := Offset(0); o < BoardCells; o++ {
		switch b.cells[o] {
		case WhiteKing:
			white++
			if b.KingPos(White) != o {
				t.Errorf("white king on %v but cached at %v", o, b.KingPos(White))
			}
		case BlackKing:
			black++
			if b.KingPos(Black) != o {
				t.Errorf("black king on %v but cached at %v", o, b.KingPos(Black))
			}
		}
	}
	if white != 1 || black != 1 {
		t.Errorf("found %d white and %d black kings", white, black)
	}
}

func TestClear(t *testing.T) {
	b := NewBoard()
	if b.SideToMove() != White {
		t.Errorf("side to move = %v, want White", b.SideToMove())
	}
	if sq, _ := b.GetSquare(E1); sq != WhiteKing {
		t.Errorf("e1 = %v, want K", sq)
	}
	if sq, _ := b.GetSquare(E8); sq != BlackKing {
		t.Errorf("e8 = %v, want k", sq)
	}

	occupied := 0
	for o := Offset(0); o < BoardCells; o++ {
		sq := b.cells[o]
		if !o.IsValid() {
			if sq != OffBoard {
				t.Errorf("border cell %d = %v, want OffBoard", o, sq)
			}
			continue
		}
		if sq != Empty {
			occupied++
		}
	}
	if occupied != 2 {
		t.Errorf("%d occupied cells, want 2", occupied)
	}

	place(t, b, map[Offset]Square{D4: WhiteQueen})
	if err := b.PushMove(NewMove(D4, D5)); err != nil {
		t.Fatalf("PushMove: %v", err)
	}
	b.Clear(false)
	if b.SideToMove() != Black || b.Depth() != 0 {
		t.Errorf("after Clear(false): side %v depth %d", b.SideToMove(), b.Depth())
	}
	if sq, _ := b.GetSquare(D5); sq != Empty {
		t.Errorf("d5 = %v after Clear, want empty", sq)
	}
	if b.Key() != b.computeKey() {
		t.Error("key out of sync after Clear")
	}
}

func TestGetSquareInvalidOffset(t *testing.T) {
	b := NewBoard()
	for _, o := range []Offset{-1, 0, 20, 29, 30, 99, 100, 119, 120, 500} {
		if _, err := b.GetSquare(o); !errors.Is(err, ErrInvalidOffset) {
			t.Errorf("GetSquare(%d) error = %v, want ErrInvalidOffset", o, err)
		}
	}
}

func TestSetSquare(t *testing.T) {
	t.Run("InvalidOffset", func(t *testing.T) {
		b := NewBoard()
		if err := b.SetSquare(10, WhiteRook); !errors.Is(err, ErrInvalidOffset) {
			t.Errorf("error = %v, want ErrInvalidOffset", err)
		}
	})

	t.Run("InvalidValue", func(t *testing.T) {
		b := NewBoard()
		for _, v := range []Square{OffBoard, squareCount, 200} {
			if err := b.SetSquare(D4, v); !errors.Is(err, ErrInvalidValue) {
				t.Errorf("SetSquare(d4, %d) error = %v, want ErrInvalidValue", v, err)
			}
		}
	})

	t.Run("KingRelocates", func(t *testing.T) {
		b := NewBoard()
		place(t, b, map[Offset]Square{A1: WhiteKing})
		if sq, _ := b.GetSquare(E1); sq != Empty {
			t.Errorf("e1 = %v after relocating the king, want empty", sq)
		}
		if b.KingPos(White) != A1 {
			t.Errorf("white king cached at %v, want a1", b.KingPos(White))
		}
		place(t, b, map[Offset]Square{A1: WhiteKing})
		countKings(t, b)
		if b.Key() != b.computeKey() {
			t.Error("key out of sync")
		}
	})

	t.Run("KingMissing", func(t *testing.T) {
		tests := []struct {
			name  string
			at    Offset
			value Square
		}{
			{"OverwriteWhiteKing", E1, WhiteRook},
			{"EmptyBlackKing", E8, Empty},
			{"WhiteKingOnBlackKing", E8, WhiteKing},
			{"BlackKingOnWhiteKing", E1, BlackKing},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				b := NewBoard()
				place(t, b, map[Offset]Square{D4: BlackRook})
				before := b.cells
				key := b.Key()

				err := b.SetSquare(tt.at, tt.value)
				if !errors.Is(err, ErrKingMissing) {
					t.Fatalf("error = %v, want ErrKingMissing", err)
				}
				if b.cells != before || b.Key() != key {
					t.Error("failed SetSquare changed the board")
				}
				countKings(t, b)
			})
		}
	})

	t.Run("EmptyAndCapture", func(t *testing.T) {
		b := NewBoard()
		place(t, b, map[Offset]Square{D4: WhiteKnight})
		place(t, b, map[Offset]Square{D4: BlackBishop})
		place(t, b, map[Offset]Square{D4: Empty})
		if sq, _ := b.GetSquare(D4); sq != Empty {
			t.Errorf("d4 = %v, want empty", sq)
		}
		if b.Key() != NewBoard().Key() {
			t.Error("key differs from a fresh board after clearing d4")
		}
	})
}

func TestPushPopMove(t *testing.T) {
	b := NewBoard()
	place(t, b, map[Offset]Square{A1: WhiteRook, A7: BlackKnight})

	capture := NewMove(A1, A7)
	if err := b.PushMove(capture); err != nil {
		t.Fatalf("PushMove: %v", err)
	}
	if sq, _ := b.GetSquare(A7); sq != WhiteRook {
		t.Errorf("a7 = %v, want R", sq)
	}
	if sq, _ := b.GetSquare(A1); sq != Empty {
		t.Errorf("a1 = %v, want empty", sq)
	}
	if b.SideToMove() != Black || b.Depth() != 1 {
		t.Errorf("side %v depth %d, want Black 1", b.SideToMove(), b.Depth())
	}

	kingStep := NewMove(E8, F8)
	if err := b.PushMove(kingStep); err != nil {
		t.Fatalf("PushMove: %v", err)
	}
	if b.KingPos(Black) != F8 {
		t.Errorf("black king cached at %v, want f8", b.KingPos(Black))
	}
	countKings(t, b)

	if err := b.PopMove(); err != nil {
		t.Fatalf("PopMove: %v", err)
	}
	if b.KingPos(Black) != E8 {
		t.Errorf("black king cached at %v after pop, want e8", b.KingPos(Black))
	}
	if err := b.PopMove(); err != nil {
		t.Fatalf("PopMove: %v", err)
	}
	if sq, _ := b.GetSquare(A7); sq != BlackKnight {
		t.Errorf("a7 = %v after pop, want n", sq)
	}
	if sq, _ := b.GetSquare(A1); sq != WhiteRook {
		t.Errorf("a1 = %v after pop, want R", sq)
	}
	if b.SideToMove() != White || b.Depth() != 0 {
		t.Errorf("side %v depth %d, want White 0", b.SideToMove(), b.Depth())
	}
	if err := b.PopMove(); !errors.Is(err, ErrEmptyUndoStack) {
		t.Errorf("PopMove on empty stack error = %v, want ErrEmptyUndoStack", err)
	}
}

func TestPushMoveErrors(t *testing.T) {
	tests := []struct {
		name string
		move Move
		want error
	}{
		{"BlackPieceOnWhiteTurn", NewMove(D5, D4), ErrIllegalMover},
		{"EmptySource", NewMove(C3, C4), ErrIllegalMover},
		{"OwnPiece", NewMove(A1, E1), ErrIllegalMover},
		{"CaptureKing", NewMove(A8, E8), ErrIllegalMover},
		{"OffBoard", NewMove(A1, 11), ErrInvalidOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard()
			place(t, b, map[Offset]Square{A1: WhiteRook, A8: WhiteRook, D5: BlackQueen})
			before := b.cells
			err := b.PushMove(tt.move)
			if !errors.Is(err, tt.want) {
				t.Fatalf("PushMove(%v) error = %v, want %v", tt.move, err, tt.want)
			}
			if b.cells != before || b.Depth() != 0 || b.SideToMove() != White {
				t.Error("rejected PushMove changed the board")
			}
		})
	}
}

func TestWithMovePopsOnEveryPath(t *testing.T) {
	b := NewBoard()
	key := b.Key()

	sentinel := errors.New("probe failed")
	err := b.WithMove(NewMove(E1, E2), func() error {
		if b.Depth() != 1 {
			t.Errorf("depth inside probe = %d, want 1", b.Depth())
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("WithMove error = %v, want probe error", err)
	}
	if b.Depth() != 0 || b.Key() != key {
		t.Error("board not restored after failing probe")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = b.WithMove(NewMove(E1, D1), func() error { panic("boom") })
	}()
	if b.Depth() != 0 || b.Key() != key || b.KingPos(White) != E1 {
		t.Error("board not restored after panicking probe")
	}

	if err := b.WithMove(NewMove(E8, E7), func() error { return nil }); !errors.Is(err, ErrIllegalMover) {
		t.Errorf("WithMove with illegal mover error = %v", err)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	b := NewBoard()
	if err := b.PushMove(NewMove(E1, E2)); err != nil {
		t.Fatal(err)
	}
	c := b.Copy()
	if err := c.PopMove(); err != nil {
		t.Fatal(err)
	}
	if b.Depth() != 1 || b.KingPos(White) != E2 {
		t.Error("popping the copy changed the original")
	}
	if c.Key() == b.Key() {
		t.Error("copy key did not change after pop")
	}
}

func TestSetSideToMove(t *testing.T) {
	b := NewBoard()
	key := b.Key()
	if err := b.SetSideToMove(Black); err != nil {
		t.Fatal(err)
	}
	if b.Key() == key || b.Key() != b.computeKey() {
		t.Error("side to move not reflected in key")
	}
	if err := b.SetSideToMove(Nobody); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetSideToMove(Nobody) error = %v, want ErrInvalidValue", err)
	}
}

func TestStringDiagram(t *testing.T) {
	s := NewBoard().String()
	for _, want := range []string{"8  . . . . k . . .", "1  . . . . K . . .", "Side to move: White"} {
		if !strings.Contains(s, want) {
			t.Errorf("diagram missing %q:\n%s", want, s)
		}
	}
}

func TestLastMove(t *testing.T) {
	b := NewBoard()
	if _, ok := b.LastMove(); ok {
		t.Error("fresh board reports a last move")
	}
	if err := b.PushMove(NewMove(E1, D1)); err != nil {
		t.Fatal(err)
	}
	if m, ok := b.LastMove(); !ok || m.String() != "e1d1" {
		t.Errorf("LastMove = %v, %v", m, ok)
	}
	if err := b.PopMove(); err != nil {
		t.Fatal(err)
	}
	if _, ok := b.LastMove(); ok {
		t.Error("LastMove survives PopMove")
	}
}

func TestPopMoveAfterSetSquare(t *testing.T) {
	t.Run("KingOnSource", func(t *testing.T) {
		b := NewBoard()
		place(t, b, map[Offset]Square{A1: WhiteRook})
		if err := b.PushMove(NewMove(A1, A2)); err != nil {
			t.Fatal(err)
		}
		place(t, b, map[Offset]Square{A1: BlackKing})
		before, key := b.cells, b.Key()

		if err := b.PopMove(); !errors.Is(err, ErrUndoMismatch) {
			t.Fatalf("PopMove error = %v, want ErrUndoMismatch", err)
		}
		if b.cells != before || b.Key() != key || b.Depth() != 1 || b.SideToMove() != Black {
			t.Error("rejected PopMove changed the board")
		}
		countKings(t, b)

		// Once the source is free again the move can be undone.
		place(t, b, map[Offset]Square{E8: BlackKing})
		if err := b.PopMove(); err != nil {
			t.Fatalf("PopMove: %v", err)
		}
		if sq, _ := b.GetSquare(A1); sq != WhiteRook {
			t.Errorf("a1 = %v, want R", sq)
		}
		countKings(t, b)
	})

	t.Run("MoverReplaced", func(t *testing.T) {
		b := NewBoard()
		if err := b.PushMove(NewMove(E1, E2)); err != nil {
			t.Fatal(err)
		}
		place(t, b, map[Offset]Square{A1: WhiteKing})
		place(t, b, map[Offset]Square{E2: BlackRook})
		if err := b.PopMove(); !errors.Is(err, ErrUndoMismatch) {
			t.Fatalf("PopMove error = %v, want ErrUndoMismatch", err)
		}
		countKings(t, b)
	})

	t.Run("SideChanged", func(t *testing.T) {
		b := NewBoard()
		if err := b.PushMove(NewMove(E1, E2)); err != nil {
			t.Fatal(err)
		}
		if err := b.SetSideToMove(White); err != nil {
			t.Fatal(err)
		}
		if err := b.PopMove(); !errors.Is(err, ErrUndoMismatch) {
			t.Fatalf("PopMove error = %v, want ErrUndoMismatch", err)
		}
		if b.KingPos(White) != E2 {
			t.Errorf("white king cached at %v, want e2", b.KingPos(White))
		}
	})
}

// TestRandomSequencesKeepKings mixes SetSquare, PushMove, PopMove and
// SetSideToMove at random, ignoring errors, and checks the king cache and the
// key after every call.
func TestRandomSequencesKeepKings(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	randomCell := func() Offset { return NewOffset(rng.Intn(8), rng.Intn(8)) }

	b := NewBoard()
	for i := 0; i < 20000; i++ {
		var op string
		switch r := rng.Intn(10); {
		case r < 3:
			op = "SetSquare"
			_ = b.SetSquare(randomCell(), Square(rng.Intn(int(squareCount))))
		case r < 6:
			op = "PushMove"
			m := NewMove(randomCell(), randomCell())
			if ml, err := b.LegalMoves(); err == nil && ml.Len() > 0 && rng.Intn(2) == 0 {
				m = ml.Get(rng.Intn(ml.Len()))
			}
			_ = b.PushMove(m)
		case r < 9:
			op = "PopMove"
			_ = b.PopMove()
		default:
			op = "SetSideToMove"
			_ = b.SetSideToMove(Side(rng.Intn(4)))
		}

		countKings(t, b)
		if b.Key() != b.computeKey() {
			t.Errorf("key out of sync")
		}
		if t.Failed() {
			t.Fatalf("invariant broken by %s at step %d:%v", op, i, b)
		}
	}
}
