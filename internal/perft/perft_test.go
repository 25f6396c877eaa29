package perft

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dylhunn/dragontoothmg"

	"github.com/hailam/chesskernel/internal/board"
	"github.com/hailam/chesskernel/internal/fen"
)

func mustParse(t *testing.T, s string) *board.Board {
	t.Helper()
	b, err := fen.Parse(s)
	if err != nil {
		t.Fatalf("fen.Parse(%q): %v", s, err)
	}
	return b
}

func TestCount(t *testing.T) {
	tests := []struct {
		fen      string
		depth    int
		expected int64
	}{
		{fen.StartFEN, 0, 1},
		{fen.StartFEN, 1, 5},
		{fen.StartFEN, 2, 25},
		{fen.StartFEN, 3, 170},
		{"k7/8/8/8/8/8/8/7K w - - 0 1", 2, 9},
		{"R6k/8/6K1/8/8/8/8/8 b - - 0 1", 3, 0},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%s/%d", tc.fen, tc.depth), func(t *testing.T) {
			b := mustParse(t, tc.fen)
			key := b.Key()
			got, err := Count(b, tc.depth)
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
			if b.Key() != key || b.Depth() != 0 {
				t.Error("board not restored")
			}
		})
	}
}

func TestCountPawnFails(t *testing.T) {
	b := mustParse(t, "4k3/8/8/8/8/8/4P3/4K3 b - - 0 1")
	key := b.Key()
	// Black has no pawns, so the failure comes one ply down.
	_, err := Count(b, 2)
	if !errors.Is(err, board.ErrNotImplemented) {
		t.Fatalf("error = %v, want ErrNotImplemented", err)
	}
	if b.Key() != key || b.Depth() != 0 {
		t.Error("board not restored after failure")
	}
}

func TestDivide(t *testing.T) {
	b := mustParse(t, "k7/8/8/3q4/8/2N5/8/1B2K2R w - - 0 1")
	entries, err := Divide(b, 2)
	if err != nil {
		t.Fatalf("Divide: %v", err)
	}
	ml, err := b.LegalMoves()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != ml.Len() {
		t.Fatalf("%d entries, %d root moves", len(entries), ml.Len())
	}
	for i, e := range entries {
		if e.Move != ml.Get(i) {
			t.Errorf("entry %d is %v, generation order has %v", i, e.Move, ml.Get(i))
		}
	}

	total, err := Count(b, 2)
	if err != nil {
		t.Fatal(err)
	}
	if Total(entries) != total {
		t.Errorf("divide total %d, Count %d", Total(entries), total)
	}

	if _, err := Divide(b, 0); err == nil {
		t.Error("Divide(0) should fail")
	}
}

func TestDivideMatchesDragontooth(t *testing.T) {
	const s = "r3k2r/8/8/8/8/8/8/R3K2R w - - 0 1"
	const depth = 3

	entries, err := Divide(mustParse(t, s), depth)
	if err != nil {
		t.Fatal(err)
	}

	ref := dragontoothmg.ParseFen(s)
	want := map[string]int64{}
	for _, m := range ref.GenerateLegalMoves() {
		unapply := ref.Apply(m)
		want[m.String()] = referenceCount(&ref, depth-1)
		unapply()
	}

	for _, d := range Diff(entries, want) {
		t.Errorf("divide mismatch %v", d)
	}
}

func referenceCount(b *dragontoothmg.Board, depth int) int64 {
	if depth == 0 {
		return 1
	}
	var nodes int64
	for _, m := range b.GenerateLegalMoves() {
		unapply := b.Apply(m)
		nodes += referenceCount(b, depth-1)
		unapply()
	}
	return nodes
}

func TestDiff(t *testing.T) {
	got := []Entry{
		{Move: board.NewMove(board.E1, board.E2), Nodes: 5},
		{Move: board.NewMove(board.E1, board.D1), Nodes: 4},
		{Move: board.NewMove(board.E1, board.F1), Nodes: 5},
	}
	want := map[string]int64{"e1e2": 5, "e1d1": 5, "e1d2": 5}

	diffs := Diff(got, want)
	expected := []Mismatch{
		{Move: "e1d1", Got: 4, Want: 5},
		{Move: "e1d2", Got: -1, Want: 5},
		{Move: "e1f1", Got: 5, Want: -1},
	}
	if len(diffs) != len(expected) {
		t.Fatalf("diffs = %v, want %v", diffs, expected)
	}
	for i := range expected {
		if diffs[i] != expected[i] {
			t.Errorf("diff %d = %v, want %v", i, diffs[i], expected[i])
		}
	}
}

// memCache is a concurrency-safe in-memory Cache.
type memCache struct {
	mu    sync.Mutex
	nodes map[string]int64
	saves int
}

func newMemCache() *memCache {
	return &memCache{nodes: map[string]int64{}}
}

func (c *memCache) LoadPerft(key uint64, depth int) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.nodes[fmt.Sprintf("%x/%d", key, depth)]
	return n, ok, nil
}

func (c *memCache) SavePerft(key uint64, depth int, nodes int64, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes[fmt.Sprintf("%x/%d", key, depth)] = nodes
	c.saves++
	return nil
}

func TestRunnerMatchesCount(t *testing.T) {
	for _, s := range []string{
		fen.StartFEN,
		"k7/8/8/3q4/8/2N5/8/1B2K2R w - - 0 1",
		"1n2k1n1/8/8/8/8/8/8/1N2K1N1 b - - 0 1",
	} {
		t.Run(s, func(t *testing.T) {
			b := mustParse(t, s)
			want, err := Count(b, 3)
			if err != nil {
				t.Fatal(err)
			}

			for _, workers := range []int{1, 4, 0} {
				r := &Runner{Workers: workers}
				res, err := r.Run(context.Background(), b, 3)
				if err != nil {
					t.Fatalf("Run(workers=%d): %v", workers, err)
				}
				if res.Nodes != want {
					t.Errorf("Run(workers=%d) = %d, want %d", workers, res.Nodes, want)
				}
				if res.Cached {
					t.Error("result marked cached without a cache")
				}
			}
			if b.Depth() != 0 {
				t.Error("Run modified the caller's board")
			}
		})
	}
}

func TestRunnerCache(t *testing.T) {
	b := mustParse(t, "k7/8/8/3q4/8/2N5/8/1B2K2R w - - 0 1")
	cache := newMemCache()
	r := &Runner{Workers: 2, Cache: cache}

	first, err := r.Run(context.Background(), b, 3)
	if err != nil {
		t.Fatal(err)
	}
	if first.Cached {
		t.Fatal("first run came from an empty cache")
	}
	// One save per root move plus the root itself.
	if want := len(first.Entries) + 1; cache.saves != want {
		t.Errorf("%d saves, want %d", cache.saves, want)
	}

	second, err := r.Run(context.Background(), b, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || second.Nodes != first.Nodes {
		t.Errorf("second run cached=%v nodes=%d, want cached %d", second.Cached, second.Nodes, first.Nodes)
	}
}

func TestRunnerCancelled(t *testing.T) {
	b := mustParse(t, "k7/8/8/3q4/8/2N5/8/1B2K2R w - - 0 1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Workers: 2}
	if _, err := r.Run(ctx, b, 4); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRunnerErrors(t *testing.T) {
	r := &Runner{}
	if _, err := r.Run(context.Background(), board.NewBoard(), 0); err == nil {
		t.Error("depth 0 should fail")
	}

	b := mustParse(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if _, err := r.Run(context.Background(), b, 2); !errors.Is(err, board.ErrNotImplemented) {
		t.Errorf("error = %v, want ErrNotImplemented", err)
	}
}
