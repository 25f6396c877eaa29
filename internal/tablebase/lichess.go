package tablebase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hailam/chesskernel/internal/board"
	"github.com/hailam/chesskernel/internal/fen"
)

// DefaultLichessURL is the standard-chess endpoint of the Lichess tablebase.
const DefaultLichessURL = "https://tablebase.lichess.ovh/standard"

// LichessProber uses the Lichess tablebase API for online lookups.
// Note: This requires network access and has rate limits.
type LichessProber struct {
	BaseURL   string
	client    *http.Client
	maxPieces int
}

// NewLichessProber creates a new Lichess-based tablebase prober.
func NewLichessProber() *LichessProber {
	return &LichessProber{
		BaseURL: DefaultLichessURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		maxPieces: 7, // Lichess supports up to 7-piece tablebases
	}
}

// Lichess API response structure
type lichessResponse struct {
	Category string `json:"category"` // "win", "syzygy-win", "draw", "unknown", "loss", ...
	DTZ      int    `json:"dtz"`
	DTM      int    `json:"dtm"`
	Moves    []struct {
		UCI      string `json:"uci"`
		Category string `json:"category"` // from the opponent's point of view
		DTZ      int    `json:"dtz"`
	} `json:"moves"`
}

func (lp *LichessProber) query(ctx context.Context, b *board.Board) (*lichessResponse, bool, error) {
	if CountPieces(b) > lp.maxPieces {
		return nil, false, nil
	}

	u := lp.BaseURL + "?" + url.Values{"fen": {fen.Format(b)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := lp.client.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("tablebase: %s returned %s", lp.BaseURL, resp.Status)
	}

	var result lichessResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, false, fmt.Errorf("tablebase: decode response: %w", err)
	}
	return &result, true, nil
}

func (lp *LichessProber) Probe(ctx context.Context, b *board.Board) (ProbeResult, error) {
	result, ok, err := lp.query(ctx, b)
	if err != nil || !ok {
		return ProbeResult{}, err
	}

	wdl, ok := categoryToWDL(result.Category)
	if !ok {
		return ProbeResult{}, nil
	}
	return ProbeResult{
		Found: true,
		WDL:   wdl,
		DTZ:   result.DTZ,
		DTM:   result.DTM,
	}, nil
}

func (lp *LichessProber) ProbeRoot(ctx context.Context, b *board.Board) (RootResult, error) {
	result, ok, err := lp.query(ctx, b)
	if err != nil || !ok || len(result.Moves) == 0 {
		return RootResult{}, err
	}

	// Moves come best first
	best := result.Moves[0]
	wdl, ok := categoryToWDL(best.Category)
	if !ok {
		return RootResult{}, nil
	}
	move, err := board.ParseMove(best.UCI)
	if err != nil {
		return RootResult{}, fmt.Errorf("tablebase: %w", err)
	}
	legal, err := b.LegalMoves()
	if err != nil {
		return RootResult{}, err
	}
	if !legal.Contains(move.Source, move.Dest) {
		return RootResult{}, fmt.Errorf("tablebase: suggested move %s is not legal", best.UCI)
	}

	return RootResult{
		Found: true,
		Move:  move,
		WDL:   -wdl,
		DTZ:   best.DTZ,
	}, nil
}

func (lp *LichessProber) MaxPieces() int {
	return lp.maxPieces
}

// categoryToWDL maps a Lichess category to a result. ok is false for
// "unknown" and for categories the API may add later.
func categoryToWDL(category string) (wdl WDL, ok bool) {
	switch category {
	case "win":
		return WDLWin, true
	case "maybe-win", "cursed-win", "syzygy-win":
		return WDLCursedWin, true
	case "draw":
		return WDLDraw, true
	case "maybe-loss", "blessed-loss", "syzygy-loss":
		return WDLBlessedLoss, true
	case "loss":
		return WDLLoss, true
	default:
		return WDLDraw, false
	}
}
