// Package render draws board positions as PNG diagrams.
package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"github.com/hailam/chesskernel/internal/board"
)

// renderScale is the supersampling factor glyphs are rasterized at before
// being scaled down to the square size.
const renderScale = 3

// pieces lists every piece tag a glyph exists for.
var pieces = []board.Square{
	board.WhitePawn, board.WhiteKnight, board.WhiteBishop, board.WhiteRook, board.WhiteQueen, board.WhiteKing,
	board.BlackPawn, board.BlackKnight, board.BlackBishop, board.BlackRook, board.BlackQueen, board.BlackKing,
}

// loadGlyphs rasterizes every piece glyph at size x size pixels.
func loadGlyphs(size int) (map[board.Square]*image.RGBA, error) {
	glyphs := make(map[board.Square]*image.RGBA, len(pieces))
	for _, piece := range pieces {
		img, err := rasterizeGlyph(piece, size)
		if err != nil {
			return nil, err
		}
		glyphs[piece] = img
	}
	return glyphs, nil
}

func rasterizeGlyph(piece board.Square, size int) (*image.RGBA, error) {
	doc, err := glyphSVG(piece)
	if err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse glyph %v: %w", piece, err)
	}

	// Render at higher resolution for better quality when scaled
	renderSize := size * renderScale
	icon.SetTarget(0, 0, float64(renderSize), float64(renderSize))

	hi := image.NewRGBA(image.Rect(0, 0, renderSize, renderSize))
	scanner := rasterx.NewScannerGV(renderSize, renderSize, hi, hi.Bounds())
	raster := rasterx.NewDasher(renderSize, renderSize, scanner)
	icon.Draw(raster, 1.0)

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(out, out.Bounds(), hi, hi.Bounds(), xdraw.Src, nil)
	return out, nil
}
