package render

import (
	"fmt"
	"strings"

	"github.com/hailam/chesskernel/internal/board"
)

// Piece outlines on a 45x45 canvas. Placeholders in braces are filled in by
// glyphSVG.
var pieceShapes = map[board.PieceKind]string{
	board.Pawn: `
<circle cx="22.5" cy="15" r="5"/>
<path d="M 16,35 C 16,27 19,23 22.5,21 C 26,23 29,27 29,35 Z"/>`,

	board.Knight: `
<path d="M 14,35 L 16,25 C 13,23 11,19 14,14 L 18,10 L 20,7 L 22,10 C 28,10 32,15 32,22 L 31,35 Z"/>
<circle cx="18" cy="15" r="1.2" fill="{detail}" stroke="none"/>`,

	board.Bishop: `
<path d="M 15,35 C 15,29 17,25 17,22 C 14,19 16,12 22.5,8 C 29,12 31,19 28,22 C 28,25 30,29 30,35 Z"/>
<circle cx="22.5" cy="6" r="2.5"/>
<path d="M 20,17 L 25,17 M 22.5,14.5 L 22.5,19.5" fill="none" stroke="{detail}"/>`,

	board.Rook: `
<path d="M 12,35 L 12,31 L 14,31 L 14,16 L 12,16 L 12,10 L 16,10 L 16,12 L 20,12 L 20,10 L 25,10 L 25,12 L 29,12 L 29,10 L 33,10 L 33,16 L 31,16 L 31,31 L 33,31 L 33,35 Z"/>
<path d="M 14,16 L 31,16 M 14,31 L 31,31" fill="none" stroke="{detail}"/>`,

	board.Queen: `
<path d="M 10,35 L 12,27 L 9,13 L 16,24 L 17,10 L 22.5,24 L 28,10 L 29,24 L 36,13 L 33,27 L 35,35 Z"/>
<circle cx="9" cy="12" r="2"/>
<circle cx="17" cy="9" r="2"/>
<circle cx="28" cy="9" r="2"/>
<circle cx="36" cy="12" r="2"/>
<path d="M 12,29 L 33,29" fill="none" stroke="{detail}"/>`,

	board.King: `
<path d="M 22.5,4 L 22.5,13 M 18.5,8 L 26.5,8" fill="none"/>
<path d="M 12,35 L 12,28 C 8,22 12,15 18,18 L 22.5,14 L 27,18 C 33,15 37,22 33,28 L 33,35 Z"/>
<path d="M 12,28 L 33,28" fill="none" stroke="{detail}"/>`,
}

const glyphTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="45" height="45" viewBox="0 0 45 45">
<g fill="{fill}" stroke="{outline}" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round">
{shape}
<path d="M 10,38 L 35,38 L 35,35 L 10,35 Z"/>
</g>
</svg>`

// glyphSVG returns the SVG document for a piece.
func glyphSVG(piece board.Square) (string, error) {
	shape, ok := pieceShapes[piece.Kind()]
	if !ok {
		return "", fmt.Errorf("no glyph for %v", piece)
	}

	fill, outline, detail := "#ffffff", "#000000", "#000000"
	if piece.Side() == board.Black {
		fill, outline, detail = "#222222", "#000000", "#ffffff"
	}
	doc := strings.Replace(glyphTemplate, "{shape}", shape, 1)
	return strings.NewReplacer("{fill}", fill, "{outline}", outline, "{detail}", detail).Replace(doc), nil
}
