package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/chesskernel/internal/board"
)

// Theme defines the color scheme.
type Theme struct {
	LightSquare color.RGBA
	DarkSquare  color.RGBA
	LastMove    color.RGBA
	Check       color.RGBA
	Background  color.RGBA
	Text        color.RGBA
}

// DefaultTheme returns the default color theme.
func DefaultTheme() Theme {
	return Theme{
		LightSquare: color.RGBA{240, 217, 181, 255}, // Tan
		DarkSquare:  color.RGBA{181, 136, 99, 255},  // Brown
		LastMove:    color.RGBA{180, 190, 100, 90},
		Check:       color.RGBA{255, 100, 100, 180},
		Background:  color.RGBA{40, 44, 52, 255},
		Text:        color.RGBA{220, 220, 220, 255},
	}
}

// MinSquareSize is the smallest square size NewRenderer accepts.
const MinSquareSize = 12

// Renderer draws boards. It is not safe for concurrent use.
type Renderer struct {
	Theme   Theme
	Flipped bool // draw with rank 8 at the bottom

	squareSize int
	margin     int
	glyphs     map[board.Square]*image.RGBA
	face       font.Face
}

// NewRenderer rasterizes the piece glyphs and the label font for squares of
// squareSize pixels.
func NewRenderer(squareSize int) (*Renderer, error) {
	if squareSize < MinSquareSize {
		return nil, fmt.Errorf("render: square size %d below minimum %d", squareSize, MinSquareSize)
	}

	glyphs, err := loadGlyphs(squareSize)
	if err != nil {
		return nil, err
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: load font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(squareSize) / 3,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("render: load font: %w", err)
	}

	return &Renderer{
		Theme:      DefaultTheme(),
		squareSize: squareSize,
		margin:     squareSize / 2,
		glyphs:     glyphs,
		face:       face,
	}, nil
}

// SquareSize returns the size of one board square in pixels.
func (r *Renderer) SquareSize() int {
	return r.squareSize
}

// Size returns the width and height of rendered images.
func (r *Renderer) Size() int {
	return 8*r.squareSize + 2*r.margin
}

// squareRect returns the pixel rectangle of the square at file, rank.
func (r *Renderer) squareRect(file, rank int) image.Rectangle {
	col, row := file, 7-rank
	if r.Flipped {
		col, row = 7-file, rank
	}
	x := r.margin + col*r.squareSize
	y := r.margin + row*r.squareSize
	return image.Rect(x, y, x+r.squareSize, y+r.squareSize)
}

// Image draws the board: squares, last move, a king in check, pieces and
// coordinate labels.
func (r *Renderer) Image(b *board.Board) *image.RGBA {
	size := r.Size()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(r.Theme.Background), image.Point{}, xdraw.Src)

	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			c := r.Theme.DarkSquare
			if (file+rank)%2 == 1 {
				c = r.Theme.LightSquare
			}
			xdraw.Draw(img, r.squareRect(file, rank), image.NewUniform(c), image.Point{}, xdraw.Src)
		}
	}

	if m, ok := b.LastMove(); ok {
		r.highlight(img, m.Source, r.Theme.LastMove)
		r.highlight(img, m.Dest, r.Theme.LastMove)
	}
	if b.IsCurrentPlayerInCheck() {
		r.highlight(img, b.KingPos(b.SideToMove()), r.Theme.Check)
	}

	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq, err := b.GetSquare(board.NewOffset(file, rank))
			if err != nil {
				continue
			}
			glyph := r.glyphs[sq]
			if glyph == nil {
				continue
			}
			rect := r.squareRect(file, rank)
			xdraw.Draw(img, rect, glyph, image.Point{}, xdraw.Over)
		}
	}

	r.drawLabels(img)
	return img
}

// highlight blends c over the square at o.
func (r *Renderer) highlight(img *image.RGBA, o board.Offset, c color.RGBA) {
	if !o.IsValid() {
		return
	}
	xdraw.Draw(img, r.squareRect(o.File(), o.Rank()), image.NewUniform(c), image.Point{}, xdraw.Over)
}

// drawLabels writes file letters below and rank numbers left of the board.
func (r *Renderer) drawLabels(img *image.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(r.Theme.Text),
		Face: r.face,
	}
	ascent := r.face.Metrics().Ascent.Ceil()

	for i := 0; i < 8; i++ {
		file := string(rune('a' + i))
		rect := r.squareRect(i, 0)
		w := d.MeasureString(file).Ceil()
		x := rect.Min.X + (r.squareSize-w)/2
		y := r.margin + 8*r.squareSize + (r.margin+ascent)/2
		d.Dot = fixed.P(x, y)
		d.DrawString(file)

		rank := string(rune('1' + i))
		rect = r.squareRect(0, i)
		w = d.MeasureString(rank).Ceil()
		x = (r.margin - w) / 2
		y = rect.Min.Y + (r.squareSize+ascent)/2
		d.Dot = fixed.P(x, y)
		d.DrawString(rank)
	}
}

// WritePNG encodes the board diagram as PNG.
func (r *Renderer) WritePNG(w io.Writer, b *board.Board) error {
	return png.Encode(w, r.Image(b))
}
