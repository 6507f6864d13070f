// Package render draws board diagrams as SVG documents and raster images.
package render

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hailam/chessmate/internal/board"
)

// PieceSource is anything that can report the piece on a square.
// *board.Game satisfies it.
type PieceSource interface {
	Get(square string) board.Piece
}

// Options control the diagram layout.
type Options struct {
	SquareSize  int      // Pixels per square (default 48)
	Flip        bool     // Draw with black at the bottom
	Coordinates bool     // Draw file and rank labels in a margin
	Highlight   []string // Squares to tint, e.g. the last move
}

const defaultSquareSize = 48

// Palette
var (
	lightSquare     = color.RGBA{0xf0, 0xd9, 0xb5, 0xff}
	darkSquare      = color.RGBA{0xb5, 0x88, 0x63, 0xff}
	highlightSquare = color.RGBA{0xcd, 0xd2, 0x6a, 0xff}
	marginColor     = color.RGBA{0xff, 0xff, 0xff, 0xff}
	labelColor      = color.RGBA{0x33, 0x33, 0x33, 0xff}
	whitePiece      = color.RGBA{0xff, 0xff, 0xff, 0xff}
	blackPiece      = color.RGBA{0x22, 0x22, 0x22, 0xff}
	outline         = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

func (o Options) withDefaults() Options {
	if o.SquareSize <= 0 {
		o.SquareSize = defaultSquareSize
	}
	return o
}

// margin is the width of the label border, zero without coordinates.
func (o Options) margin() int {
	if o.Coordinates {
		return o.SquareSize / 2
	}
	return 0
}

// Size returns the width (and height) of the diagram in pixels.
func (o Options) Size() int {
	o = o.withDefaults()
	return 8*o.SquareSize + 2*o.margin()
}

// cell is one square of the diagram in display order.
type cell struct {
	name  string
	x, y  int // top-left corner in pixels
	light bool
}

func (o Options) cells() []cell {
	out := make([]cell, 0, 64)
	m := o.margin()
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			file, rank := col, 7-row
			if o.Flip {
				file, rank = 7-col, row
			}
			sq := board.NewSquare(file, rank)
			out = append(out, cell{
				name:  sq.String(),
				x:     m + col*o.SquareSize,
				y:     m + row*o.SquareSize,
				light: sq.IsLight(),
			})
		}
	}
	return out
}

func (o Options) highlighted(square string) bool {
	for _, h := range o.Highlight {
		if strings.EqualFold(h, square) {
			return true
		}
	}
	return false
}

func (o Options) squareColor(c cell) color.RGBA {
	switch {
	case o.highlighted(c.name):
		return highlightSquare
	case c.light:
		return lightSquare
	default:
		return darkSquare
	}
}

// label is a piece letter or coordinate, centered on (x, y).
type label struct {
	text  string
	x, y  int
	color color.RGBA
	piece bool
}

// labels returns the text drawn over the shapes: piece letters and, with
// Coordinates, file letters below and rank digits left of the board.
func (o Options) labels(src PieceSource) []label {
	var out []label
	half := o.SquareSize / 2

	for _, c := range o.cells() {
		p := src.Get(c.name)
		if p == board.NoPiece {
			continue
		}
		col := blackPiece
		if p.Color() == board.Black {
			col = whitePiece
		}
		out = append(out, label{
			text:  strings.ToUpper(string(p.Type().Char())),
			x:     c.x + half,
			y:     c.y + half,
			color: col,
			piece: true,
		})
	}

	if !o.Coordinates {
		return out
	}
	m := o.margin()
	bottom := m + 8*o.SquareSize + m/2
	for i := 0; i < 8; i++ {
		file, rank := i, 7-i
		if o.Flip {
			file, rank = 7-i, i
		}
		out = append(out,
			label{text: string(rune('a' + file)), x: m + i*o.SquareSize + half, y: bottom, color: labelColor},
			label{text: string(rune('1' + rank)), x: m / 2, y: m + i*o.SquareSize + half, color: labelColor},
		)
	}
	return out
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// document builds the SVG markup. Text is optional because the rasterizer
// draws labels itself.
func document(src PieceSource, o Options, withText bool) string {
	size := o.Size()
	var sb strings.Builder

	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		size, size, size, size)
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", size, size, hexColor(marginColor))

	for _, c := range o.cells() {
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`+"\n",
			c.x, c.y, o.SquareSize, o.SquareSize, hexColor(o.squareColor(c)))
	}

	radius := float64(o.SquareSize) * 0.38
	stroke := float64(o.SquareSize) / 24
	half := o.SquareSize / 2
	for _, c := range o.cells() {
		p := src.Get(c.name)
		if p == board.NoPiece {
			continue
		}
		fill := whitePiece
		if p.Color() == board.Black {
			fill = blackPiece
		}
		fmt.Fprintf(&sb, `<circle cx="%d" cy="%d" r="%.2f" fill="%s" stroke="%s" stroke-width="%.2f"/>`+"\n",
			c.x+half, c.y+half, radius, hexColor(fill), hexColor(outline), stroke)
	}

	if withText {
		for _, l := range o.labels(src) {
			fontSize := o.SquareSize / 3
			weight := "normal"
			if l.piece {
				fontSize = o.SquareSize * 9 / 20
				weight = "bold"
			}
			fmt.Fprintf(&sb, `<text x="%d" y="%d" text-anchor="middle" dominant-baseline="central" `+
				`font-family="sans-serif" font-size="%d" font-weight="%s" fill="%s">%s</text>`+"\n",
				l.x, l.y, fontSize, weight, hexColor(l.color), l.text)
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// SVG returns a standalone SVG document of the position.
func SVG(src PieceSource, opts Options) string {
	return document(src, opts.withDefaults(), true)
}
