package render

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessmate/internal/board"
)

// near compares colors with a little slack for anti-aliasing.
func near(t *testing.T, want color.RGBA, got color.Color, msg string) {
	t.Helper()
	r, g, b, _ := got.RGBA()
	diff := func(a uint8, b uint32) int {
		d := int(a) - int(b>>8)
		if d < 0 {
			d = -d
		}
		return d
	}
	if diff(want.R, r) > 3 || diff(want.G, g) > 3 || diff(want.B, b) > 3 {
		t.Errorf("%s: color = %v, want %v", msg, got, want)
	}
}

func TestSVG(t *testing.T) {
	g := board.NewGame()
	doc := SVG(g, Options{})

	assert.True(t, strings.HasPrefix(doc, "<svg"))
	assert.Contains(t, doc, `viewBox="0 0 384 384"`)
	assert.Equal(t, 32, strings.Count(doc, "<circle"))
	assert.Equal(t, 32, strings.Count(doc, "<text"))
	assert.NotContains(t, doc, hexColor(highlightSquare))

	doc = SVG(g, Options{Highlight: []string{"e2", "E4"}, Coordinates: true, SquareSize: 40})
	assert.Equal(t, 2, strings.Count(doc, hexColor(highlightSquare)))
	assert.Equal(t, 48, strings.Count(doc, "<text"))
	assert.Contains(t, doc, `viewBox="0 0 360 360"`)
}

func TestSizes(t *testing.T) {
	assert.Equal(t, 384, Options{}.Size())
	assert.Equal(t, 320, Options{SquareSize: 40}.Size())
	assert.Equal(t, 360, Options{SquareSize: 40, Coordinates: true}.Size())
}

func TestImageSquares(t *testing.T) {
	g := board.NewGame()
	g.Clear(false)
	g.Put(board.WhiteKing, "h1")
	g.Put(board.BlackKing, "a8")

	img, err := Image(g, Options{SquareSize: 40, Highlight: []string{"e4"}})
	require.NoError(t, err)
	require.Equal(t, 320, img.Bounds().Dx())

	// Corners of a8 (light) and b8 (dark), clear of the disc.
	near(t, lightSquare, img.At(2, 2), "a8")
	near(t, darkSquare, img.At(42, 2), "b8")
	// e4: file 4, fifth row from the top.
	near(t, highlightSquare, img.At(4*40+2, 4*40+2), "e4")

	// Inside the a8 disc, left of the letter.
	near(t, blackPiece, img.At(20-11, 20), "black disc")
	// Inside the h1 disc.
	near(t, whitePiece, img.At(7*40+20-11, 7*40+20), "white disc")
}

func TestImageFlip(t *testing.T) {
	g := board.NewGame()
	g.Clear(false)
	g.Put(board.WhiteKing, "h1")
	g.Put(board.BlackKing, "a8")

	img, err := Image(g, Options{SquareSize: 40, Flip: true})
	require.NoError(t, err)

	// h1 is now the top-left square.
	near(t, whitePiece, img.At(20-11, 20), "h1 disc")
	near(t, blackPiece, img.At(7*40+20-11, 7*40+20), "a8 disc")
}

func TestImageCoordinates(t *testing.T) {
	g := board.NewGame()
	img, err := Image(g, Options{SquareSize: 40, Coordinates: true})
	require.NoError(t, err)
	require.Equal(t, 360, img.Bounds().Dx())

	near(t, marginColor, img.At(1, 1), "margin")
	near(t, lightSquare, img.At(22, 22), "a8 corner")
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, board.NewGame(), Options{SquareSize: 16}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())
}
