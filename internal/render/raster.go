package render

import (
	"image"
	"image/png"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontsOnce   sync.Once
	regularFont *opentype.Font
	boldFont    *opentype.Font
	fontsErr    error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regularFont, fontsErr = opentype.Parse(goregular.TTF); fontsErr != nil {
			fontsErr = errors.Wrap(fontsErr, "parse regular font")
			return
		}
		if boldFont, fontsErr = opentype.Parse(gobold.TTF); fontsErr != nil {
			fontsErr = errors.Wrap(fontsErr, "parse bold font")
		}
	})
	return fontsErr
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return face, errors.Wrap(err, "create font face")
}

// Image rasterizes the diagram: squares and piece discs through the SVG
// renderer, then letters with the Go fonts.
func Image(src PieceSource, opts Options) (*image.RGBA, error) {
	o := opts.withDefaults()
	size := o.Size()

	icon, err := oksvg.ReadIconStream(strings.NewReader(document(src, o, false)))
	if err != nil {
		return nil, errors.Wrap(err, "parse board svg")
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	if err := drawLabels(rgba, src, o); err != nil {
		return nil, err
	}
	return rgba, nil
}

func drawLabels(dst *image.RGBA, src PieceSource, o Options) error {
	if err := loadFonts(); err != nil {
		return err
	}

	pieceFace, err := newFace(boldFont, float64(o.SquareSize)*0.45)
	if err != nil {
		return err
	}
	defer pieceFace.Close()

	coordFace, err := newFace(regularFont, float64(o.SquareSize)/3)
	if err != nil {
		return err
	}
	defer coordFace.Close()

	for _, l := range o.labels(src) {
		face := coordFace
		if l.piece {
			face = pieceFace
		}
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(l.color),
			Face: face,
		}
		// Center horizontally on x and vertically on the cap height.
		advance := d.MeasureString(l.text)
		capHeight := face.Metrics().CapHeight
		d.Dot = fixed.Point26_6{
			X: fixed.I(l.x) - advance/2,
			Y: fixed.I(l.y) + capHeight/2,
		}
		d.DrawString(l.text)
	}
	return nil
}

// PNG writes the diagram to w as a PNG image.
func PNG(w io.Writer, src PieceSource, opts Options) error {
	img, err := Image(src, opts)
	if err != nil {
		return err
	}
	return errors.Wrap(png.Encode(w, img), "encode png")
}
