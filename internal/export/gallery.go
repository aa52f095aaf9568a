package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/san-kum/mirasim/internal/dynamo"
	"github.com/san-kum/mirasim/internal/viz"
)

var ErrNoTiles = errors.New("export: gallery has no tiles")

// Tile is one cell of a contact sheet.
type Tile struct {
	Label  string
	Points []dynamo.Point
}

type GalleryOptions struct {
	Columns  int
	TileSize int
	// Render is the viewport each tile is drawn at before downsampling.
	Render   viz.Viewport
	Style    viz.Style
	FontSize float64
}

func DefaultGalleryOptions() GalleryOptions {
	return GalleryOptions{
		Columns:  4,
		TileSize: 240,
		Render:   viz.DefaultViewport(),
		Style:    viz.DefaultStyle(),
		FontSize: 12,
	}
}

// Gallery renders every tile at full size, downsamples it into a grid cell
// and writes its label underneath. Tiles whose points cannot be visualized
// are left blank with the error in the label.
func Gallery(tiles []Tile, opts GalleryOptions) (*image.RGBA, error) {
	if len(tiles) == 0 {
		return nil, ErrNoTiles
	}
	if opts.Columns <= 0 || opts.TileSize <= 0 {
		return nil, fmt.Errorf("export: invalid gallery layout %dx%d", opts.Columns, opts.TileSize)
	}
	if err := opts.Render.Validate(); err != nil {
		return nil, err
	}

	face, err := labelFace(opts.FontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	labelH := face.Metrics().Height.Ceil() + 4
	cellH := opts.TileSize + labelH
	rows := (len(tiles) + opts.Columns - 1) / opts.Columns
	sheet := image.NewRGBA(image.Rect(0, 0, opts.Columns*opts.TileSize, rows*cellH))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(opts.Style.Background), image.Point{}, draw.Src)

	for i, t := range tiles {
		col, row := i%opts.Columns, i/opts.Columns
		cell := image.Rect(col*opts.TileSize, row*cellH, (col+1)*opts.TileSize, row*cellH+opts.TileSize)

		label := t.Label
		surface := NewPNGSurfaceFor(opts.Render)
		if _, err := viz.Visualize(surface, t.Points, opts.Render, opts.Style); err != nil {
			label = fmt.Sprintf("%s (%v)", t.Label, err)
		} else {
			draw.CatmullRom.Scale(sheet, cell, surface.Image(), surface.Image().Bounds(), draw.Over, nil)
		}

		drawLabel(sheet, face, label, cell.Min.X+4, cell.Max.Y+labelH-4, opts.Style.Color)
	}

	return sheet, nil
}

func labelFace(size float64) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 12
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

func drawLabel(dst draw.Image, face font.Face, text string, x, baseline int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}
