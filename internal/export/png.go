package export

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"

	"github.com/san-kum/mirasim/internal/viz"
)

// PNGSurface is an antialiased raster surface backed by an RGBA image.
type PNGSurface struct {
	img *image.RGBA
	gc  *draw2dimg.GraphicContext
}

func NewPNGSurface(width, height int) *PNGSurface {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gc := draw2dimg.NewGraphicContext(img)
	// discs may overlap; even-odd would punch holes where they do
	gc.SetFillRule(draw2d.FillRuleWinding)
	return &PNGSurface{img: img, gc: gc}
}

// NewPNGSurfaceFor sizes the surface to a viewport, rounding up.
func NewPNGSurfaceFor(vp viz.Viewport) *PNGSurface {
	return NewPNGSurface(ceilInt(vp.Width), ceilInt(vp.Height))
}

func (s *PNGSurface) Image() *image.RGBA { return s.img }

func (s *PNGSurface) SetFillColor(c color.Color) { s.gc.SetFillColor(c) }

func (s *PNGSurface) FillRect(x, y, w, h float64) {
	s.gc.BeginPath()
	draw2dkit.Rectangle(s.gc, x, y, x+w, y+h)
	s.gc.Fill()
}

func (s *PNGSurface) BeginPath() { s.gc.BeginPath() }

func (s *PNGSurface) MoveTo(x, y float64) { s.gc.MoveTo(x, y) }

func (s *PNGSurface) Arc(cx, cy, r, startAngle, endAngle float64) {
	s.gc.ArcTo(cx, cy, r, r, startAngle, endAngle-startAngle)
}

func (s *PNGSurface) Fill() { s.gc.Fill() }

func (s *PNGSurface) Encode(w io.Writer) error {
	return png.Encode(w, s.img)
}

func (s *PNGSurface) Save(path string) error {
	return draw2dimg.SaveToPngFile(path, s.img)
}

func ceilInt(f float64) int {
	n := int(f)
	if float64(n) < f {
		n++
	}
	return n
}

var _ viz.Surface = (*PNGSurface)(nil)
