package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/mirasim/internal/viz"
)

// SVGSurface records drawing calls as SVG elements. Each Fill emits one
// <path> holding every subpath since the last BeginPath.
type SVGSurface struct {
	Width, Height float64

	fill color.Color
	path []byte
	body strings.Builder
}

func NewSVGSurface(vp viz.Viewport) *SVGSurface {
	return &SVGSurface{Width: vp.Width, Height: vp.Height, fill: color.Black}
}

func (s *SVGSurface) SetFillColor(c color.Color) { s.fill = c }

func (s *SVGSurface) FillRect(x, y, w, h float64) {
	hex, op := svgColor(s.fill)
	fmt.Fprintf(&s.body, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s" fill-opacity="%s"/>`+"\n",
		num(x), num(y), num(w), num(h), hex, num(op))
}

func (s *SVGSurface) BeginPath() { s.path = s.path[:0] }

func (s *SVGSurface) MoveTo(x, y float64) {
	s.path = append(s.path, 'M')
	s.path = appendPair(s.path, x, y)
}

// Arc appends an arc subpath. Full turns are split in two half arcs since a
// single SVG arc cannot start and end on the same point.
func (s *SVGSurface) Arc(cx, cy, r, startAngle, endAngle float64) {
	sweep := endAngle - startAngle
	sx, sy := cx+r*math.Cos(startAngle), cy+r*math.Sin(startAngle)
	s.path = append(s.path, 'M')
	s.path = appendPair(s.path, sx, sy)

	if math.Abs(sweep) >= 2*math.Pi {
		mx, my := cx-r*math.Cos(startAngle), cy-r*math.Sin(startAngle)
		s.path = appendArc(s.path, r, false, sweep > 0, mx, my)
		s.path = appendArc(s.path, r, false, sweep > 0, sx, sy)
		s.path = append(s.path, 'Z')
		return
	}

	ex, ey := cx+r*math.Cos(endAngle), cy+r*math.Sin(endAngle)
	s.path = appendArc(s.path, r, math.Abs(sweep) > math.Pi, sweep > 0, ex, ey)
}

func (s *SVGSurface) Fill() {
	if len(s.path) == 0 {
		return
	}
	hex, op := svgColor(s.fill)
	fmt.Fprintf(&s.body, `<path fill="%s" fill-opacity="%s" fill-rule="nonzero" d="%s"/>`+"\n", hex, num(op), s.path)
}

func (s *SVGSurface) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">
`, num(s.Width), num(s.Height), num(s.Width), num(s.Height))
	sb.WriteString(s.body.String())
	sb.WriteString("</svg>\n")
	return sb.String()
}

func (s *SVGSurface) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

func svgColor(c color.Color) (string, float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	cf := colorful.Color{R: float64(n.R) / 255, G: float64(n.G) / 255, B: float64(n.B) / 255}
	return cf.Hex(), float64(n.A) / 255
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func appendPair(b []byte, x, y float64) []byte {
	b = strconv.AppendFloat(b, x, 'f', 2, 64)
	b = append(b, ',')
	return strconv.AppendFloat(b, y, 'f', 2, 64)
}

func appendArc(b []byte, r float64, large, sweep bool, x, y float64) []byte {
	b = append(b, 'A')
	b = appendPair(b, r, r)
	b = append(b, " 0 "...)
	b = append(b, flag(large), ' ', flag(sweep), ' ')
	return appendPair(b, x, y)
}

func flag(v bool) byte {
	if v {
		return '1'
	}
	return '0'
}

var _ viz.Surface = (*SVGSurface)(nil)
