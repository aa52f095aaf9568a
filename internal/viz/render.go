package viz

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/san-kum/mirasim/internal/dynamo"
)

var ErrNilSurface = errors.New("viz: nil drawing surface")

// Surface is an immediate-mode 2D canvas.
type Surface interface {
	SetFillColor(c color.Color)
	FillRect(x, y, w, h float64)
	BeginPath()
	MoveTo(x, y float64)
	Arc(cx, cy, r, startAngle, endAngle float64)
	Fill()
}

// Style controls how points are drawn.
type Style struct {
	Color      color.Color
	Background color.Color
	Radius     float64
}

// MaxRadius bounds the disc radius in device pixels.
const MaxRadius = 256

func (s Style) Validate() error {
	if math.IsNaN(s.Radius) || math.IsInf(s.Radius, 0) || s.Radius <= 0 || s.Radius > MaxRadius {
		return fmt.Errorf("%w: radius %g not in (0, %d]", dynamo.ErrInvalidStyle, s.Radius, MaxRadius)
	}
	return nil
}

func DefaultStyle() Style {
	return Style{
		Color:      color.NRGBA{R: 0, G: 0, B: 0, A: 204},
		Background: color.White,
		Radius:     0.75,
	}
}

// Render clears the viewport and draws one disc per point. All discs share a
// single path and a single fill call.
func Render(s Surface, points []dynamo.Point, t Transform, style Style) error {
	if s == nil {
		return ErrNilSurface
	}
	if err := style.Validate(); err != nil {
		return err
	}

	s.SetFillColor(style.Background)
	s.FillRect(0, 0, t.Viewport.Width, t.Viewport.Height)

	s.BeginPath()
	for _, p := range points {
		x, y := t.Apply(p)
		s.MoveTo(x, y)
		s.Arc(x, y, style.Radius, 0, 2*math.Pi)
	}
	s.SetFillColor(style.Color)
	s.Fill()
	return nil
}

// Visualize runs bounds, scale and render. On error nothing has been drawn,
// so whatever the surface showed before stays visible.
func Visualize(s Surface, points []dynamo.Point, vp Viewport, style Style) (Transform, error) {
	if s == nil {
		return Transform{}, ErrNilSurface
	}

	b, err := ComputeBounds(points)
	if err != nil {
		return Transform{}, err
	}

	t, err := Scale(b, vp)
	if err != nil {
		return Transform{}, err
	}

	return t, Render(s, points, t, style)
}

// Discard is a Surface that draws nothing, for runs that only need the
// transform or the generated points.
var Discard Surface = discard{}

type discard struct{}

func (discard) SetFillColor(color.Color)                    {}
func (discard) FillRect(x, y, w, h float64)                 {}
func (discard) BeginPath()                                  {}
func (discard) MoveTo(x, y float64)                         {}
func (discard) Arc(cx, cy, r, startAngle, endAngle float64) {}
func (discard) Fill()                                       {}
