package viz

import (
	"fmt"
	"math"

	"github.com/san-kum/mirasim/internal/dynamo"
)

const (
	DefaultWidth   = 800
	DefaultHeight  = 800
	DefaultPadding = 50
)

// Viewport is the drawing surface geometry in device pixels.
type Viewport struct {
	Width   float64 `yaml:"width" json:"width"`
	Height  float64 `yaml:"height" json:"height"`
	Padding float64 `yaml:"padding" json:"padding"`
}

func DefaultViewport() Viewport {
	return Viewport{Width: DefaultWidth, Height: DefaultHeight, Padding: DefaultPadding}
}

func (v Viewport) SpanX() float64 { return v.Width - 2*v.Padding }
func (v Viewport) SpanY() float64 { return v.Height - 2*v.Padding }

func (v Viewport) Validate() error {
	for _, f := range []float64{v.Width, v.Height, v.Padding} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite geometry %+v", dynamo.ErrInvalidViewport, v)
		}
	}
	if v.Padding < 0 {
		return fmt.Errorf("%w: negative padding %g", dynamo.ErrInvalidViewport, v.Padding)
	}
	if v.SpanX() <= 0 || v.SpanY() <= 0 {
		return fmt.Errorf("%w: %gx%g with padding %g", dynamo.ErrInvalidViewport, v.Width, v.Height, v.Padding)
	}
	return nil
}

// Transform maps data space into device space. Min lands on (OriginX,
// OriginY), which is the padded corner unless the axis was degenerate.
type Transform struct {
	Viewport Viewport
	Min      dynamo.Point
	RangeX   float64
	RangeY   float64
	OriginX  float64
	OriginY  float64
}

// Scale derives the transform that fits b into the padded viewport. An axis
// with zero extent gets a unit range and is centred, so a fixed-point orbit
// lands mid-viewport instead of dividing by zero.
func Scale(b Bounds, vp Viewport) (Transform, error) {
	if err := vp.Validate(); err != nil {
		return Transform{}, err
	}

	t := Transform{
		Viewport: vp,
		Min:      b.Min,
		RangeX:   b.Width(),
		RangeY:   b.Height(),
		OriginX:  vp.Padding,
		OriginY:  vp.Padding,
	}
	if t.RangeX == 0 {
		t.RangeX = 1
		t.OriginX += vp.SpanX() / 2
	}
	if t.RangeY == 0 {
		t.RangeY = 1
		t.OriginY += vp.SpanY() / 2
	}

	if math.IsNaN(t.RangeX) || math.IsNaN(t.RangeY) || math.IsInf(t.RangeX, 0) || math.IsInf(t.RangeY, 0) {
		return Transform{}, fmt.Errorf("%w: bounds %+v", dynamo.ErrDiverged, b)
	}
	return t, nil
}

// X maps a data x coordinate; bounds.Min.X lands exactly on the padding and
// bounds.Max.X exactly on Width-Padding.
func (t Transform) X(x float64) float64 {
	return (x-t.Min.X)/t.RangeX*t.Viewport.SpanX() + t.OriginX
}

func (t Transform) Y(y float64) float64 {
	return (y-t.Min.Y)/t.RangeY*t.Viewport.SpanY() + t.OriginY
}

func (t Transform) Apply(p dynamo.Point) (float64, float64) {
	return t.X(p.X), t.Y(p.Y)
}
