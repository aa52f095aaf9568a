package viz

import (
	"fmt"
	"math"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// Bounds is the axis-aligned box around a point sequence.
type Bounds struct {
	Min, Max dynamo.Point
}

func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// ComputeBounds folds the sequence into its min/max box. Empty input and
// orbits that left the finite plane are rejected instead of producing a box
// that would corrupt scaling.
func ComputeBounds(points []dynamo.Point) (Bounds, error) {
	if len(points) == 0 {
		return Bounds{}, dynamo.ErrEmptySequence
	}

	b := Bounds{
		Min: dynamo.Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: dynamo.Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for i, p := range points {
		if !p.IsFinite() {
			return Bounds{}, &dynamo.GenerationError{Step: i, Point: p, Wrapped: dynamo.ErrDiverged}
		}
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}

	if w, h := b.Width(), b.Height(); math.IsInf(w, 0) || math.IsInf(h, 0) {
		return Bounds{}, fmt.Errorf("%w: extent %gx%g overflows", dynamo.ErrDiverged, w, h)
	}

	return b, nil
}
