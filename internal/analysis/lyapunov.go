package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// LyapunovExponent estimates the largest Lyapunov exponent of m along the
// orbit of x0. Two orbits start perturbation apart in x; after every step
// their separation is logged and the shadow orbit is pulled back to the
// original distance along the same direction.
//
//	λ ≈ (1/n) Σ ln(|δ_k| / δ_0)
//
// The first transient steps are iterated before measuring.
func LyapunovExponent(m dynamo.Map, x0 dynamo.Point, steps, transient int, perturbation float64) (float64, error) {
	return lyapunovAlong(m, x0, dynamo.Point{X: perturbation}, steps, transient)
}

// LyapunovSpectrum repeats the estimate with the initial perturbation along
// each axis in turn. Both usually converge to the largest exponent; a large
// gap between them means the run was too short.
func LyapunovSpectrum(m dynamo.Map, x0 dynamo.Point, steps, transient int, perturbation float64) ([]float64, error) {
	dirs := []dynamo.Point{{X: perturbation}, {Y: perturbation}}
	spectrum := make([]float64, len(dirs))
	for i, d := range dirs {
		l, err := lyapunovAlong(m, x0, d, steps, transient)
		if err != nil {
			return nil, err
		}
		spectrum[i] = l
	}
	return spectrum, nil
}

func lyapunovAlong(m dynamo.Map, x0, delta dynamo.Point, steps, transient int) (float64, error) {
	if steps <= 0 || transient < 0 {
		return 0, fmt.Errorf("%w: steps=%d transient=%d", dynamo.ErrInvalidIterations, steps, transient)
	}
	d0 := math.Hypot(delta.X, delta.Y)
	if d0 == 0 || math.IsNaN(d0) || math.IsInf(d0, 0) {
		return 0, fmt.Errorf("perturbation must be finite and non-zero, got %v", delta)
	}

	x := x0
	for i := 0; i < transient; i++ {
		x = m.Next(x)
	}
	if !x.IsFinite() {
		return 0, &dynamo.GenerationError{Step: transient, Point: x, Wrapped: dynamo.ErrDiverged}
	}

	xp := dynamo.Point{X: x.X + delta.X, Y: x.Y + delta.Y}
	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		x = m.Next(x)
		xp = m.Next(xp)
		if !x.IsFinite() || !xp.IsFinite() {
			return 0, &dynamo.GenerationError{Step: transient + i, Point: x, Wrapped: dynamo.ErrDiverged}
		}

		sep := math.Hypot(xp.X-x.X, xp.Y-x.Y)
		if sep == 0 {
			// orbits merged; restart the shadow along the original direction
			xp = dynamo.Point{X: x.X + delta.X, Y: x.Y + delta.Y}
			continue
		}
		sumLog += math.Log(sep / d0)
		count++

		scale := d0 / sep
		xp = dynamo.Point{X: x.X + (xp.X-x.X)*scale, Y: x.Y + (xp.Y-x.Y)*scale}
	}

	if count == 0 {
		return math.Inf(-1), nil
	}
	return sumLog / float64(count), nil
}
