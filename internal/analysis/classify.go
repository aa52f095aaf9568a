package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/mirasim/internal/dynamo"
)

type Class int

const (
	Divergent Class = iota
	FixedPoint
	Periodic
	QuasiPeriodic
	Chaotic
)

func (c Class) String() string {
	switch c {
	case Divergent:
		return "divergent"
	case FixedPoint:
		return "fixed point"
	case Periodic:
		return "periodic"
	case QuasiPeriodic:
		return "quasi-periodic"
	case Chaotic:
		return "chaotic"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ClassifyOptions tunes Classify. Zero fields take the defaults.
type ClassifyOptions struct {
	Steps        int
	Transient    int
	MaxPeriod    int
	Tolerance    float64
	Perturbation float64
	// ChaosThreshold is the exponent above which an aperiodic orbit counts
	// as chaotic.
	ChaosThreshold float64
}

func DefaultClassifyOptions() ClassifyOptions {
	return ClassifyOptions{
		Steps:          5000,
		Transient:      1000,
		MaxPeriod:      64,
		Tolerance:      1e-9,
		Perturbation:   1e-9,
		ChaosThreshold: 1e-3,
	}
}

type Report struct {
	Class    Class
	Period   int
	Lyapunov float64
	// DivergedAt is the step the orbit left the finite plane, or -1.
	DivergedAt int
}

func (r Report) String() string {
	switch r.Class {
	case Divergent:
		return fmt.Sprintf("%s at step %d", r.Class, r.DivergedAt)
	case Periodic:
		return fmt.Sprintf("%s (period %d, λ=%.4f)", r.Class, r.Period, r.Lyapunov)
	default:
		return fmt.Sprintf("%s (λ=%.4f)", r.Class, r.Lyapunov)
	}
}

// Classify iterates m from x0 and labels the long-term behaviour.
func Classify(m dynamo.Map, x0 dynamo.Point, opts ClassifyOptions) (Report, error) {
	def := DefaultClassifyOptions()
	if opts.Steps <= 0 {
		opts.Steps = def.Steps
	}
	if opts.Transient < 0 {
		opts.Transient = def.Transient
	}
	if opts.MaxPeriod <= 0 {
		opts.MaxPeriod = def.MaxPeriod
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.Perturbation <= 0 {
		opts.Perturbation = def.Perturbation
	}
	if opts.ChaosThreshold <= 0 {
		opts.ChaosThreshold = def.ChaosThreshold
	}

	tail := make([]dynamo.Point, 0, opts.Steps)
	p := x0
	for i := 0; i < opts.Transient+opts.Steps; i++ {
		p = m.Next(p)
		if !p.IsFinite() {
			return Report{Class: Divergent, DivergedAt: i, Lyapunov: math.Inf(1)}, nil
		}
		if i >= opts.Transient {
			tail = append(tail, p)
		}
	}

	if period := findPeriod(tail, opts.MaxPeriod, opts.Tolerance); period > 0 {
		class := Periodic
		if period == 1 {
			class = FixedPoint
		}
		return Report{Class: class, Period: period, Lyapunov: math.NaN(), DivergedAt: -1}, nil
	}

	lambda, err := LyapunovExponent(m, x0, opts.Steps, opts.Transient, opts.Perturbation)
	if err != nil {
		if errors.Is(err, dynamo.ErrDiverged) {
			var ge *dynamo.GenerationError
			step := -1
			if errors.As(err, &ge) {
				step = ge.Step
			}
			return Report{Class: Divergent, DivergedAt: step, Lyapunov: math.Inf(1)}, nil
		}
		return Report{}, err
	}

	class := QuasiPeriodic
	if lambda > opts.ChaosThreshold {
		class = Chaotic
	}
	return Report{Class: class, Lyapunov: lambda, DivergedAt: -1}, nil
}

// findPeriod returns the smallest p <= maxPeriod such that the last half of
// tail repeats with period p, or 0.
func findPeriod(tail []dynamo.Point, maxPeriod int, tol float64) int {
	n := len(tail)
	window := n / 2
	for p := 1; p <= maxPeriod && p < window; p++ {
		ok := true
		for i := n - window; i < n; i++ {
			a, b := tail[i], tail[i-p]
			scale := math.Max(1, math.Max(math.Abs(a.X), math.Abs(a.Y)))
			if math.Abs(a.X-b.X) > tol*scale || math.Abs(a.Y-b.Y) > tol*scale {
				ok = false
				break
			}
		}
		if ok {
			return p
		}
	}
	return 0
}
