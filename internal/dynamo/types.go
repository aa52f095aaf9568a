package dynamo

import (
	"fmt"
	"math"
	"strings"
)

// Point is a position in the phase plane.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Params configures one recurrence. Alpha and Sigma are usually in [0,1] and
// Mu in [-1,1], but any finite value is accepted.
type Params struct {
	Alpha float64 `yaml:"alpha" json:"alpha"`
	Sigma float64 `yaml:"sigma" json:"sigma"`
	Mu    float64 `yaml:"mu" json:"mu"`
}

// Validate rejects parameters that would poison every iteration.
func (p Params) Validate() error {
	for name, v := range p.GetParams() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidParams, name, v)
		}
	}
	return nil
}

func (p Params) GetParams() map[string]float64 {
	return map[string]float64{"alpha": p.Alpha, "sigma": p.Sigma, "mu": p.Mu}
}

func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "alpha":
		p.Alpha = value
	case "sigma":
		p.Sigma = value
	case "mu":
		p.Mu = value
	default:
		return fmt.Errorf("%w: unknown parameter %q", ErrParameterBounds, name)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("alpha=%g sigma=%g mu=%g", p.Alpha, p.Sigma, p.Mu)
}

// Variant selects the form of the recurrence.
type Variant int

const (
	// Standard includes the alpha/sigma damping term.
	Standard Variant = iota
	// Simple drops the alpha/sigma term.
	Simple
)

func (v Variant) String() string {
	switch v {
	case Simple:
		return "simple"
	case Standard:
		return "standard"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "":
		return Standard, nil
	case "simple":
		return Simple, nil
	}
	return Standard, fmt.Errorf("unknown variant: %s (available: simple, standard)", s)
}

func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Map advances a point by one step of a discrete dynamical system.
type Map interface {
	Next(p Point) Point
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Observer interface {
	OnStep(i int, p Point)
}

type Metric interface {
	Name() string
	Observe(i int, p Point)
	Value() float64
	Reset()
}

// Config describes one orbit request: Iterations steps from Initial, of
// which the first Skip are computed but not kept.
type Config struct {
	Initial    Point
	Iterations int
	Skip       int
}

const (
	DefaultIterations = 20000
)

func DefaultConfig() Config {
	return Config{
		Initial:    Point{X: 1, Y: 1},
		Iterations: DefaultIterations,
	}
}

func (c Config) Validate() error {
	if c.Iterations < 0 || c.Skip < 0 {
		return fmt.Errorf("%w: iterations=%d skip=%d", ErrInvalidIterations, c.Iterations, c.Skip)
	}
	if c.Skip > c.Iterations {
		return fmt.Errorf("%w: skip=%d iterations=%d", ErrSkipExceedsTotal, c.Skip, c.Iterations)
	}
	if !c.Initial.IsFinite() {
		return fmt.Errorf("%w: initial point %v", ErrInvalidParams, c.Initial)
	}
	return nil
}

type Result struct {
	Points []Point
	// FirstNonFinite indexes Points; -1 when the whole window stayed finite.
	FirstNonFinite int
	StepsTaken     int
	Metrics        map[string]float64
}

func (r *Result) Diverged() bool {
	return r.FirstNonFinite >= 0
}
