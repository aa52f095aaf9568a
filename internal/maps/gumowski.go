package maps

import "github.com/san-kum/mirasim/internal/dynamo"

// G is the nonlinear term of the Gumowski–Mira map. 1+x² never reaches zero.
func G(mu, x float64) float64 {
	x2 := x * x
	return mu*x + (2*(1-mu)*x2)/(1+x2)
}

// NextPoint applies one step of the recurrence. Non-finite values propagate;
// the caller decides what a diverged orbit means.
func NextPoint(p dynamo.Point, params dynamo.Params, variant dynamo.Variant) dynamo.Point {
	var x float64
	switch variant {
	case dynamo.Simple:
		x = p.Y + G(params.Mu, p.X)
	default:
		x = p.Y + params.Alpha*p.Y*(1-params.Sigma*p.Y*p.Y) + G(params.Mu, p.X)
	}
	return dynamo.Point{X: x, Y: -p.X + G(params.Mu, x)}
}

// GumowskiMira binds parameters and a variant into a dynamo.Map.
type GumowskiMira struct {
	Params  dynamo.Params
	Variant dynamo.Variant
}

func New(variant dynamo.Variant, params dynamo.Params) *GumowskiMira {
	return &GumowskiMira{Params: params, Variant: variant}
}

func NewClassic() *GumowskiMira {
	return New(dynamo.Standard, dynamo.Params{Alpha: 0.009, Sigma: 0.05, Mu: -0.801})
}

func (g *GumowskiMira) Next(p dynamo.Point) dynamo.Point {
	return NextPoint(p, g.Params, g.Variant)
}

func (g *GumowskiMira) GetParams() map[string]float64 { return g.Params.GetParams() }

func (g *GumowskiMira) SetParam(name string, value float64) error {
	return g.Params.SetParam(name, value)
}

func (g *GumowskiMira) String() string {
	return g.Variant.String() + " " + g.Params.String()
}

var (
	_ dynamo.Map          = (*GumowskiMira)(nil)
	_ dynamo.Configurable = (*GumowskiMira)(nil)
)
