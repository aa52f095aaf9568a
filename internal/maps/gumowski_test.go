package maps

import (
	"math"
	"testing"

	"github.com/san-kum/mirasim/internal/dynamo"
)

func TestG(t *testing.T) {
	tests := []struct {
		mu, x, want float64
	}{
		{0, 0, 0},
		{0, 1, 1},
		{1, 3, 3},
		{-0.5, 1, -0.5 + 1.5},
		{0.25, -2, -0.5 + 2*0.75*4/5},
	}

	for _, tt := range tests {
		if got := G(tt.mu, tt.x); math.Abs(got-tt.want) > 1e-15 {
			t.Errorf("G(%v, %v) = %v, want %v", tt.mu, tt.x, got, tt.want)
		}
	}
}

func TestNextPointDeterministic(t *testing.T) {
	params := dynamo.Params{Alpha: 0.8244391555, Sigma: 0.1774071817, Mu: -0.5116492043}
	p := dynamo.Point{X: 0.3, Y: -1.7}

	for _, v := range []dynamo.Variant{dynamo.Simple, dynamo.Standard} {
		first := NextPoint(p, params, v)
		for i := 0; i < 100; i++ {
			again := NextPoint(p, params, v)
			if math.Float64bits(again.X) != math.Float64bits(first.X) || math.Float64bits(again.Y) != math.Float64bits(first.Y) {
				t.Fatalf("%v: run %d gave %v, first gave %v", v, i, again, first)
			}
		}
	}
}

func TestSimpleVariantMuZeroClosedForm(t *testing.T) {
	params := dynamo.Params{Alpha: 0.7, Sigma: 0.3, Mu: 0}
	points := []dynamo.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 2}, {X: -1.5, Y: 0.5}, {X: 3, Y: -4}}

	for _, p := range points {
		got := NextPoint(p, params, dynamo.Simple)
		x := p.Y + 2*p.X*p.X/(1+p.X*p.X)
		y := -p.X + 2*x*x/(1+x*x)
		if math.Abs(got.X-x) > 1e-14 || math.Abs(got.Y-y) > 1e-14 {
			t.Errorf("NextPoint(%v) = %v, want (%v, %v)", p, got, x, y)
		}
	}
}

func TestSimpleVariantIgnoresAlphaSigma(t *testing.T) {
	p := dynamo.Point{X: 0.4, Y: 1.1}
	a := NextPoint(p, dynamo.Params{Alpha: 0.1, Sigma: 0.9, Mu: 0.3}, dynamo.Simple)
	b := NextPoint(p, dynamo.Params{Alpha: 0.9, Sigma: 0.1, Mu: 0.3}, dynamo.Simple)
	if a != b {
		t.Errorf("simple variant depends on alpha/sigma: %v vs %v", a, b)
	}
}

func TestStandardReducesToSimpleWithoutAlpha(t *testing.T) {
	p := dynamo.Point{X: -0.8, Y: 0.6}
	params := dynamo.Params{Alpha: 0, Sigma: 0.5, Mu: -0.2}
	if NextPoint(p, params, dynamo.Standard) != NextPoint(p, params, dynamo.Simple) {
		t.Error("standard with alpha=0 should match simple")
	}
}

func TestStandardFirstStep(t *testing.T) {
	m := NewClassic()
	got := m.Next(dynamo.Point{X: 1, Y: 1})

	if math.Abs(got.X-2.00855) > 1e-12 {
		t.Errorf("x = %.15f, want 2.00855", got.X)
	}
	if math.Abs(got.Y-0.27765590046152533) > 1e-12 {
		t.Errorf("y = %.15f, want 0.27765590046152533", got.Y)
	}
}

func TestDivergencePropagates(t *testing.T) {
	got := NextPoint(dynamo.Point{X: math.Inf(1), Y: 0}, dynamo.Params{Mu: 0.5}, dynamo.Standard)
	if got.IsFinite() {
		t.Errorf("expected non-finite output, got %v", got)
	}
}

func TestConfigurable(t *testing.T) {
	m := New(dynamo.Simple, dynamo.Params{})
	if err := m.SetParam("mu", -0.4); err != nil {
		t.Fatal(err)
	}
	if m.GetParams()["mu"] != -0.4 {
		t.Errorf("expected mu -0.4, got %v", m.GetParams()["mu"])
	}
	if err := m.SetParam("gamma", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func BenchmarkNextPointStandard(b *testing.B) {
	params := dynamo.Params{Alpha: 0.009, Sigma: 0.05, Mu: -0.801}
	p := dynamo.Point{X: 1, Y: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p = NextPoint(p, params, dynamo.Standard)
	}
}

func BenchmarkNextPointSimple(b *testing.B) {
	params := dynamo.Params{Mu: -0.801}
	p := dynamo.Point{X: 1, Y: 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p = NextPoint(p, params, dynamo.Simple)
	}
}
