package viz

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/san-kum/mirasim/internal/dynamo"
)

type call struct {
	op   string
	args []float64
}

// recorder is a Surface that keeps every call for inspection.
type recorder struct {
	calls []call
	fills []color.Color
}

func (r *recorder) SetFillColor(c color.Color) {
	r.fills = append(r.fills, c)
	r.calls = append(r.calls, call{op: "color"})
}
func (r *recorder) FillRect(x, y, w, h float64) {
	r.calls = append(r.calls, call{"rect", []float64{x, y, w, h}})
}
func (r *recorder) BeginPath()          { r.calls = append(r.calls, call{op: "begin"}) }
func (r *recorder) MoveTo(x, y float64) { r.calls = append(r.calls, call{"move", []float64{x, y}}) }
func (r *recorder) Arc(cx, cy, rad, a0, a1 float64) {
	r.calls = append(r.calls, call{"arc", []float64{cx, cy, rad, a0, a1}})
}
func (r *recorder) Fill() { r.calls = append(r.calls, call{op: "fill"}) }

func (r *recorder) count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func TestComputeBounds(t *testing.T) {
	points := []dynamo.Point{{X: 1, Y: -2}, {X: -3, Y: 4}, {X: 0.5, Y: 0.5}}
	b, err := ComputeBounds(points)
	if err != nil {
		t.Fatal(err)
	}
	want := Bounds{Min: dynamo.Point{X: -3, Y: -2}, Max: dynamo.Point{X: 1, Y: 4}}
	if b != want {
		t.Errorf("got %+v, want %+v", b, want)
	}
}

func TestComputeBoundsSinglePoint(t *testing.T) {
	p := dynamo.Point{X: 0.25, Y: -7}
	b, err := ComputeBounds([]dynamo.Point{p})
	if err != nil {
		t.Fatal(err)
	}
	if b.Min != p || b.Max != p {
		t.Errorf("single-point bounds %+v, want min == max == %v", b, p)
	}
}

func TestComputeBoundsRejects(t *testing.T) {
	tests := []struct {
		name   string
		points []dynamo.Point
		want   error
	}{
		{"empty", nil, dynamo.ErrEmptySequence},
		{"nan", []dynamo.Point{{X: 0, Y: 0}, {X: math.NaN(), Y: 1}}, dynamo.ErrDiverged},
		{"inf", []dynamo.Point{{X: math.Inf(1), Y: 0}}, dynamo.ErrDiverged},
		{"overflowing extent", []dynamo.Point{{X: -math.MaxFloat64, Y: 0}, {X: math.MaxFloat64, Y: 0}}, dynamo.ErrDiverged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeBounds(tt.points); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestScaleMapsCornersExactly(t *testing.T) {
	tests := []struct {
		b  Bounds
		vp Viewport
	}{
		{Bounds{dynamo.Point{X: -17.3299553493487, Y: -12.482896345938519}, dynamo.Point{X: 21.43749717322388, Y: 10.485290808680306}}, DefaultViewport()},
		{Bounds{dynamo.Point{X: 0, Y: 0}, dynamo.Point{X: 1, Y: 1}}, Viewport{Width: 640, Height: 480, Padding: 20}},
		{Bounds{dynamo.Point{X: -0.1, Y: 3}, dynamo.Point{X: 0.3, Y: 3.7}}, Viewport{Width: 101, Height: 57, Padding: 0}},
	}

	for _, tt := range tests {
		tr, err := Scale(tt.b, tt.vp)
		if err != nil {
			t.Fatal(err)
		}
		x0, y0 := tr.Apply(tt.b.Min)
		x1, y1 := tr.Apply(tt.b.Max)
		if x0 != tt.vp.Padding || y0 != tt.vp.Padding {
			t.Errorf("min mapped to (%v, %v), want (%v, %v)", x0, y0, tt.vp.Padding, tt.vp.Padding)
		}
		if x1 != tt.vp.Width-tt.vp.Padding || y1 != tt.vp.Height-tt.vp.Padding {
			t.Errorf("max mapped to (%v, %v), want (%v, %v)", x1, y1, tt.vp.Width-tt.vp.Padding, tt.vp.Height-tt.vp.Padding)
		}
	}
}

func TestScaleFactor(t *testing.T) {
	b := Bounds{Min: dynamo.Point{X: -1, Y: -2}, Max: dynamo.Point{X: 1, Y: 2}}
	tr, err := Scale(b, Viewport{Width: 300, Height: 500, Padding: 50})
	if err != nil {
		t.Fatal(err)
	}
	// one data unit spans 100 pixels on both axes
	if x, y := tr.Apply(dynamo.Point{X: 1, Y: 1}); x != 250 || y != 350 {
		t.Errorf("(1, 1) mapped to (%v, %v), want (250, 350)", x, y)
	}
	if x, y := tr.Apply(dynamo.Point{}); x != 150 || y != 250 {
		t.Errorf("origin mapped to (%v, %v)", x, y)
	}
}

func TestScaleDegenerateBounds(t *testing.T) {
	p := dynamo.Point{X: 3, Y: 3}
	points := []dynamo.Point{p, p, p, p}

	b, err := ComputeBounds(points)
	if err != nil {
		t.Fatal(err)
	}
	vp := DefaultViewport()
	tr, err := Scale(b, vp)
	if err != nil {
		t.Fatalf("degenerate bounds must scale: %v", err)
	}

	for _, r := range []float64{tr.RangeX, tr.RangeY} {
		if !(r > 0) || math.IsInf(r, 0) {
			t.Fatalf("range %v must be positive and finite", r)
		}
	}
	x, y := tr.Apply(p)
	if x != vp.Width/2 || y != vp.Height/2 {
		t.Errorf("fixed point mapped to (%v, %v), want viewport centre", x, y)
	}
}

func TestScaleDegenerateOneAxis(t *testing.T) {
	b := Bounds{Min: dynamo.Point{X: 1e20, Y: 0}, Max: dynamo.Point{X: 1e20, Y: 2}}
	vp := Viewport{Width: 200, Height: 200, Padding: 10}
	tr, err := Scale(b, vp)
	if err != nil {
		t.Fatal(err)
	}
	x, y := tr.Apply(b.Max)
	if x != 100 || y != 190 {
		t.Errorf("got (%v, %v), want (100, 190)", x, y)
	}
}

func TestScaleInvalidViewport(t *testing.T) {
	b := Bounds{Max: dynamo.Point{X: 1, Y: 1}}
	bad := []Viewport{
		{Width: 100, Height: 100, Padding: 50},
		{Width: 0, Height: 100, Padding: 0},
		{Width: 100, Height: 100, Padding: -1},
		{Width: math.NaN(), Height: 100},
	}
	for _, vp := range bad {
		if _, err := Scale(b, vp); !errors.Is(err, dynamo.ErrInvalidViewport) {
			t.Errorf("Scale(%+v) = %v, want ErrInvalidViewport", vp, err)
		}
	}
}

func TestRenderBatchesIntoOneFill(t *testing.T) {
	points := []dynamo.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 0.5, Y: 0.25}}
	b, _ := ComputeBounds(points)
	tr, _ := Scale(b, Viewport{Width: 100, Height: 100, Padding: 10})

	r := &recorder{}
	style := DefaultStyle()
	if err := Render(r, points, tr, style); err != nil {
		t.Fatal(err)
	}

	if r.count("fill") != 1 {
		t.Errorf("expected 1 fill, got %d", r.count("fill"))
	}
	if r.count("begin") != 1 {
		t.Errorf("expected 1 begin, got %d", r.count("begin"))
	}
	if r.count("arc") != len(points) || r.count("move") != len(points) {
		t.Errorf("expected %d arcs and moves, got %d, %d", len(points), r.count("arc"), r.count("move"))
	}

	if r.calls[1].op != "rect" || r.calls[1].args[2] != 100 || r.calls[1].args[3] != 100 {
		t.Errorf("expected full-viewport clear first, got %+v", r.calls[:2])
	}
	if r.fills[0] != style.Background || r.fills[len(r.fills)-1] != style.Color {
		t.Errorf("unexpected fill colours %v", r.fills)
	}

	last := r.calls[len(r.calls)-1]
	if last.op != "fill" {
		t.Errorf("fill must be the last call, got %s", last.op)
	}

	for _, c := range r.calls {
		if c.op == "arc" && (c.args[2] != style.Radius || c.args[4] != 2*math.Pi) {
			t.Errorf("unexpected arc %v", c.args)
		}
	}
}

func TestRenderNilSurface(t *testing.T) {
	if err := Render(nil, nil, Transform{}, DefaultStyle()); !errors.Is(err, ErrNilSurface) {
		t.Errorf("expected ErrNilSurface, got %v", err)
	}
}

func TestVisualizeLeavesSurfaceUntouchedOnError(t *testing.T) {
	tests := []struct {
		name   string
		points []dynamo.Point
		vp     Viewport
	}{
		{"empty", nil, DefaultViewport()},
		{"diverged", []dynamo.Point{{X: 1, Y: 1}, {X: math.Inf(1), Y: 0}}, DefaultViewport()},
		{"bad viewport", []dynamo.Point{{X: 1, Y: 1}, {X: 2, Y: 2}}, Viewport{Width: 10, Height: 10, Padding: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			if _, err := Visualize(r, tt.points, tt.vp, DefaultStyle()); err == nil {
				t.Fatal("expected error")
			}
			if len(r.calls) != 0 {
				t.Errorf("surface was touched: %+v", r.calls)
			}
		})
	}
}

func TestRenderRejectsRadius(t *testing.T) {
	points := []dynamo.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}
	b, _ := ComputeBounds(points)
	tr, _ := Scale(b, DefaultViewport())
	for _, rad := range []float64{1e17, math.NaN(), math.Inf(1), 0, -0.5} {
		style := DefaultStyle()
		style.Radius = rad
		r := &recorder{}
		if err := Render(r, points, tr, style); !errors.Is(err, dynamo.ErrInvalidStyle) {
			t.Errorf("radius %g: expected ErrInvalidStyle, got %v", rad, err)
		}
		if len(r.calls) != 0 {
			t.Errorf("radius %g: surface was touched: %+v", rad, r.calls)
		}
	}
}

func TestCanvasSurface(t *testing.T) {
	c := NewCanvas(10, 5)
	vp := c.Viewport(1)
	if vp.Width != 20 || vp.Height != 20 {
		t.Fatalf("unexpected viewport %+v", vp)
	}

	points := []dynamo.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}
	if _, err := Visualize(c, points, vp, DefaultStyle()); err != nil {
		t.Fatal(err)
	}
	if c.Count() != 2 {
		t.Errorf("expected 2 lit sub-pixels, got %d", c.Count())
	}

	c.SetFillColor(color.White)
	c.FillRect(0, 0, vp.Width, vp.Height)
	if c.Count() != 0 {
		t.Errorf("expected cleared canvas, got %d", c.Count())
	}

	style := DefaultStyle()
	style.Color = color.Transparent
	if _, err := Visualize(c, points, vp, style); err != nil {
		t.Fatal(err)
	}
	if c.Count() != 0 {
		t.Errorf("transparent ink should draw nothing, got %d", c.Count())
	}
}

func TestCanvasLargeDisc(t *testing.T) {
	c := NewCanvas(10, 5)
	c.BeginPath()
	c.Arc(10, 10, 2, 0, 2*math.Pi)
	c.SetFillColor(color.Black)
	c.Fill()
	if n := c.Count(); n < 9 || n > 16 {
		t.Errorf("radius-2 disc lit %d sub-pixels", n)
	}
}

func TestCanvasDiscClipsToGrid(t *testing.T) {
	c := NewCanvas(10, 5)
	c.BeginPath()
	c.Arc(10, 10, 1e17, 0, 2*math.Pi)
	c.SetFillColor(color.Black)
	c.Fill()
	if n, want := c.Count(), 10*2*5*4; n != want {
		t.Errorf("covering disc lit %d sub-pixels, want %d", n, want)
	}

	c = NewCanvas(10, 5)
	c.BeginPath()
	c.Arc(-1e9, -1e9, MaxRadius, 0, 2*math.Pi)
	c.Arc(10, 10, math.NaN(), 0, 2*math.Pi)
	c.SetFillColor(color.Black)
	c.Fill()
	if n := c.Count(); n != 0 {
		t.Errorf("off-grid and NaN discs lit %d sub-pixels", n)
	}
}

func BenchmarkRender20000(b *testing.B) {
	points := make([]dynamo.Point, 20000)
	for i := range points {
		points[i] = dynamo.Point{X: math.Cos(float64(i)), Y: math.Sin(float64(i) * 1.3)}
	}
	vp := DefaultViewport()
	r := &recorder{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.calls = r.calls[:0]
		if _, err := Visualize(r, points, vp, DefaultStyle()); err != nil {
			b.Fatal(err)
		}
	}
}
