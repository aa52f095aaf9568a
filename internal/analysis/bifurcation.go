package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// TunableMap is a map whose parameters can be swept.
type TunableMap interface {
	dynamo.Map
	dynamo.Configurable
}

// Axis picks which coordinate a bifurcation diagram records.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) of(p dynamo.Point) float64 {
	if a == AxisY {
		return p.Y
	}
	return p.X
}

// BifurcationPoint represents the attractor values for one parameter value.
type BifurcationPoint struct {
	Param  float64
	Values []float64
}

type BifurcationOptions struct {
	Param     string
	Min, Max  float64
	Steps     int
	Axis      Axis
	Initial   dynamo.Point
	Transient int
	Record    int
}

// BifurcationDiagram sweeps one parameter and records the distinct values
// (to 1e-3) the chosen coordinate visits after the transient. Divergent
// orbits yield an empty Values slice. The map's parameter is restored
// afterwards.
func BifurcationDiagram(m TunableMap, opts BifurcationOptions) ([]BifurcationPoint, error) {
	orig, ok := m.GetParams()[opts.Param]
	if !ok {
		return nil, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, opts.Param)
	}
	if opts.Transient < 0 || opts.Record <= 0 {
		return nil, fmt.Errorf("%w: transient=%d record=%d", dynamo.ErrInvalidIterations, opts.Transient, opts.Record)
	}
	steps := opts.Steps
	if steps <= 1 {
		steps = 2
	}
	paramStep := (opts.Max - opts.Min) / float64(steps-1)

	results := make([]BifurcationPoint, 0, steps)
	defer m.SetParam(opts.Param, orig)

	for i := 0; i < steps; i++ {
		param := opts.Min + float64(i)*paramStep
		if err := m.SetParam(opts.Param, param); err != nil {
			return nil, err
		}

		p := opts.Initial
		for t := 0; t < opts.Transient; t++ {
			p = m.Next(p)
		}

		values := make([]float64, 0, 64)
		seen := make(map[int64]bool)
		for t := 0; t < opts.Record; t++ {
			p = m.Next(p)
			if !p.IsFinite() {
				values = values[:0]
				break
			}
			val := opts.Axis.of(p)
			key := int64(math.Round(val * 1000))
			if !seen[key] {
				seen[key] = true
				values = append(values, val)
			}
		}

		results = append(results, BifurcationPoint{Param: param, Values: values})
	}

	return results, nil
}

// BifurcationToASCII plots parameter across and recorded values up.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, p := range data {
		for _, v := range p.Values {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := blankCanvas(width, height)
	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	return canvasString(canvas)
}

func blankCanvas(width, height int) [][]rune {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	return canvas
}

func canvasString(canvas [][]rune) string {
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
