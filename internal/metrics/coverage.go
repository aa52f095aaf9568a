package metrics

import (
	"math"

	"github.com/san-kum/mirasim/internal/dynamo"
)

// Coverage is the fraction of cells of a grid x grid raster over the orbit's
// bounding box that contain at least one point. A fixed point scores
// 1/grid², a space-filling orbit approaches 1. Non-finite orbits score 0.
type Coverage struct {
	name   string
	grid   int
	points []dynamo.Point
	bad    bool
}

func NewCoverage(grid int) *Coverage {
	if grid < 1 {
		grid = 1
	}
	return &Coverage{name: "coverage", grid: grid}
}

func (c *Coverage) Name() string { return c.name }

func (c *Coverage) Observe(i int, p dynamo.Point) {
	if !p.IsFinite() {
		c.bad = true
		return
	}
	c.points = append(c.points, p)
}

func (c *Coverage) Value() float64 {
	if c.bad || len(c.points) == 0 {
		return 0
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range c.points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	w, h := maxX-minX, maxY-minY
	if math.IsInf(w, 0) || math.IsInf(h, 0) {
		return 0
	}

	cells := make(map[int]struct{})
	for _, p := range c.points {
		cells[cell(p.Y-minY, h, c.grid)*c.grid+cell(p.X-minX, w, c.grid)] = struct{}{}
	}
	return float64(len(cells)) / float64(c.grid*c.grid)
}

func (c *Coverage) Reset() {
	c.points = c.points[:0]
	c.bad = false
}

func cell(offset, extent float64, grid int) int {
	if extent == 0 {
		return 0
	}
	i := int(offset / extent * float64(grid))
	if i >= grid {
		i = grid - 1
	}
	return i
}
