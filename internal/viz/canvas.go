package viz

import (
	"image/color"
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type disc struct {
	x, y, r float64
}

// Canvas is a braille terminal canvas. Device coordinates are sub-pixels:
// the drawable area is (Width*2) x (Height*4). As a Surface it is
// monochrome: FillRect clears, Fill sets every sub-pixel a disc covers, and
// a fully transparent fill colour draws nothing.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	ink     bool
	pending []disc
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		ink:    true,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// Viewport returns the sub-pixel geometry of the canvas with the given padding.
func (c *Canvas) Viewport(padding float64) Viewport {
	return Viewport{Width: float64(c.Width * 2), Height: float64(c.Height * 4), Padding: padding}
}

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	mask := ^rune(pixelMap[y%4][x%2])
	c.Grid[row][col] &= mask
	if c.Grid[row][col] < 0x2800 {
		c.Grid[row][col] = 0x2800
	}
}

// Count returns the number of set sub-pixels.
func (c *Canvas) Count() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			bits := int(r - 0x2800)
			for ; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) SetFillColor(col color.Color) {
	_, _, _, a := col.RGBA()
	c.ink = a != 0
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	x0, y0, x1, y1 := c.clip(x, y, x+w, y+h)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			c.Unset(px, py)
		}
	}
}

func (c *Canvas) BeginPath() {
	c.pending = c.pending[:0]
}

func (c *Canvas) MoveTo(x, y float64) {}

// Arc records a full disc; partial arcs are drawn as discs too since the
// renderer only ever asks for full circles.
func (c *Canvas) Arc(cx, cy, r, startAngle, endAngle float64) {
	c.pending = append(c.pending, disc{cx, cy, r})
}

func (c *Canvas) Fill() {
	if !c.ink {
		return
	}
	for _, d := range c.pending {
		c.fillDisc(d)
	}
}

func (c *Canvas) fillDisc(d disc) {
	if d.r < 1 {
		c.Set(int(math.Floor(d.x)), int(math.Floor(d.y)))
		return
	}
	r2 := d.r * d.r
	x0, y0, x1, y1 := c.clip(d.x-d.r, d.y-d.r, d.x+d.r+1, d.y+d.r+1)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			dx, dy := float64(px)+0.5-d.x, float64(py)+0.5-d.y
			if dx*dx+dy*dy <= r2 {
				c.Set(px, py)
			}
		}
	}
}

// clip converts a device-space box to sub-pixel loop bounds inside the grid.
// NaN edges give an empty range.
func (c *Canvas) clip(minX, minY, maxX, maxY float64) (x0, y0, x1, y1 int) {
	w, h := float64(c.Width*2), float64(c.Height*4)
	lo := func(v, limit float64) int {
		if !(v > 0) {
			return 0
		}
		return int(math.Floor(math.Min(v, limit)))
	}
	hi := func(v, limit float64) int {
		if !(v > 0) {
			return 0
		}
		return int(math.Ceil(math.Min(v, limit)))
	}
	return lo(minX, w), lo(minY, h), hi(maxX, w), hi(maxY, h)
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

var _ Surface = (*Canvas)(nil)
