package viz

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/curvesim/internal/geometry"
)

// Braille patterns hold 2x4 dots per cell:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// Unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille dot grid with a world-to-dot mapping. A terminal cell
// is about twice as tall as wide, so one dot is close to square and both axes
// share a scale.
type Canvas struct {
	Width, Height int
	Grid          [][]rune

	scale float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		scale:  1,
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Fit scales the world box [-halfW, halfW] x [-halfH, halfH] into the canvas
// with a one-dot margin.
func (c *Canvas) Fit(halfW, halfH float64) {
	sx := float64(c.Width*2-2) / (2 * halfW)
	sy := float64(c.Height*4-2) / (2 * halfH)
	c.scale = math.Min(sx, sy)
}

// ToDot maps a world point to dot coordinates, y pointing down.
func (c *Canvas) ToDot(p r2.Vec) (int, int) {
	x := float64(c.Width) + p.X*c.scale
	y := float64(c.Height*2) - p.Y*c.scale
	return int(math.Round(x)), int(math.Round(y))
}

// Set sets a dot at (x, y). The canvas is (Width*2) x (Height*4) dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
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

// DrawEllipse traces e as a closed polygon of the given number of segments.
func (c *Canvas) DrawEllipse(e geometry.Ellipse, segments int) {
	if segments < 3 {
		segments = 3
	}
	px, py := c.ToDot(e.Position(0))
	for k := 1; k <= segments; k++ {
		x, y := c.ToDot(e.Position(geometry.TwoPi * float64(k) / float64(segments)))
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
}

// DrawDisc fills the dots within world radius r of p, at least one dot.
func (c *Canvas) DrawDisc(p r2.Vec, r float64) {
	cx, cy := c.ToDot(p)
	rd := int(math.Ceil(r * c.scale))
	for dy := -rd; dy <= rd; dy++ {
		for dx := -rd; dx <= rd; dx++ {
			if dx*dx+dy*dy <= rd*rd {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
