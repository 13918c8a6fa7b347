package plot

import (
	"math"
	"strings"
)

// Canvas is a grid of braille cells, two dots wide and four dots tall each.
// Every dot belongs to a layer; a cell takes the color of the lowest layer
// that set a dot in it.
type Canvas struct {
	width  int
	height int
	cells  [][]uint8
	owner  [][]int
}

// NewCanvas returns an empty canvas of width x height cells.
func NewCanvas(width, height int) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c := &Canvas{width: width, height: height}
	c.cells = make([][]uint8, height)
	c.owner = make([][]int, height)
	for y := 0; y < height; y++ {
		c.cells[y] = make([]uint8, width)
		c.owner[y] = make([]int, width)
		for x := range c.owner[y] {
			c.owner[y][x] = -1
		}
	}
	return c
}

// DotWidth returns the horizontal dot resolution.
func (c *Canvas) DotWidth() int { return c.width * 2 }

// DotHeight returns the vertical dot resolution.
func (c *Canvas) DotHeight() int { return c.height * 4 }

// Set turns on the dot at (x, y). Out of range dots are ignored.
func (c *Canvas) Set(x, y, layer int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= c.height || cellX >= c.width {
		return
	}
	c.cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
	if o := c.owner[cellY][cellX]; o < 0 || layer < o {
		c.owner[cellY][cellX] = layer
	}
}

// Line draws from (x0, y0) to (x1, y1). When pattern is non-nil only dots
// whose x it accepts are set.
func (c *Canvas) Line(x0, y0, x1, y1, layer int, pattern func(x int) bool) {
	drawLine(x0, y0, x1, y1, func(x, y int) {
		if pattern == nil || pattern(x) {
			c.Set(x, y, layer)
		}
	})
}

// Cell returns the braille rune and owning layer of a cell, -1 when empty.
func (c *Canvas) Cell(x, y int) (rune, int) {
	if y < 0 || y >= c.height || x < 0 || x >= c.width {
		return brailleFromMask(0), -1
	}
	return brailleFromMask(c.cells[y][x]), c.owner[y][x]
}

// Lines renders each cell row. paint may color a run of cells that share
// a layer; it is not called for empty cells.
func (c *Canvas) Lines(paint func(layer int, s string) string) []string {
	lines := make([]string, c.height)
	for y := 0; y < c.height; y++ {
		var row strings.Builder
		var run strings.Builder
		runLayer := -1
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runLayer >= 0 && paint != nil {
				row.WriteString(paint(runLayer, run.String()))
			} else {
				row.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < c.width; x++ {
			ch, layer := c.Cell(x, y)
			if layer != runLayer {
				flush()
				runLayer = layer
			}
			run.WriteRune(ch)
		}
		flush()
		lines[y] = row.String()
	}
	return lines
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
