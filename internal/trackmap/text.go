// Package trackmap draws the lap path and cursor markers on a track map.
package trackmap

import (
	"math"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/lapview/internal/lapsync"
	"github.com/verte-zerg/lapview/internal/model"
	"github.com/verte-zerg/lapview/internal/plot"
)

// TextOptions sizes the braille map in terminal cells.
type TextOptions struct {
	Width  int
	Height int
	Color  bool
}

// RenderText draws lap paths and cursor dots as braille cells. The
// projection is rescaled to fit the canvas; its extents and rotation are kept.
func RenderText(p lapsync.Projection, laps []*model.Lap, dots []lapsync.Dot, opts TextOptions) []string {
	canvas := plot.NewCanvas(opts.Width, opts.Height)
	dotsW, dotsH := float64(canvas.DotWidth()), float64(canvas.DotHeight())
	fitted := p.Resized(dotsW, dotsH)
	side := math.Min(dotsW, dotsH)
	offX := (dotsW - side) / 2
	offY := (dotsH - side) / 2

	toDot := func(pt lapsync.Point) (int, int) {
		return int(math.Round(pt.X + offX)), int(math.Round(pt.Y + offY))
	}

	// Markers use the lowest layers so they win over paths in shared cells.
	markerLayer := func(lap int) int { return lap }
	pathLayer := func(lap int) int { return len(laps) + lap }

	for i := len(laps) - 1; i >= 0; i-- {
		lap := laps[i]
		if lap == nil {
			continue
		}
		prevX, prevY, havePrev := 0, 0, false
		for _, f := range lap.Frames {
			if !finite(f.CarX) || !finite(f.CarZ) {
				havePrev = false
				continue
			}
			x, y := toDot(fitted.ProjectFrame(f))
			if havePrev {
				canvas.Line(prevX, prevY, x, y, pathLayer(i), nil)
			} else {
				canvas.Set(x, y, pathLayer(i))
			}
			prevX, prevY, havePrev = x, y, true
		}
	}
	for _, d := range dots {
		if !validDot(d, laps) {
			continue
		}
		f := laps[d.Lap].Frames[d.FrameIndex]
		x, y := toDot(fitted.ProjectFrame(f))
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				canvas.Set(x+dx, y+dy, markerLayer(d.Lap))
			}
		}
	}

	var paint func(int, string) string
	if opts.Color {
		styles := make([]lipgloss.Style, 2*len(laps))
		for i := range laps {
			c := lipgloss.Color(lapsync.StyleForLap(i).Color)
			styles[markerLayer(i)] = lipgloss.NewStyle().Foreground(c).Bold(true)
			styles[pathLayer(i)] = lipgloss.NewStyle().Foreground(c).Faint(true)
		}
		paint = func(layer int, s string) string {
			if layer < 0 || layer >= len(styles) {
				return s
			}
			return styles[layer].Render(s)
		}
	}
	return canvas.Lines(paint)
}

func validDot(d lapsync.Dot, laps []*model.Lap) bool {
	if d.Lap < 0 || d.Lap >= len(laps) || laps[d.Lap] == nil {
		return false
	}
	return d.FrameIndex >= 0 && d.FrameIndex < len(laps[d.Lap].Frames)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
