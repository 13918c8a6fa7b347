// Package plot renders lap telemetry as braille text graphs and tables.
package plot

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/verte-zerg/lapview/internal/lapsync"
	"github.com/verte-zerg/lapview/internal/model"
)

// Trace is one line on a graph: values keyed by normalized position.
type Trace struct {
	Name  string
	Xs    []float64
	Ys    []float64
	Style lapsync.LapStyle
}

// Options configures a graph.
type Options struct {
	Title string
	// Width and Height are the plot area in terminal cells.
	Width  int
	Height int
	Zoom   lapsync.ZoomWindow
	// Cursor is drawn as a vertical line when HasCursor is set.
	Cursor    float64
	HasCursor bool
	// ZeroLine includes zero in the value range and marks it.
	ZeroLine bool
	// Empty is shown instead of the graph when no trace has data.
	Empty string
	Color bool
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelWidth      = 8
	axisSeparator       = " │ "
	terminalWidthBackup = 80
	defaultEmpty        = "no data"
)

const (
	cursorColor = "#A3A3A3"
	zeroColor   = "#525252"
	deltaColor  = "#22C55E"
)

type dashPattern struct {
	period int
	on     int
}

var dashPatterns = map[lapsync.LineStyle]dashPattern{
	lapsync.Solid:  {period: 1, on: 1},
	lapsync.Dashed: {period: 6, on: 3},
}

func (p dashPattern) shouldPlot(x int) bool {
	if p.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%p.period < p.on
}

// Render draws the traces over the zoom window and returns the output lines:
// a title line, one line per cell row and a legend.
func Render(traces []Trace, opts Options) []string {
	width := opts.Width
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	height := opts.Height
	if height <= 0 {
		height = defaultPlotHeight
	}
	zoom := opts.Zoom
	if !zoom.Valid() {
		zoom = lapsync.DefaultZoom()
	}

	minVal, maxVal, ok := valueRange(traces, opts.ZeroLine)
	if !ok {
		empty := opts.Empty
		if empty == "" {
			empty = defaultEmpty
		}
		return []string{opts.Title, "  " + empty}
	}

	canvas := NewCanvas(width, height)
	dotsW, dotsH := canvas.DotWidth(), canvas.DotHeight()
	cursorLayer := len(traces)
	zeroLayer := len(traces) + 1

	for i, tr := range traces {
		pattern := dashPatterns[tr.Style.Line]
		n := len(tr.Xs)
		if len(tr.Ys) < n {
			n = len(tr.Ys)
		}
		prevX, prevY := -1, -1
		for j := 0; j < n; j++ {
			if !finite(tr.Xs[j]) || !finite(tr.Ys[j]) {
				continue
			}
			px := columnFor(tr.Xs[j], zoom, dotsW)
			py := valueToRow(tr.Ys[j], minVal, maxVal, dotsH)
			if prevX >= 0 {
				canvas.Line(prevX, prevY, px, py, i, pattern.shouldPlot)
			} else if pattern.shouldPlot(px) {
				canvas.Set(px, py, i)
			}
			prevX, prevY = px, py
		}
	}
	if opts.ZeroLine && minVal < 0 && maxVal > 0 {
		row := valueToRow(0, minVal, maxVal, dotsH)
		for x := 0; x < dotsW; x += 2 {
			canvas.Set(x, row, zeroLayer)
		}
	}
	if opts.HasCursor && zoom.Contains(opts.Cursor) {
		col := columnFor(opts.Cursor, zoom, dotsW)
		for y := 0; y < dotsH; y++ {
			canvas.Set(col, y, cursorLayer)
		}
	}

	styles := make([]lipgloss.Style, zeroLayer+1)
	for i, tr := range traces {
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(tr.Style.Color))
	}
	styles[cursorLayer] = lipgloss.NewStyle().Foreground(lipgloss.Color(cursorColor))
	styles[zeroLayer] = lipgloss.NewStyle().Foreground(lipgloss.Color(zeroColor))
	var paint func(int, string) string
	if opts.Color {
		paint = func(layer int, s string) string {
			return styles[layer].Render(s)
		}
	}

	labels := makeAxisLabels(height, minVal, maxVal)
	lines := make([]string, 0, height+2)
	lines = append(lines, opts.Title)
	for y, row := range canvas.Lines(paint) {
		lines = append(lines, fmt.Sprintf("%*s%s%s", axisLabelWidth, labels[y], axisSeparator, row))
	}
	lines = append(lines, renderLegend(traces, styles, opts.Color))
	return lines
}

// Write renders the traces to w followed by a blank line.
func Write(w io.Writer, traces []Trace, opts Options) error {
	for _, line := range Render(traces, opts) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// ChannelTraces extracts one trace per lap for a channel.
func ChannelTraces(ch lapsync.Channel, laps []*model.Lap, zoom lapsync.ZoomWindow) []Trace {
	traces := make([]Trace, 0, len(laps))
	for i, lap := range laps {
		if lap == nil {
			continue
		}
		xs, ys := lapsync.Values(ch, lap.Frames, zoom)
		traces = append(traces, Trace{
			Name:  LapLabel(i, lap),
			Xs:    xs,
			Ys:    ys,
			Style: lapsync.StyleForLap(i),
		})
	}
	return traces
}

// DeltaTrace turns a delta series into a trace limited to the zoom window.
func DeltaTrace(series model.DeltaSeries, zoom lapsync.ZoomWindow) Trace {
	tr := Trace{Name: "delta", Style: lapsync.LapStyle{Color: deltaColor, Line: lapsync.Solid}}
	for _, d := range series {
		if !zoom.Contains(d.NormalizedPosition) {
			continue
		}
		tr.Xs = append(tr.Xs, d.NormalizedPosition)
		tr.Ys = append(tr.Ys, d.DeltaMs)
	}
	return tr
}

// LapLabel names a lap in legends.
func LapLabel(i int, lap *model.Lap) string {
	label := fmt.Sprintf("Lap %d", i+1)
	if lap == nil {
		return label
	}
	if lap.Meta.DriverName != "" {
		label += " " + lap.Meta.DriverName
	}
	if lap.Meta.LapTimeMs > 0 {
		label += " " + model.FormatLapTime(lap.Meta.LapTimeMs)
	}
	return label
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - AxisWidth()
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

// AxisWidth is the number of cells taken by the value axis.
func AxisWidth() int {
	return axisLabelWidth + displayWidth(axisSeparator)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether output to w should be colored.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func valueRange(traces []Trace, zero bool) (float64, float64, bool) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, tr := range traces {
		n := len(tr.Xs)
		if len(tr.Ys) < n {
			n = len(tr.Ys)
		}
		for _, v := range tr.Ys[:n] {
			if !finite(v) {
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return 0, 0, false
	}
	if zero {
		minVal = math.Min(minVal, 0)
		maxVal = math.Max(maxVal, 0)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}
	return minVal, maxVal, true
}

func columnFor(x float64, zoom lapsync.ZoomWindow, dots int) int {
	col := int(math.Round(zoom.Project(x, float64(dots-1))))
	if col < 0 {
		col = 0
	}
	if col >= dots {
		col = dots - 1
	}
	return col
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func makeAxisLabels(height int, minVal, maxVal float64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = formatAxisValue(maxVal)
	if height > 2 {
		labels[height/2] = formatAxisValue((minVal + maxVal) / 2)
	}
	if height > 1 {
		labels[height-1] = formatAxisValue(minVal)
	}
	return labels
}

func formatAxisValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', 1, 64)
	if len(s) > axisLabelWidth {
		s = strconv.FormatFloat(v, 'g', 3, 64)
	}
	return s
}

func renderLegend(traces []Trace, styles []lipgloss.Style, useColor bool) string {
	parts := make([]string, 0, len(traces))
	marker := brailleFromMask(0x09)
	for i, tr := range traces {
		style := "solid"
		if tr.Style.Line == lapsync.Dashed {
			style = "dashed"
		}
		label := fmt.Sprintf("%c %s (%s)", marker, tr.Name, style)
		if useColor {
			label = styles[i].Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Repeat(" ", AxisWidth()) + strings.Join(parts, "  ")
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
