package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/lapview/internal/lapsync"
	"github.com/verte-zerg/lapview/internal/model"
	"github.com/verte-zerg/lapview/internal/plot"
	"github.com/verte-zerg/lapview/internal/trackmap"
)

type layout struct {
	graphWidth  int
	plotLeft    int
	plotWidth   int
	panelHeight int
	graphTop    int
	graphBottom int
	timelineRow int
	mapWidth    int
	mapHeight   int
}

const minPlotCells = 10

func (m *Model) layout() layout {
	footerHeight := lipgloss.Height(m.renderFooter())
	body := m.height - headerHeight - footerHeight
	if body < 1 {
		body = 1
	}
	mapWidth := 0
	if m.width >= minMapScreenWidth {
		mapWidth = m.width / 3
	}
	graphWidth := m.width - mapWidth
	if mapWidth > 0 {
		graphWidth--
	}
	plotWidth := graphWidth - plot.AxisWidth()
	if plotWidth < minPlotCells {
		plotWidth = minPlotCells
	}

	panels := len(m.opts.Channels) + 1
	panelHeight := m.opts.PlotHeight
	if maxHeight := (body-1)/panels - 2; panelHeight > maxHeight {
		panelHeight = maxHeight
	}
	if panelHeight < 1 {
		panelHeight = 1
	}
	graphRows := panels * (panelHeight + 2)
	return layout{
		graphWidth:  graphWidth,
		plotLeft:    plot.AxisWidth(),
		plotWidth:   plotWidth,
		panelHeight: panelHeight,
		graphTop:    headerHeight,
		graphBottom: headerHeight + graphRows,
		timelineRow: headerHeight + graphRows,
		mapWidth:    mapWidth,
		mapHeight:   body,
	}
}

func (m *Model) renderHeader() string {
	if m.state == nil {
		return headerStyle.Render("lapview")
	}
	v := m.state.Snapshot()
	parts := []string{}
	if lap := v.Laps[0]; lap != nil {
		parts = append(parts, m.trackName(lap.Meta.TrackID))
	}
	parts = append(parts, fmt.Sprintf("zoom %.1f%%-%.1f%%", v.Zoom.Min*100, v.Zoom.Max*100))
	if v.Hover.Active {
		parts = append(parts, fmt.Sprintf("@ %.1f%%", v.Hover.Position*100))
		for i := range v.Laps {
			f, ok, err := m.state.HoveredFrame(i)
			if err != nil || !ok {
				continue
			}
			parts = append(parts, fmt.Sprintf("L%d %s %.0fkm/h g%d", i+1, model.FormatLapTime(int64(f.TimeMs)), f.SpeedKmh, f.Gear))
		}
		if v.HasDelta {
			parts = append(parts, "Δ "+formatDelta(v.DeltaMs))
		}
	}
	return headerStyle.Render(truncateLine(strings.Join(parts, "  "), m.width))
}

func (m *Model) trackName(id string) string {
	if m.opts.Tracks != nil {
		if t, ok := m.opts.Tracks.Track(id); ok && t.Name != "" {
			return t.Name
		}
	}
	if id == "" {
		return "unknown track"
	}
	return id
}

func formatDelta(ms float64) string {
	return fmt.Sprintf("%+.3fs", ms/1000)
}

func (m *Model) renderFooter() string {
	footer := mutedStyle.Render(m.help.View(m.keys))
	if m.picking {
		footer = mutedStyle.Render("enter: compare  esc: cancel  up/down: select")
	}
	if m.errMsg != "" {
		footer += "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return footer
}

func (m *Model) renderBody(height int) string {
	if m.picking {
		return fitLines(pickerStyle.Render(m.picker.View()), m.width, height)
	}
	if m.state == nil {
		msg := "Loading laps..."
		if !m.loading && m.errMsg != "" {
			msg = "No laps loaded."
		}
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, mutedStyle.Render(msg))
	}
	l := m.layout()
	v := m.state.Snapshot()
	graphs := fitLines(strings.Join(m.renderGraphs(v, l), "\n"), l.graphWidth, height)
	if l.mapWidth == 0 {
		return graphs
	}
	mapLines := trackmap.RenderText(v.Projection, v.Laps, v.Dots, trackmap.TextOptions{
		Width:  l.mapWidth,
		Height: l.mapHeight,
		Color:  true,
	})
	panel := fitLines(strings.Join(mapLines, "\n"), l.mapWidth, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, graphs, " ", panel)
}

func (m *Model) renderGraphs(v lapsync.View, l layout) []string {
	var lines []string
	for _, ch := range m.opts.Channels {
		title := ch.Label
		if ch.Unit != "" {
			title += " (" + ch.Unit + ")"
		}
		traces := plot.ChannelTraces(ch, v.Laps, v.Zoom)
		lines = append(lines, padPanel(plot.Render(traces, m.plotOptions(accentStyle.Render(title), v, l)), l.panelHeight+2)...)
	}
	deltaTitle := accentStyle.Render("Delta (ms, lap 1 - lap 2)")
	deltaOpts := m.plotOptions(deltaTitle, v, l)
	deltaOpts.ZeroLine = true
	deltaOpts.Empty = "no delta available"
	lines = append(lines, padPanel(plot.Render([]plot.Trace{plot.DeltaTrace(v.Delta, v.Zoom)}, deltaOpts), l.panelHeight+2)...)
	lines = append(lines, renderTimeline(v, l))
	return lines
}

func (m *Model) plotOptions(title string, v lapsync.View, l layout) plot.Options {
	return plot.Options{
		Title:     title,
		Width:     l.plotWidth,
		Height:    l.panelHeight,
		Zoom:      v.Zoom,
		Cursor:    v.Hover.Position,
		HasCursor: v.Hover.Active,
		Color:     true,
	}
}

// padPanel keeps the row count of a panel fixed so mouse rows stay aligned.
func padPanel(lines []string, rows int) []string {
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return lines
}

// renderTimeline draws the full lap with the zoom window and cursor marked.
func renderTimeline(v lapsync.View, l layout) string {
	full := lapsync.DefaultZoom()
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", l.plotLeft))
	cursorCol := -1
	if v.Hover.Active {
		cursorCol = int(full.Project(v.Hover.Position, float64(l.plotWidth-1)) + 0.5)
	}
	for x := 0; x < l.plotWidth; x++ {
		pos := full.Unproject(float64(x)+0.5, float64(l.plotWidth))
		switch {
		case x == cursorCol:
			b.WriteString(accentStyle.Render("┃"))
		case v.Zoom.Contains(pos):
			b.WriteString(zoomStyle.Render("━"))
		default:
			b.WriteString(mutedStyle.Render("─"))
		}
	}
	return b.String()
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}
