package viewer

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/lapview/internal/model"
)

const pickerIDWidth = 8

func (m *Model) openPicker() tea.Cmd {
	lister, ok := m.source.(LapLister)
	if !ok {
		m.errMsg = "lap source cannot list laps"
		return nil
	}
	filter := model.ListFilter{Limit: pickerLimit}
	if m.state != nil {
		if lap, err := m.state.Lap(0); err == nil {
			filter.TrackID = lap.Meta.TrackID
		}
	}
	timeout := m.opts.LoadTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		laps, err := lister.ListLaps(ctx, filter)
		return lapListMsg{laps: laps, err: err}
	}
}

func (m *Model) applyList(msg lapListMsg) {
	if msg.err != nil {
		m.log.WithError(msg.err).Warn("listing laps failed")
		m.errMsg = msg.err.Error()
		return
	}
	if len(msg.laps) == 0 {
		m.errMsg = "no other laps on this track"
		return
	}
	m.summaries = msg.laps
	m.picker = buildPicker(msg.laps, m.width, m.height)
	m.picking = true
	m.errMsg = ""
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.picking = false
		return m, nil
	case "enter":
		m.picking = false
		idx := m.picker.Cursor()
		if idx < 0 || idx >= len(m.summaries) {
			return m, nil
		}
		picked := m.summaries[idx].ID
		ids := []string{picked}
		if len(m.lapIDs) > 0 && m.lapIDs[0] != picked {
			ids = []string{m.lapIDs[0], picked}
		}
		return m, m.load(ids)
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) resizePicker() {
	if !m.picking {
		return
	}
	m.picker.SetWidth(maxInt(20, m.width-4))
	m.picker.SetHeight(maxInt(3, m.height-6))
}

func buildPicker(laps []model.LapSummary, width, height int) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: pickerIDWidth},
		{Title: "Track", Width: 16},
		{Title: "Car", Width: 24},
		{Title: "Driver", Width: 14},
		{Title: "Lap time", Width: 9},
		{Title: "Imported", Width: 14},
	}
	rows := make([]table.Row, 0, len(laps))
	for _, lap := range laps {
		rows = append(rows, table.Row{
			shortID(lap.ID),
			lap.Meta.TrackID,
			lap.Meta.CarID,
			lap.Meta.DriverName,
			model.FormatLapTime(lap.Meta.LapTimeMs),
			humanize.Time(lap.ImportedAt),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
	)
	t.SetWidth(maxInt(20, width-4))
	t.SetHeight(maxInt(3, height-6))
	return t
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > pickerIDWidth {
		return id[:pickerIDWidth]
	}
	return id
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
