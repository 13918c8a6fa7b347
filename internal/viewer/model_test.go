package viewer

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/lapview/internal/lapsync"
	"github.com/verte-zerg/lapview/internal/model"
	"github.com/verte-zerg/lapview/internal/trackmeta"
)

var errMissing = errors.New("missing")

type fakeSource struct {
	laps map[string]*model.Lap
}

func (f *fakeSource) LoadLap(_ context.Context, id string) (*model.Lap, error) {
	lap, ok := f.laps[id]
	if !ok {
		return nil, errMissing
	}
	return lap, nil
}

func (f *fakeSource) ListLaps(_ context.Context, filter model.ListFilter) ([]model.LapSummary, error) {
	var out []model.LapSummary
	for _, id := range []string{"a", "b", "c"} {
		lap, ok := f.laps[id]
		if !ok || (filter.TrackID != "" && lap.Meta.TrackID != filter.TrackID) {
			continue
		}
		out = append(out, model.LapSummary{ID: id, Meta: lap.Meta, FrameCount: len(lap.Frames)})
	}
	return out, nil
}

func ovalLap(id string, n int, lapMs float64) *model.Lap {
	frames := make([]model.Frame, n)
	for i := 0; i < n; i++ {
		pos := float64(i) / float64(n-1)
		angle := pos * 2 * math.Pi
		frames[i] = model.Frame{
			NormalizedPosition: pos,
			TimeMs:             pos * lapMs,
			SpeedKmh:           150 + 50*math.Sin(angle*3),
			Throttle:           pos,
			CarX:               200 * math.Cos(angle),
			CarZ:               120 * math.Sin(angle),
		}
	}
	return &model.Lap{ID: id, Meta: model.LapMeta{TrackID: "monza", DriverName: id, LapTimeMs: int64(lapMs)}, Frames: frames}
}

func newSource() *fakeSource {
	return &fakeSource{laps: map[string]*model.Lap{
		"a": ovalLap("a", 201, 90000),
		"b": ovalLap("b", 151, 91000),
		"c": ovalLap("c", 101, 89500),
	}}
}

func loadedModel(t *testing.T, opts Options) *Model {
	t.Helper()
	m := NewModel(newSource(), opts)
	msg := m.Init()()
	m.Update(msg)
	if m.State() == nil {
		t.Fatalf("expected laps to load, error: %q", m.errMsg)
	}
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestLoadBuildsState(t *testing.T) {
	m := loadedModel(t, Options{LapIDs: []string{"a", "b"}, Tracks: trackmeta.NewCatalog(nil)})
	if got := len(m.State().Laps()); got != 2 {
		t.Fatalf("expected 2 laps, got %d", got)
	}
	if got := m.State().Projection().Rotation(); got != -95 {
		t.Fatalf("expected monza rotation, got %v", got)
	}
	if len(m.State().Delta()) == 0 {
		t.Fatalf("expected a delta series for two laps")
	}
}

func TestRotationOverride(t *testing.T) {
	rot := 30.0
	m := loadedModel(t, Options{LapIDs: []string{"a"}, Tracks: trackmeta.NewCatalog(nil), Rotation: &rot})
	if got := m.State().Projection().Rotation(); got != 30 {
		t.Fatalf("expected override rotation, got %v", got)
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	m := NewModel(newSource(), Options{})
	first := m.load([]string{"a"})
	second := m.load([]string{"b", "c"})
	m.Update(first())
	if m.State() != nil {
		t.Fatalf("expected stale result to be dropped")
	}
	m.Update(second())
	if m.State() == nil || len(m.State().Laps()) != 2 {
		t.Fatalf("expected latest load to apply")
	}
	if m.lapIDs[0] != "b" {
		t.Fatalf("expected lap ids from latest load, got %v", m.lapIDs)
	}
}

func TestLoadErrorIsShown(t *testing.T) {
	m := NewModel(newSource(), Options{LapIDs: []string{"a", "zzz"}})
	m.Update(m.Init()())
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	if m.State() != nil {
		t.Fatalf("expected no state after failed load")
	}
	if !strings.Contains(m.errMsg, "zzz") {
		t.Fatalf("expected error to name the lap, got %q", m.errMsg)
	}
	if !strings.Contains(m.View(), "No laps loaded.") {
		t.Fatalf("expected empty body message")
	}
}

func TestKeysScrubAndZoom(t *testing.T) {
	m := loadedModel(t, Options{LapIDs: []string{"a", "b"}})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	h := m.State().Hover()
	if !h.Active || math.Abs(h.Position-0.51) > 1e-9 {
		t.Fatalf("expected cursor at 0.51, got %+v", h)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'+'}})
	z := m.State().Zoom()
	if math.Abs(z.Span()-0.8) > 1e-9 {
		t.Fatalf("expected zoom span 0.8, got %+v", z)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'0'}})
	if m.State().Zoom() != lapsync.DefaultZoom() {
		t.Fatalf("expected reset zoom, got %+v", m.State().Zoom())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.State().Hover().Active {
		t.Fatalf("expected esc to hide the cursor")
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestMouseHoverAndDrag(t *testing.T) {
	m := loadedModel(t, Options{LapIDs: []string{"a", "b"}})
	l := m.layout()
	m.Update(tea.MouseMsg{X: l.plotLeft + l.plotWidth/2, Y: l.graphTop + 2, Action: tea.MouseActionMotion})
	h := m.State().Hover()
	if !h.Active || h.FrameIndices[0] < 0 || h.FrameIndices[1] < 0 {
		t.Fatalf("expected active cursor from mouse, got %+v", h)
	}
	m.Update(tea.MouseMsg{X: l.plotLeft + 1, Y: m.height - 1, Action: tea.MouseActionMotion})
	if m.State().Hover().Active {
		t.Fatalf("expected cursor to leave outside the graphs")
	}

	m.State().ResizeZoomRight(0.5)
	m.Update(tea.MouseMsg{X: l.plotLeft + 10, Y: l.timelineRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: l.plotLeft + 20, Y: l.timelineRow, Action: tea.MouseActionMotion})
	m.Update(tea.MouseMsg{X: l.plotLeft + 20, Y: l.timelineRow, Action: tea.MouseActionRelease})
	z := m.State().Zoom()
	if z.Min <= 0 || math.Abs(z.Span()-0.5) > 1e-9 {
		t.Fatalf("expected drag to pan the window, got %+v", z)
	}

	before := m.State().Zoom().Span()
	m.Update(tea.MouseMsg{X: l.plotLeft + 5, Y: l.graphTop + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	if m.State().Zoom().Span() >= before {
		t.Fatalf("expected wheel to zoom in")
	}
}

func TestViewFillsScreen(t *testing.T) {
	m := loadedModel(t, Options{LapIDs: []string{"a", "b"}, Tracks: trackmeta.NewCatalog(nil)})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	out := m.View()
	lines := strings.Split(out, "\n")
	if len(lines) != 40 {
		t.Fatalf("expected 40 lines, got %d", len(lines))
	}
	for _, want := range []string{"Monza", "zoom 0.0%-100.0%", "@ 51.0%", "Speed (km/h)", "Delta", "Δ "} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view", want)
		}
	}
}

func TestPickerComparesLap(t *testing.T) {
	m := loadedModel(t, Options{LapIDs: []string{"a"}})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'o'}})
	if cmd == nil {
		t.Fatalf("expected list command")
	}
	m.Update(cmd())
	if !m.picking || len(m.summaries) != 3 {
		t.Fatalf("expected picker with 3 laps, got picking=%v summaries=%d", m.picking, len(m.summaries))
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || m.picking {
		t.Fatalf("expected picker to close and load")
	}
	m.Update(cmd())
	if got := m.lapIDs; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected comparison a vs b, got %v", got)
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd == nil {
		t.Fatalf("expected drop to reload")
	}
	m.Update(cmd())
	if len(m.State().Laps()) != 1 {
		t.Fatalf("expected single lap after drop")
	}
}

func TestFormatDelta(t *testing.T) {
	if got := formatDelta(-1234); got != "-1.234s" {
		t.Fatalf("unexpected delta %q", got)
	}
	if got := formatDelta(500); got != "+0.500s" {
		t.Fatalf("unexpected delta %q", got)
	}
}
