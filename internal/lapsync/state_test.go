package lapsync

import (
	"errors"
	"testing"

	"github.com/verte-zerg/lapview/internal/model"
)

func comparedLaps() []*model.Lap {
	a := lapAt(0, 0.25, 0.5, 0.75, 1)
	b := lapWithTimes(
		[]float64{0, 0.25, 0.5, 0.75, 1},
		[]float64{0, 24000, 51000, 76000, 99000},
	)
	return []*model.Lap{a, b}
}

func TestNewSyncStateValidatesLaps(t *testing.T) {
	cases := []struct {
		name string
		laps []*model.Lap
		want error
	}{
		{"none", nil, ErrLapCount},
		{"too many", []*model.Lap{lapAt(0), lapAt(0), lapAt(0)}, ErrLapCount},
		{"empty", []*model.Lap{lapAt(0), {}}, ErrEmptyLap},
		{"unsorted", []*model.Lap{lapAt(0, 0.5, 0.25)}, ErrNotMonotonic},
	}
	for _, tc := range cases {
		if _, err := NewSyncState(tc.laps, Options{}); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestSyncStatePointerMoveAndLeave(t *testing.T) {
	s, err := NewSyncState(comparedLaps(), Options{})
	if err != nil {
		t.Fatalf("NewSyncState failed: %v", err)
	}
	h := s.PointerMove(50, 100)
	if !h.Active || h.Position != 0.5 {
		t.Fatalf("unexpected hover %+v", h)
	}
	f, ok, err := s.HoveredFrame(1)
	if err != nil || !ok {
		t.Fatalf("expected hovered frame, got ok=%v err=%v", ok, err)
	}
	if f.TimeMs != 51000 {
		t.Fatalf("expected lap 2 frame at 51000ms, got %v", f.TimeMs)
	}

	s.PointerLeave()
	if s.Hover().Active {
		t.Fatalf("expected inactive cursor")
	}
	if _, ok, _ := s.HoveredFrame(0); ok {
		t.Fatalf("expected no hovered frame after leave")
	}
	if s.CursorDots() != nil {
		t.Fatalf("expected no dots after leave")
	}
}

func TestSyncStateZoomRelocatesCursor(t *testing.T) {
	s, _ := NewSyncState(comparedLaps(), Options{})
	s.PointerMove(50, 100)
	z := s.ResizeZoomLeft(0.5)
	if z.Min != 0.5 || z.Max != 1 {
		t.Fatalf("unexpected zoom %+v", z)
	}
	h := s.Hover()
	if h.Position != 0.75 || h.FrameIndices[0] != 3 {
		t.Fatalf("expected cursor to follow zoom, got %+v", h)
	}
	z = s.DragZoom(-25, 100)
	if z.Min != 0.25 || z.Max != 0.75 {
		t.Fatalf("unexpected dragged zoom %+v", z)
	}
	if s.Hover().Position != 0.5 {
		t.Fatalf("expected cursor at 0.5 after drag, got %v", s.Hover().Position)
	}
	if z = s.ResetZoom(); z != DefaultZoom() {
		t.Fatalf("expected full lap after reset, got %+v", z)
	}
}

func TestSyncStateScrubTo(t *testing.T) {
	s, _ := NewSyncState(comparedLaps(), Options{})
	h := s.ScrubTo(0.3)
	if !h.Active || h.FrameIndices[0] != 1 {
		t.Fatalf("unexpected scrub result %+v", h)
	}
	s.PointerMove(0, 200)
	h = s.ScrubTo(0.25)
	if h.PointerX != 50 {
		t.Fatalf("expected pointer at 50px, got %v", h.PointerX)
	}
	h = s.ScrubTo(2)
	if h.Position != 1 || h.FrameIndices[1] != 4 {
		t.Fatalf("expected scrub to clamp, got %+v", h)
	}
}

func TestSyncStateSnapshot(t *testing.T) {
	s, _ := NewSyncState(comparedLaps(), Options{})
	if v := s.Snapshot(); v.HasDelta || v.Dots != nil {
		t.Fatalf("expected no cursor values before hover, got %+v", v)
	}
	s.PointerMove(50, 100)
	v := s.Snapshot()
	if !v.HasDelta || v.DeltaMs != -1000 {
		t.Fatalf("expected delta -1000 at cursor, got %v (%v)", v.DeltaMs, v.HasDelta)
	}
	if len(v.Dots) != 2 || v.Dots[1].FrameIndex != 2 {
		t.Fatalf("unexpected dots %+v", v.Dots)
	}
	if len(v.Delta) != 5 {
		t.Fatalf("expected 5 delta points, got %d", len(v.Delta))
	}
}

func TestSyncStateSingleLapHasNoDelta(t *testing.T) {
	s, err := NewSyncState([]*model.Lap{lapAt(0, 0.5, 1)}, Options{})
	if err != nil {
		t.Fatalf("NewSyncState failed: %v", err)
	}
	s.PointerMove(10, 20)
	if _, ok := s.DeltaAtCursor(); ok {
		t.Fatalf("expected no delta for a single lap")
	}
	if len(s.CursorDots()) != 1 {
		t.Fatalf("expected one dot")
	}
}

func TestSyncStateSetLapsClearsCursor(t *testing.T) {
	s, _ := NewSyncState(comparedLaps(), Options{})
	s.ResizeZoomRight(0.5)
	s.PointerMove(10, 100)
	if err := s.SetLaps([]*model.Lap{lapAt(0, 1)}); err != nil {
		t.Fatalf("SetLaps failed: %v", err)
	}
	if s.Hover().Active || len(s.Hover().FrameIndices) != 1 {
		t.Fatalf("expected cleared cursor for one lap, got %+v", s.Hover())
	}
	if s.Zoom().Max != 0.5 {
		t.Fatalf("expected zoom to be kept, got %+v", s.Zoom())
	}
	if err := s.SetLaps(nil); !errors.Is(err, ErrLapCount) {
		t.Fatalf("expected ErrLapCount, got %v", err)
	}
	if len(s.Laps()) != 1 {
		t.Fatalf("failed SetLaps must keep previous laps")
	}
}

func TestSyncStateLookupErrors(t *testing.T) {
	s, _ := NewSyncState(comparedLaps(), Options{})
	if _, err := s.Lap(2); !errors.Is(err, ErrNoSuchLap) {
		t.Fatalf("expected ErrNoSuchLap, got %v", err)
	}
	if _, err := s.Frame(0, 5); !errors.Is(err, ErrNoSuchFrame) {
		t.Fatalf("expected ErrNoSuchFrame, got %v", err)
	}
	if _, _, err := s.HoveredFrame(3); !errors.Is(err, ErrNoSuchLap) {
		t.Fatalf("expected ErrNoSuchLap, got %v", err)
	}
}

func TestSyncStateResizeScalesMap(t *testing.T) {
	s, _ := NewSyncState(comparedLaps(), Options{SurfaceSize: 400})
	p := s.Resize(200, 300)
	if p.ScaleFactor() != 0.5 {
		t.Fatalf("expected scale 0.5, got %v", p.ScaleFactor())
	}
	if err := s.SetLaps(comparedLaps()); err != nil {
		t.Fatalf("SetLaps failed: %v", err)
	}
	if s.Projection().ScaleFactor() != 0.5 {
		t.Fatalf("expected new projection to keep screen scale")
	}
}
