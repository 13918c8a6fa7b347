package lapsync

import (
	"fmt"

	"github.com/verte-zerg/lapview/internal/model"
)

// MaxLaps is the number of laps that can be compared at once.
const MaxLaps = 2

// Options configures a SyncState.
type Options struct {
	// SurfaceSize is the side of the map drawing surface.
	SurfaceSize float64
	// Rotation is the per-track map rotation in degrees.
	Rotation float64
}

// View is a read-only snapshot of everything the panels render.
type View struct {
	Laps       []*model.Lap
	Zoom       ZoomWindow
	Hover      HoverState
	Delta      model.DeltaSeries
	Projection Projection
	Dots       []Dot
	DeltaMs    float64
	HasDelta   bool
}

// SyncState composes the zoom window, hover cursor, delta series and
// map projection for a set of loaded laps. Mutators replace the zoom
// and hover values wholesale; derived values are recomputed from them.
type SyncState struct {
	opts       Options
	laps       []*model.Lap
	zoom       ZoomWindow
	hover      HoverState
	delta      model.DeltaSeries
	projection Projection

	pointerWidth float64
	screenW      float64
	screenH      float64
}

// NewSyncState validates laps and builds the initial state.
func NewSyncState(laps []*model.Lap, opts Options) (*SyncState, error) {
	if opts.SurfaceSize <= 0 {
		opts.SurfaceSize = DefaultSurfaceSize
	}
	s := &SyncState{opts: opts, zoom: DefaultZoom()}
	if err := s.SetLaps(laps); err != nil {
		return nil, err
	}
	return s, nil
}

// SetLaps swaps the compared laps. The zoom window is kept; the cursor
// is cleared since its indices belong to the old laps.
func (s *SyncState) SetLaps(laps []*model.Lap) error {
	if len(laps) == 0 || len(laps) > MaxLaps {
		return fmt.Errorf("%w: %d", ErrLapCount, len(laps))
	}
	for i, lap := range laps {
		if lap == nil || len(lap.Frames) == 0 {
			return fmt.Errorf("lap %d: %w", i, ErrEmptyLap)
		}
		if !model.IsMonotonic(lap.Frames) {
			return fmt.Errorf("lap %d: %w", i, ErrNotMonotonic)
		}
	}
	projection, err := NewProjection(laps[0].Frames, s.opts.SurfaceSize, s.opts.Rotation)
	if err != nil {
		return fmt.Errorf("lap 0: %w", err)
	}
	if s.screenW > 0 && s.screenH > 0 {
		projection = projection.Resized(s.screenW, s.screenH)
	}
	s.laps = append([]*model.Lap(nil), laps...)
	s.delta = Delta(s.laps)
	s.projection = projection
	s.hover = Leave(len(s.laps))
	return nil
}

// Laps returns the compared laps.
func (s *SyncState) Laps() []*model.Lap {
	return append([]*model.Lap(nil), s.laps...)
}

// Lap returns the lap at index i.
func (s *SyncState) Lap(i int) (*model.Lap, error) {
	if i < 0 || i >= len(s.laps) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchLap, i)
	}
	return s.laps[i], nil
}

// Frame returns frame index of lap.
func (s *SyncState) Frame(lap, index int) (model.Frame, error) {
	l, err := s.Lap(lap)
	if err != nil {
		return model.Frame{}, err
	}
	if index < 0 || index >= len(l.Frames) {
		return model.Frame{}, fmt.Errorf("%w: lap %d frame %d", ErrNoSuchFrame, lap, index)
	}
	return l.Frames[index], nil
}

// HoveredFrame returns the frame under the cursor for a lap.
func (s *SyncState) HoveredFrame(lap int) (model.Frame, bool, error) {
	idx, err := s.hover.FrameIndex(lap)
	if err != nil {
		return model.Frame{}, false, err
	}
	if !s.hover.Active || idx < 0 {
		return model.Frame{}, false, nil
	}
	f, err := s.Frame(lap, idx)
	if err != nil {
		return model.Frame{}, false, err
	}
	return f, true, nil
}

// Zoom returns the current zoom window.
func (s *SyncState) Zoom() ZoomWindow { return s.zoom }

// Hover returns the current cursor.
func (s *SyncState) Hover() HoverState { return s.hover }

// Delta returns the delta series; it is empty when no comparison is available.
func (s *SyncState) Delta() model.DeltaSeries { return s.delta }

// Projection returns the map projection.
func (s *SyncState) Projection() Projection { return s.projection }

// PointerMove updates the cursor from a pointer inside a panel of the given width.
func (s *SyncState) PointerMove(pointerX, panelWidth float64) HoverState {
	s.pointerWidth = panelWidth
	s.hover = Locate(pointerX, panelWidth, s.zoom, s.laps)
	return s.hover
}

// PointerLeave clears the cursor.
func (s *SyncState) PointerLeave() HoverState {
	s.hover = Leave(len(s.laps))
	return s.hover
}

// ScrubTo places the cursor at a normalized position.
func (s *SyncState) ScrubTo(position float64) HoverState {
	h := LocatePosition(position, s.laps)
	if h.Active && s.pointerWidth > 0 {
		h.PointerX = s.zoom.Project(h.Position, s.pointerWidth)
	}
	s.hover = h
	return s.hover
}

// DragZoom shifts the zoom window by a pixel delta measured on a
// full-lap timeline of the given width.
func (s *SyncState) DragZoom(deltaPixels, timelineWidth float64) ZoomWindow {
	if timelineWidth <= 0 {
		return s.zoom
	}
	return s.setZoom(s.zoom.Drag(deltaPixels / timelineWidth))
}

// ResizeZoomLeft moves the left zoom edge.
func (s *SyncState) ResizeZoomLeft(newMin float64) ZoomWindow {
	return s.setZoom(s.zoom.ResizeLeft(newMin))
}

// ResizeZoomRight moves the right zoom edge.
func (s *SyncState) ResizeZoomRight(newMax float64) ZoomWindow {
	return s.setZoom(s.zoom.ResizeRight(newMax))
}

// ZoomAround scales the zoom window around a position.
func (s *SyncState) ZoomAround(center, factor float64) ZoomWindow {
	return s.setZoom(s.zoom.ZoomAround(center, factor))
}

// ResetZoom restores the full-lap window.
func (s *SyncState) ResetZoom() ZoomWindow {
	return s.setZoom(s.zoom.Reset())
}

func (s *SyncState) setZoom(z ZoomWindow) ZoomWindow {
	s.zoom = z
	if s.hover.Active && s.pointerWidth > 0 {
		s.hover = Locate(s.hover.PointerX, s.pointerWidth, s.zoom, s.laps)
	}
	return s.zoom
}

// Resize rescales the map for a new screen size.
func (s *SyncState) Resize(width, height float64) Projection {
	s.screenW, s.screenH = width, height
	s.projection = s.projection.Resized(width, height)
	return s.projection
}

// CursorDots returns the map markers for the current cursor, or nil
// when no cursor is shown.
func (s *SyncState) CursorDots() []Dot {
	if !s.hover.Active || len(s.hover.FrameIndices) == 0 || s.hover.FrameIndices[0] < 0 {
		return nil
	}
	dots, err := CursorDots(s.projection, s.laps, 0, s.hover.FrameIndices[0])
	if err != nil {
		return nil
	}
	return dots
}

// DeltaAtCursor returns the delta at the cursor position.
func (s *SyncState) DeltaAtCursor() (float64, bool) {
	if !s.hover.Active {
		return 0, false
	}
	return DeltaAt(s.delta, s.hover.Position)
}

// Snapshot returns the values one render pass needs.
func (s *SyncState) Snapshot() View {
	ms, ok := s.DeltaAtCursor()
	return View{
		Laps:       s.Laps(),
		Zoom:       s.zoom,
		Hover:      s.hover,
		Delta:      s.delta,
		Projection: s.projection,
		Dots:       s.CursorDots(),
		DeltaMs:    ms,
		HasDelta:   ok,
	}
}
