package lapsync

import (
	"fmt"
	"math"

	"github.com/verte-zerg/lapview/internal/model"
)

// HoverState is the cursor derived from a single pointer event.
// When Active is false every frame index is -1.
type HoverState struct {
	PointerX     float64
	Position     float64
	FrameIndices []int
	Active       bool
}

// FrameIndex returns the hovered frame index for a lap.
func (h HoverState) FrameIndex(lap int) (int, error) {
	if lap < 0 || lap >= len(h.FrameIndices) {
		return -1, fmt.Errorf("%w: %d", ErrNoSuchLap, lap)
	}
	return h.FrameIndices[lap], nil
}

// Locate maps a panel-local pointer X through the zoom window to a
// normalized position and resolves one frame index per lap. Each lap
// is searched independently so laps of different sample counts stay
// aligned by track position.
func Locate(pointerX, panelWidth float64, zoom ZoomWindow, laps []*model.Lap) HoverState {
	if panelWidth <= 0 || math.IsNaN(pointerX) {
		return Leave(len(laps))
	}
	pointerX = math.Min(math.Max(pointerX, 0), panelWidth)
	return locateAt(pointerX, zoom.Unproject(pointerX, panelWidth), laps)
}

// LocatePosition resolves frame indices for a normalized position directly.
func LocatePosition(position float64, laps []*model.Lap) HoverState {
	if math.IsNaN(position) {
		return Leave(len(laps))
	}
	position = math.Min(math.Max(position, 0), 1)
	return locateAt(0, position, laps)
}

// Leave returns the explicit no-cursor state.
func Leave(lapCount int) HoverState {
	indices := make([]int, lapCount)
	for i := range indices {
		indices[i] = -1
	}
	return HoverState{FrameIndices: indices}
}

func locateAt(pointerX, position float64, laps []*model.Lap) HoverState {
	indices := make([]int, len(laps))
	for i, lap := range laps {
		if lap == nil {
			indices[i] = -1
			continue
		}
		indices[i] = Closest(lap.Frames, position)
	}
	return HoverState{
		PointerX:     pointerX,
		Position:     position,
		FrameIndices: indices,
		Active:       true,
	}
}
