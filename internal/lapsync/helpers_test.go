package lapsync

import (
	"math"

	"github.com/verte-zerg/lapview/internal/model"
)

func lapAt(positions ...float64) *model.Lap {
	frames := make([]model.Frame, len(positions))
	for i, p := range positions {
		frames[i] = model.Frame{NormalizedPosition: p, TimeMs: p * 100000}
	}
	return &model.Lap{ID: "test", Frames: frames}
}

func lapWithTimes(positions, times []float64) *model.Lap {
	frames := make([]model.Frame, len(positions))
	for i := range positions {
		frames[i] = model.Frame{NormalizedPosition: positions[i], TimeMs: times[i]}
	}
	return &model.Lap{Frames: frames}
}

// circuitLap builds an oval of n frames with radii rx and rz.
func circuitLap(n int, rx, rz float64) *model.Lap {
	frames := make([]model.Frame, n)
	for i := 0; i < n; i++ {
		pos := float64(i) / float64(n-1)
		angle := pos * 2 * math.Pi
		frames[i] = model.Frame{
			NormalizedPosition: pos,
			TimeMs:             pos * 90000,
			CarX:               rx * math.Cos(angle),
			CarZ:               rz * math.Sin(angle),
		}
	}
	return &model.Lap{Frames: frames}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
