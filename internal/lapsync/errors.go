package lapsync

import "errors"

var (
	// ErrEmptyLap is returned when a lap has no usable frames.
	ErrEmptyLap = errors.New("lap has no frames")
	// ErrNoSuchLap is returned when a lap index is out of range.
	ErrNoSuchLap = errors.New("no such lap")
	// ErrNoSuchFrame is returned when a frame index is out of range.
	ErrNoSuchFrame = errors.New("no such frame")
	// ErrNotMonotonic is returned for laps whose positions decrease.
	ErrNotMonotonic = errors.New("frame positions are not monotonic")
	// ErrLapCount is returned when the number of laps is unsupported.
	ErrLapCount = errors.New("unsupported number of laps")
)
