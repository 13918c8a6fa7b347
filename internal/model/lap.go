package model

import (
	"fmt"
	"sort"
	"time"
)

var gripNames = map[int]string{
	0: "Green",
	1: "Fast",
	2: "Optimum",
	3: "Greasy",
	4: "Damp",
	5: "Wet",
	6: "Flooded",
}

// GripName returns the display name of a track grip status.
func GripName(grip int) string {
	if name, ok := gripNames[grip]; ok {
		return name
	}
	return "Unknown"
}

// IsMonotonic reports whether frame positions never decrease.
func IsMonotonic(frames []Frame) bool {
	for i := 1; i < len(frames); i++ {
		if frames[i].NormalizedPosition < frames[i-1].NormalizedPosition {
			return false
		}
	}
	return true
}

// NormalizeLap returns a lap whose frames are ordered by position.
// Frames sharing a position keep their recording order. The second
// result reports whether any reordering was needed; when it is false
// the input lap is returned unchanged.
func NormalizeLap(lap *Lap) (*Lap, bool) {
	if lap == nil || IsMonotonic(lap.Frames) {
		return lap, false
	}
	frames := make([]Frame, len(lap.Frames))
	copy(frames, lap.Frames)
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].NormalizedPosition < frames[j].NormalizedPosition
	})
	out := *lap
	out.Frames = frames
	return &out, true
}

// FormatLapTime renders milliseconds as mm:ss.SSS.
func FormatLapTime(ms int64) string {
	if ms < 0 {
		return "-" + FormatLapTime(-ms)
	}
	d := time.Duration(ms) * time.Millisecond
	minutes := int64(d / time.Minute)
	seconds := int64((d % time.Minute) / time.Second)
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}
