// Package model defines shared data structures.
package model

import "time"

// Frame is a single telemetry sample.
type Frame struct {
	NormalizedPosition float64
	TimeMs             float64
	Throttle           float64
	Brake              float64
	SteerAngle         float64
	Gear               int
	RPM                float64
	SpeedKmh           float64
	CarX               float64
	CarZ               float64
}

// LapMeta carries identity metadata for a lap.
type LapMeta struct {
	TrackID    string
	CarID      string
	DriverName string
	LapTimeMs  int64
	RecordedAt time.Time
	TrackGrip  int
}

// Lap is an ordered frame sequence plus metadata.
type Lap struct {
	ID     string
	Meta   LapMeta
	Frames []Frame
}

// DeltaFrame is one point of a lap1-minus-lap2 time delta series.
type DeltaFrame struct {
	NormalizedPosition float64
	DeltaMs            float64
}

// DeltaSeries is a delta sequence ordered by position.
type DeltaSeries []DeltaFrame

// Len returns the number of points.
func (s DeltaSeries) Len() int { return len(s) }

// Position returns the normalized position of point i.
func (s DeltaSeries) Position(i int) float64 { return s[i].NormalizedPosition }

// LapSummary describes a stored lap without its frames.
type LapSummary struct {
	ID         string
	Meta       LapMeta
	FrameCount int
	ImportedAt time.Time
}

// ListFilter narrows stored lap listings.
type ListFilter struct {
	TrackID string
	CarID   string
	Limit   int
}
