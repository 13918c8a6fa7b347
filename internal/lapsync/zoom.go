package lapsync

import "math"

// MinZoomSpan is the narrowest visible position range.
const MinZoomSpan = 0.01

// ZoomWindow is the visible sub-range of normalized position shared by all panels.
type ZoomWindow struct {
	Min float64
	Max float64
}

// DefaultZoom returns the full-lap window.
func DefaultZoom() ZoomWindow {
	return ZoomWindow{Min: 0, Max: 1}
}

// Span returns the visible width.
func (z ZoomWindow) Span() float64 {
	return z.Max - z.Min
}

// Valid reports whether the window satisfies its range and span constraints.
func (z ZoomWindow) Valid() bool {
	return z.Min >= 0 && z.Max <= 1 && z.Min < z.Max && z.Span() >= MinZoomSpan
}

// Contains reports whether x is inside the window.
func (z ZoomWindow) Contains(x float64) bool {
	return x >= z.Min && x <= z.Max
}

// Drag shifts the window by delta without changing its width.
func (z ZoomWindow) Drag(delta float64) ZoomWindow {
	if !finite(delta) {
		return z
	}
	return shifted(z.Min+delta, z.Span())
}

// ResizeLeft moves the left edge, keeping at least MinZoomSpan to the right edge.
func (z ZoomWindow) ResizeLeft(newMin float64) ZoomWindow {
	if math.IsNaN(newMin) {
		return z
	}
	if limit := z.Max - MinZoomSpan; newMin > limit {
		newMin = limit
	}
	for z.Max-newMin < MinZoomSpan {
		newMin = math.Nextafter(newMin, math.Inf(-1))
	}
	if newMin < 0 {
		newMin = 0
	}
	return ZoomWindow{Min: newMin, Max: z.Max}
}

// ResizeRight moves the right edge, keeping at least MinZoomSpan to the left edge.
func (z ZoomWindow) ResizeRight(newMax float64) ZoomWindow {
	if math.IsNaN(newMax) {
		return z
	}
	if limit := z.Min + MinZoomSpan; newMax < limit {
		newMax = limit
	}
	for newMax-z.Min < MinZoomSpan {
		newMax = math.Nextafter(newMax, math.Inf(1))
	}
	if newMax > 1 {
		newMax = 1
	}
	return ZoomWindow{Min: z.Min, Max: newMax}
}

// Reset returns the full-lap window.
func (z ZoomWindow) Reset() ZoomWindow {
	return DefaultZoom()
}

// ZoomAround scales the span by factor while keeping center at the
// same relative place in the window.
func (z ZoomWindow) ZoomAround(center, factor float64) ZoomWindow {
	if !finite(center) || !finite(factor) || factor <= 0 {
		return z
	}
	span := z.Span()
	next := math.Min(math.Max(span*factor, MinZoomSpan), 1)
	frac := (center - z.Min) / span
	frac = math.Min(math.Max(frac, 0), 1)
	return shifted(z.Min+frac*span-frac*next, next)
}

// Project maps a normalized position to a pixel offset in a panel of the given width.
func (z ZoomWindow) Project(x, width float64) float64 {
	return (x - z.Min) / z.Span() * width
}

// Unproject maps a pixel offset in a panel of the given width to a normalized position.
func (z ZoomWindow) Unproject(px, width float64) float64 {
	if width <= 0 {
		return z.Min
	}
	return z.Min + px/width*z.Span()
}

// shifted places a window of the given span at min, pushed back inside
// [0,1]. Edges are nudged by one ulp at a time until the computed span
// is at least MinZoomSpan.
func shifted(min, span float64) ZoomWindow {
	span = math.Min(math.Max(span, MinZoomSpan), 1)
	if min < 0 {
		min = 0
	}
	max := min + span
	for max-min < MinZoomSpan {
		max = math.Nextafter(max, math.Inf(1))
	}
	if max <= 1 {
		return ZoomWindow{Min: min, Max: max}
	}
	max = 1
	min = 1 - span
	for max-min < MinZoomSpan {
		min = math.Nextafter(min, math.Inf(-1))
	}
	if min < 0 {
		min = 0
	}
	return ZoomWindow{Min: min, Max: max}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
