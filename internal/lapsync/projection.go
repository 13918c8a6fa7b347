package lapsync

import (
	"fmt"
	"math"

	"github.com/verte-zerg/lapview/internal/model"
)

const (
	// DefaultSurfaceSize is the side of the square drawing surface.
	DefaultSurfaceSize = 800
	// mapPadding widens the fitted span so the lap does not touch the edges.
	mapPadding = 1.1
)

// Point is a position on the drawing surface.
type Point struct {
	X float64
	Y float64
}

// Affine is a 2D affine transform:
// x' = A*x + C*y + E, y' = B*x + D*y + F.
type Affine struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Apply transforms p.
func (t Affine) Apply(p Point) Point {
	return Point{
		X: t.A*p.X + t.C*p.Y + t.E,
		Y: t.B*p.X + t.D*p.Y + t.F,
	}
}

// Then returns the transform applying t first and next second.
func (t Affine) Then(next Affine) Affine {
	return Affine{
		A: next.A*t.A + next.C*t.B,
		B: next.B*t.A + next.D*t.B,
		C: next.A*t.C + next.C*t.D,
		D: next.B*t.C + next.D*t.D,
		E: next.A*t.E + next.C*t.F + next.E,
		F: next.B*t.E + next.D*t.F + next.F,
	}
}

// RotateAbout returns a rotation by deg degrees around (cx, cy).
func RotateAbout(deg, cx, cy float64) Affine {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	toOrigin := Affine{A: 1, D: 1, E: -cx, F: -cy}
	rotate := Affine{A: cos, B: sin, C: -sin, D: cos}
	back := Affine{A: 1, D: 1, E: cx, F: cy}
	return toOrigin.Then(rotate).Then(back)
}

// Scale returns a uniform scale around the origin.
func Scale(s float64) Affine {
	return Affine{A: s, D: s}
}

// Extent is a min/max range on one axis.
type Extent struct {
	Min float64
	Max float64
}

// Span returns the extent width.
func (e Extent) Span() float64 { return e.Max - e.Min }

// Center returns the extent midpoint.
func (e Extent) Center() float64 { return (e.Min + e.Max) / 2 }

// Projection maps world car coordinates onto a square drawing surface,
// centered with 10% padding and no aspect distortion, then rotated about
// the surface center and scaled to the current screen size.
type Projection struct {
	size     float64
	x, z     Extent
	span     float64
	rotation float64
	scale    float64

	// transform is rebuilt whenever rotation or scale change.
	transform Affine
}

// NewProjection fits the frames of a reference lap into a surface of side size.
func NewProjection(frames []model.Frame, size, rotationDeg float64) (Projection, error) {
	if size <= 0 {
		size = DefaultSurfaceSize
	}
	if !finite(rotationDeg) {
		rotationDeg = 0
	}
	x, z, ok := extents(frames)
	if !ok {
		return Projection{}, fmt.Errorf("projection: %w", ErrEmptyLap)
	}
	span := math.Max(x.Span(), z.Span()) * mapPadding
	if span <= 0 {
		span = 1
	}
	p := Projection{
		size:     size,
		x:        x,
		z:        z,
		span:     span,
		rotation: rotationDeg,
		scale:    1,
	}
	p.transform = p.buildTransform()
	return p, nil
}

func extents(frames []model.Frame) (Extent, Extent, bool) {
	x := Extent{Min: math.Inf(1), Max: math.Inf(-1)}
	z := Extent{Min: math.Inf(1), Max: math.Inf(-1)}
	found := false
	for _, f := range frames {
		if !finite(f.CarX) || !finite(f.CarZ) {
			continue
		}
		found = true
		x.Min = math.Min(x.Min, f.CarX)
		x.Max = math.Max(x.Max, f.CarX)
		z.Min = math.Min(z.Min, f.CarZ)
		z.Max = math.Max(z.Max, f.CarZ)
	}
	return x, z, found
}

// Size returns the surface side.
func (p Projection) Size() float64 { return p.size }

// Span returns the padded world span mapped onto the surface.
func (p Projection) Span() float64 { return p.span }

// Extents returns the world X and Z extents of the reference lap.
func (p Projection) Extents() (Extent, Extent) { return p.x, p.z }

// Rotation returns the rotation in degrees.
func (p Projection) Rotation() float64 { return p.rotation }

// ScaleFactor returns the current screen scale.
func (p Projection) ScaleFactor() float64 { return p.scale }

// Resized returns a copy scaled for a screen of the given size. Extents are kept.
func (p Projection) Resized(width, height float64) Projection {
	side := math.Min(width, height)
	if side <= 0 || !finite(side) {
		return p
	}
	p.scale = side / p.size
	p.transform = p.buildTransform()
	return p
}

// Surface maps world coordinates onto the unrotated, unscaled surface.
func (p Projection) Surface(x, z float64) Point {
	cx, cz := p.x.Center(), p.z.Center()
	half := p.span / 2
	px := (x - (cx - half)) / p.span * p.size
	// The map shows -Z upward on an inverted screen Y axis.
	nz := -z
	py := p.size - (nz-(-cz-half))/p.span*p.size
	return Point{X: px, Y: py}
}

// Transform returns the rotation and screen scale applied after Surface.
// Renderers that draw in surface coordinates can load it into their own
// transform stack instead of projecting every point.
func (p Projection) Transform() Affine {
	return p.transform
}

func (p Projection) buildTransform() Affine {
	t := Identity()
	if p.rotation != 0 {
		t = RotateAbout(p.rotation, p.size/2, p.size/2)
	}
	if p.scale != 1 {
		t = t.Then(Scale(p.scale))
	}
	return t
}

// Project maps world coordinates to screen coordinates.
func (p Projection) Project(x, z float64) Point {
	return p.transform.Apply(p.Surface(x, z))
}

// ProjectFrame maps a frame's car position to screen coordinates.
func (p Projection) ProjectFrame(f model.Frame) Point {
	return p.Project(f.CarX, f.CarZ)
}

// Dot is a car marker on the map.
type Dot struct {
	Lap        int
	FrameIndex int
	Point      Point
}

// CursorDots places one marker per lap for the reference lap's current
// frame. Other laps use their frame closest by normalized position, so
// markers show the same point on track rather than the same sample number.
func CursorDots(p Projection, laps []*model.Lap, ref, refFrame int) ([]Dot, error) {
	if ref < 0 || ref >= len(laps) || laps[ref] == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchLap, ref)
	}
	refFrames := laps[ref].Frames
	if refFrame < 0 || refFrame >= len(refFrames) {
		return nil, fmt.Errorf("%w: lap %d frame %d", ErrNoSuchFrame, ref, refFrame)
	}
	position := refFrames[refFrame].NormalizedPosition
	dots := make([]Dot, 0, len(laps))
	for i, lap := range laps {
		if lap == nil {
			continue
		}
		idx := refFrame
		if i != ref {
			idx = Closest(lap.Frames, position)
		}
		if idx < 0 {
			continue
		}
		dots = append(dots, Dot{Lap: i, FrameIndex: idx, Point: p.ProjectFrame(lap.Frames[idx])})
	}
	return dots, nil
}
