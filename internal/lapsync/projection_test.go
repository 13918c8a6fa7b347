package lapsync

import (
	"errors"
	"testing"

	"github.com/verte-zerg/lapview/internal/model"
)

func TestProjectionFitsLapWithPadding(t *testing.T) {
	lap := circuitLap(201, 10, 5)
	p, err := NewProjection(lap.Frames, 800, 0)
	if err != nil {
		t.Fatalf("NewProjection failed: %v", err)
	}
	if !almostEqual(p.Span(), 22) {
		t.Fatalf("expected span 22, got %v", p.Span())
	}
	for i, f := range lap.Frames {
		pt := p.ProjectFrame(f)
		if pt.X < 0 || pt.X > 800 || pt.Y < 0 || pt.Y > 800 {
			t.Fatalf("frame %d projected outside surface: %+v", i, pt)
		}
	}
	center := p.Project(0, 0)
	if !almostEqual(center.X, 400) || !almostEqual(center.Y, 400) {
		t.Fatalf("expected world center at surface center, got %+v", center)
	}
}

func TestProjectionPreservesAspect(t *testing.T) {
	lap := circuitLap(100, 10, 5)
	p, err := NewProjection(lap.Frames, 800, 0)
	if err != nil {
		t.Fatalf("NewProjection failed: %v", err)
	}
	a := p.Project(0, 0)
	bx := p.Project(1, 0)
	bz := p.Project(0, 1)
	dx := bx.X - a.X
	dz := bz.Y - a.Y
	if !almostEqual(dx, dz) {
		t.Fatalf("expected equal pixels per unit on both axes, got %v and %v", dx, dz)
	}
}

func TestProjectionRotatesAboutCenter(t *testing.T) {
	lap := circuitLap(201, 10, 10)
	flat, _ := NewProjection(lap.Frames, 800, 0)
	rot, err := NewProjection(lap.Frames, 800, 90)
	if err != nil {
		t.Fatalf("NewProjection failed: %v", err)
	}
	c := rot.Project(0, 0)
	if !almostEqual(c.X, 400) || !almostEqual(c.Y, 400) {
		t.Fatalf("expected center to stay fixed, got %+v", c)
	}
	before := flat.Project(10, 0)
	after := rot.Project(10, 0)
	// A quarter turn maps an offset (dx, 0) from the center to (0, dx).
	if !almostEqual(after.X, 400) || !almostEqual(after.Y, 400+(before.X-400)) {
		t.Fatalf("unexpected rotated point %+v (unrotated %+v)", after, before)
	}
}

func TestProjectionResizeKeepsExtents(t *testing.T) {
	lap := circuitLap(201, 10, 5)
	p, _ := NewProjection(lap.Frames, 800, 0)
	x, z := p.Extents()
	r := p.Resized(400, 1000)
	if r.ScaleFactor() != 0.5 {
		t.Fatalf("expected scale 0.5, got %v", r.ScaleFactor())
	}
	rx, rz := r.Extents()
	if rx != x || rz != z {
		t.Fatalf("resize changed extents")
	}
	again := r.Resized(400, 1000)
	if again != r {
		t.Fatalf("resize is not idempotent")
	}
	pt := r.Project(0, 0)
	if !almostEqual(pt.X, 200) || !almostEqual(pt.Y, 200) {
		t.Fatalf("expected scaled center, got %+v", pt)
	}
}

func TestProjectionDegenerateLaps(t *testing.T) {
	if _, err := NewProjection(nil, 800, 0); !errors.Is(err, ErrEmptyLap) {
		t.Fatalf("expected ErrEmptyLap, got %v", err)
	}
	single := []model.Frame{{CarX: 3, CarZ: -2}}
	p, err := NewProjection(single, 800, 0)
	if err != nil {
		t.Fatalf("single point lap failed: %v", err)
	}
	pt := p.ProjectFrame(single[0])
	if !almostEqual(pt.X, 400) || !almostEqual(pt.Y, 400) {
		t.Fatalf("expected single point centered, got %+v", pt)
	}
}

func TestCursorDotsMatchTrackPosition(t *testing.T) {
	ref := circuitLap(11, 10, 10)
	other := circuitLap(101, 10, 10)
	p, _ := NewProjection(ref.Frames, 800, 0)
	dots, err := CursorDots(p, []*model.Lap{ref, other}, 0, 3)
	if err != nil {
		t.Fatalf("CursorDots failed: %v", err)
	}
	if len(dots) != 2 {
		t.Fatalf("expected 2 dots, got %d", len(dots))
	}
	if dots[0].FrameIndex != 3 {
		t.Fatalf("expected reference frame 3, got %d", dots[0].FrameIndex)
	}
	if dots[1].FrameIndex != 30 {
		t.Fatalf("expected other lap frame 30, got %d", dots[1].FrameIndex)
	}
	if !almostEqual(dots[0].Point.X, dots[1].Point.X) || !almostEqual(dots[0].Point.Y, dots[1].Point.Y) {
		t.Fatalf("expected markers at the same place, got %+v and %+v", dots[0].Point, dots[1].Point)
	}
	if _, err := CursorDots(p, []*model.Lap{ref}, 1, 0); !errors.Is(err, ErrNoSuchLap) {
		t.Fatalf("expected ErrNoSuchLap, got %v", err)
	}
	if _, err := CursorDots(p, []*model.Lap{ref}, 0, 99); !errors.Is(err, ErrNoSuchFrame) {
		t.Fatalf("expected ErrNoSuchFrame, got %v", err)
	}
}

func TestProjectionTransformFollowsResize(t *testing.T) {
	lap := circuitLap(201, 10, 5)
	p, _ := NewProjection(lap.Frames, 800, 30)
	r := p.Resized(400, 400)
	want := RotateAbout(30, 400, 400).Then(Scale(0.5))
	if r.Transform() != want {
		t.Fatalf("expected rotate-then-scale transform, got %+v", r.Transform())
	}
	for _, f := range lap.Frames[:20] {
		got := r.ProjectFrame(f)
		exp := want.Apply(r.Surface(f.CarX, f.CarZ))
		if !almostEqual(got.X, exp.X) || !almostEqual(got.Y, exp.Y) {
			t.Fatalf("Project %+v disagrees with Transform %+v", got, exp)
		}
	}
	if p.Transform() != RotateAbout(30, 400, 400) {
		t.Fatalf("resizing a copy changed the original transform")
	}
}
