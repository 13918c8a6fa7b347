package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/lapview/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "laps.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return s
}

func testLap(track, car string) *model.Lap {
	return &model.Lap{
		Meta: model.LapMeta{
			TrackID:    track,
			CarID:      car,
			DriverName: "Driver",
			LapTimeMs:  98765,
			RecordedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			TrackGrip:  2,
		},
		Frames: []model.Frame{
			{NormalizedPosition: 0, TimeMs: 0, Throttle: 1, Gear: 2, SpeedKmh: 80, CarX: 1, CarZ: 2},
			{NormalizedPosition: 0.5, TimeMs: 50000, Brake: 0.4, Gear: 4, RPM: 7000, CarX: 3, CarZ: 4},
			{NormalizedPosition: 0.25, TimeMs: 25000, SteerAngle: -0.2, Gear: 3},
		},
	}
}

func TestInsertAndLoadLap(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id, err := s.InsertLap(ctx, testLap("monza", "bmw_m4_gt3"))
	if err != nil {
		t.Fatalf("InsertLap failed: %v", err)
	}
	lap, err := s.LoadLap(ctx, id)
	if err != nil {
		t.Fatalf("LoadLap failed: %v", err)
	}
	if lap.ID != id || lap.Meta.TrackID != "monza" || lap.Meta.LapTimeMs != 98765 || lap.Meta.TrackGrip != 2 {
		t.Fatalf("unexpected lap meta %+v", lap.Meta)
	}
	if !lap.Meta.RecordedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected recorded time %v", lap.Meta.RecordedAt)
	}
	if len(lap.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(lap.Frames))
	}
	if !model.IsMonotonic(lap.Frames) {
		t.Fatalf("expected frames stored in position order")
	}
	if lap.Frames[2].RPM != 7000 || lap.Frames[2].Gear != 4 {
		t.Fatalf("unexpected last frame %+v", lap.Frames[2])
	}

	short, err := s.LoadLap(ctx, id[:8])
	if err != nil || short.ID != id {
		t.Fatalf("expected prefix lookup to resolve, got %v", err)
	}
}

func TestLoadLapNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.LoadLap(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertLapWithoutFrames(t *testing.T) {
	s := openTestStore(t)
	for _, lap := range []*model.Lap{nil, {}} {
		if _, err := s.InsertLap(context.Background(), lap); !errors.Is(err, ErrNoFrames) {
			t.Fatalf("expected ErrNoFrames, got %v", err)
		}
	}
	laps, err := s.ListLaps(context.Background(), model.ListFilter{})
	if err != nil {
		t.Fatalf("ListLaps failed: %v", err)
	}
	if len(laps) != 0 {
		t.Fatalf("expected nothing stored, got %d laps", len(laps))
	}
}

func TestListLapsFiltersAndOrders(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	first, _ := s.InsertLap(ctx, testLap("monza", "bmw_m4_gt3"))
	second, _ := s.InsertLap(ctx, testLap("Spa", "bmw_m4_gt3"))
	third, _ := s.InsertLap(ctx, testLap("monza", "audi_r8_lms_evo"))

	all, err := s.ListLaps(ctx, model.ListFilter{})
	if err != nil {
		t.Fatalf("ListLaps failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != third || all[2].ID != first {
		t.Fatalf("expected newest first, got %+v", all)
	}
	if all[0].FrameCount != 3 {
		t.Fatalf("expected frame count 3, got %d", all[0].FrameCount)
	}

	monza, _ := s.ListLaps(ctx, model.ListFilter{TrackID: "monza"})
	if len(monza) != 2 {
		t.Fatalf("expected 2 monza laps, got %d", len(monza))
	}
	bmw, _ := s.ListLaps(ctx, model.ListFilter{CarID: "bmw_m4_gt3", Limit: 1})
	if len(bmw) != 1 || bmw[0].ID != second {
		t.Fatalf("expected newest bmw lap, got %+v", bmw)
	}
}

func TestDeleteLap(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id, _ := s.InsertLap(ctx, testLap("monza", "bmw_m4_gt3"))
	if err := s.DeleteLap(ctx, id); err != nil {
		t.Fatalf("DeleteLap failed: %v", err)
	}
	if _, err := s.LoadLap(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted lap to be gone, got %v", err)
	}
	if err := s.DeleteLap(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
