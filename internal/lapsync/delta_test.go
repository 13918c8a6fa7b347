package lapsync

import (
	"math"
	"testing"

	"github.com/verte-zerg/lapview/internal/model"
)

func TestDeltaScenario(t *testing.T) {
	a := lapWithTimes([]float64{0, 0.5, 1}, []float64{0, 5000, 10000})
	b := lapWithTimes([]float64{0, 0.5, 1}, []float64{0, 4800, 9700})
	got := Delta([]*model.Lap{a, b})
	want := model.DeltaSeries{{NormalizedPosition: 0, DeltaMs: 0}, {NormalizedPosition: 0.5, DeltaMs: 200}, {NormalizedPosition: 1, DeltaMs: 300}}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d (%+v)", len(want), len(got), got)
	}
	for i := range want {
		if !almostEqual(got[i].NormalizedPosition, want[i].NormalizedPosition) || !almostEqual(got[i].DeltaMs, want[i].DeltaMs) {
			t.Fatalf("point %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDeltaIsAntisymmetric(t *testing.T) {
	a := lapWithTimes([]float64{0, 0.1234, 0.25, 0.5001, 0.75, 0.9999}, []float64{0, 1300, 2600, 5100, 7700, 10100})
	b := lapWithTimes([]float64{0, 0.1231, 0.2502, 0.5, 0.6, 1}, []float64{0, 1250, 2650, 5000, 6100, 10050})
	ab := Delta([]*model.Lap{a, b})
	ba := Delta([]*model.Lap{b, a})
	if len(ab) == 0 || len(ab) != len(ba) {
		t.Fatalf("expected matching non-empty series, got %d and %d", len(ab), len(ba))
	}
	for i := range ab {
		if ab[i].NormalizedPosition != ba[i].NormalizedPosition {
			t.Fatalf("point %d: positions differ %v vs %v", i, ab[i].NormalizedPosition, ba[i].NormalizedPosition)
		}
		if math.Abs(ab[i].DeltaMs+ba[i].DeltaMs) > 1e-9 {
			t.Fatalf("point %d: %v and %v are not negatives", i, ab[i].DeltaMs, ba[i].DeltaMs)
		}
	}
}

func TestDeltaSkipsUnmatchedAndSorts(t *testing.T) {
	a := lapWithTimes([]float64{0.3, 0.1, 0.2}, []float64{300, 100, 200})
	b := lapWithTimes([]float64{0.1, 0.3, 0.7}, []float64{90, 310, 700})
	got := Delta([]*model.Lap{a, b})
	if len(got) != 2 {
		t.Fatalf("expected 2 matched points, got %+v", got)
	}
	if got[0].NormalizedPosition != 0.1 || got[0].DeltaMs != 10 {
		t.Fatalf("unexpected first point %+v", got[0])
	}
	if got[1].NormalizedPosition != 0.3 || got[1].DeltaMs != -10 {
		t.Fatalf("unexpected second point %+v", got[1])
	}
}

func TestDeltaUnavailableIsEmpty(t *testing.T) {
	if got := Delta([]*model.Lap{lapAt(0, 1)}); got == nil || len(got) != 0 {
		t.Fatalf("expected empty series for one lap, got %#v", got)
	}
	a := lapWithTimes([]float64{0.1}, []float64{1})
	b := lapWithTimes([]float64{0.9}, []float64{1})
	if got := Delta([]*model.Lap{a, b}); len(got) != 0 {
		t.Fatalf("expected empty series without overlap, got %+v", got)
	}
	if _, ok := DeltaAt(model.DeltaSeries{}, 0.5); ok {
		t.Fatalf("expected no delta on empty series")
	}
}

func TestDeltaAtAndRange(t *testing.T) {
	series := model.DeltaSeries{{NormalizedPosition: 0, DeltaMs: -50}, {NormalizedPosition: 0.5, DeltaMs: 120}, {NormalizedPosition: 1, DeltaMs: 30}}
	if v, ok := DeltaAt(series, 0.45); !ok || v != 120 {
		t.Fatalf("expected 120, got %v (%v)", v, ok)
	}
	minVal, maxVal := DeltaRange(series)
	if minVal != -50 || maxVal != 120 {
		t.Fatalf("unexpected range %v..%v", minVal, maxVal)
	}
}
