package model

import "testing"

func TestNormalizeLapSortsStable(t *testing.T) {
	lap := &Lap{
		ID: "a",
		Frames: []Frame{
			{NormalizedPosition: 0.2, TimeMs: 1},
			{NormalizedPosition: 0.1, TimeMs: 2},
			{NormalizedPosition: 0.2, TimeMs: 3},
			{NormalizedPosition: 0.0, TimeMs: 4},
		},
	}
	out, changed := NormalizeLap(lap)
	if !changed {
		t.Fatalf("expected lap to be reordered")
	}
	if !IsMonotonic(out.Frames) {
		t.Fatalf("expected monotonic frames, got %+v", out.Frames)
	}
	if out.Frames[2].TimeMs != 1 || out.Frames[3].TimeMs != 3 {
		t.Fatalf("expected duplicates to keep recording order, got %+v", out.Frames)
	}
	if lap.Frames[0].TimeMs != 1 {
		t.Fatalf("input lap was modified")
	}
}

func TestNormalizeLapKeepsSortedLap(t *testing.T) {
	lap := &Lap{Frames: []Frame{{NormalizedPosition: 0}, {NormalizedPosition: 0}, {NormalizedPosition: 1}}}
	out, changed := NormalizeLap(lap)
	if changed || out != lap {
		t.Fatalf("expected sorted lap to be returned as is")
	}
}

func TestFormatLapTime(t *testing.T) {
	cases := map[int64]string{
		0:      "00:00.000",
		83456:  "01:23.456",
		600001: "10:00.001",
		-1500:  "-00:01.500",
	}
	for in, want := range cases {
		if got := FormatLapTime(in); got != want {
			t.Fatalf("FormatLapTime(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestGripName(t *testing.T) {
	if GripName(2) != "Optimum" {
		t.Fatalf("unexpected grip name %q", GripName(2))
	}
	if GripName(42) != "Unknown" {
		t.Fatalf("expected unknown grip")
	}
}
