package lapsync

import (
	"math"
	"sort"

	"github.com/verte-zerg/lapview/internal/model"
)

// deltaPrecision rounds positions to three decimals before matching.
const deltaPrecision = 1000

func positionKey(x float64) int64 {
	return int64(math.Round(x * deltaPrecision))
}

// Delta builds the lap1-minus-lap2 time delta at every rounded position
// sampled in lap 1 that lap 2 also reached. Positions seen by only one
// lap are skipped. A positive value means lap 1 was behind. Fewer than
// two laps, or no shared positions, yield an empty series.
func Delta(laps []*model.Lap) model.DeltaSeries {
	out := model.DeltaSeries{}
	if len(laps) < 2 || laps[0] == nil || laps[1] == nil {
		return out
	}
	lap1, lap2 := laps[0], laps[1]

	times := make(map[int64]float64, len(lap2.Frames))
	for _, f := range lap2.Frames {
		key := positionKey(f.NormalizedPosition)
		if _, ok := times[key]; ok {
			continue
		}
		times[key] = f.TimeMs
	}

	for _, f := range lap1.Frames {
		key := positionKey(f.NormalizedPosition)
		t2, ok := times[key]
		if !ok {
			continue
		}
		out = append(out, model.DeltaFrame{
			NormalizedPosition: float64(key) / deltaPrecision,
			DeltaMs:            f.TimeMs - t2,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NormalizedPosition < out[j].NormalizedPosition
	})
	return out
}

// DeltaAt returns the delta value nearest to position x.
func DeltaAt(series model.DeltaSeries, x float64) (float64, bool) {
	idx := ClosestFunc(series.Len(), series.Position, x)
	if idx < 0 {
		return 0, false
	}
	return series[idx].DeltaMs, true
}

// DeltaRange returns the smallest and largest delta values.
func DeltaRange(series model.DeltaSeries) (float64, float64) {
	if len(series) == 0 {
		return 0, 0
	}
	minVal, maxVal := series[0].DeltaMs, series[0].DeltaMs
	for _, d := range series[1:] {
		minVal = math.Min(minVal, d.DeltaMs)
		maxVal = math.Max(maxVal, d.DeltaMs)
	}
	return minVal, maxVal
}
