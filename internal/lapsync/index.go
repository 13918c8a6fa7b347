// Package lapsync keeps lap replay panels aligned by normalized track position.
package lapsync

import (
	"math"
	"sort"

	"github.com/verte-zerg/lapview/internal/model"
)

// Closest returns the index of the frame whose normalized position is
// nearest to x. Ties go to the earlier index and targets outside the
// lap clamp to its ends. An empty lap yields -1.
func Closest(frames []model.Frame, x float64) int {
	return ClosestFunc(len(frames), func(i int) float64 {
		return frames[i].NormalizedPosition
	}, x)
}

// ClosestFunc is Closest over any sequence sorted by position.
func ClosestFunc(n int, position func(i int) float64, x float64) int {
	if n <= 0 {
		return -1
	}
	if n == 1 || math.IsNaN(x) {
		return 0
	}
	i := sort.Search(n-1, func(i int) bool { return position(i) >= x })
	if i > 0 && x-position(i-1) <= position(i)-x {
		i--
	}
	// Step back over duplicates so equal candidates resolve to the first one.
	p := position(i)
	return sort.Search(i, func(j int) bool { return position(j) >= p })
}
