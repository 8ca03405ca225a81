package level

import "sort"

const (
	fallbackBaseScore = 4
	chartHeadroom     = 4
	minChartScale     = 6
)

// Sorted returns a copy of levels ordered by OrderIndex.
func Sorted(levels []Level) []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func position(sorted []Level, key string) int {
	for i, l := range sorted {
		if l.Key == key {
			return i
		}
	}
	return -1
}

func Below(levels []Level, key string) (Level, bool) {
	sorted := Sorted(levels)
	i := position(sorted, key)
	if i <= 0 {
		return Level{}, false
	}
	return sorted[i-1], true
}

func Above(levels []Level, key string) (Level, bool) {
	sorted := Sorted(levels)
	i := position(sorted, key)
	if i < 0 || i+1 >= len(sorted) {
		return Level{}, false
	}
	return sorted[i+1], true
}

// NBelow walks n positions down, clamping at the lowest level.
func NBelow(levels []Level, key string, n int) (Level, bool) {
	return step(levels, key, -clampSteps(n))
}

// NAbove walks n positions up, clamping at the highest level.
func NAbove(levels []Level, key string, n int) (Level, bool) {
	return step(levels, key, clampSteps(n))
}

func clampSteps(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func step(levels []Level, key string, delta int) (Level, bool) {
	sorted := Sorted(levels)
	i := position(sorted, key)
	if i < 0 {
		return Level{}, false
	}
	j := i + delta
	if j < 0 {
		j = 0
	}
	if j >= len(sorted) {
		j = len(sorted) - 1
	}
	return sorted[j], true
}

// BaseScore maps a level to (OrderIndex+1)*2. Unknown keys score 4 so display
// code always has something to render.
func BaseScore(levels []Level, key string) int {
	l, ok := Find(levels, key)
	if !ok {
		return fallbackBaseScore
	}
	return (l.OrderIndex + 1) * 2
}

// MaxChartScale is the highest member base score plus headroom, never below 6.
func MaxChartScale(levels []Level, memberKeys []string) int {
	highest := 0
	for _, k := range memberKeys {
		if s := BaseScore(levels, k); s > highest {
			highest = s
		}
	}
	scale := highest + chartHeadroom
	if scale < minChartScale {
		return minChartScale
	}
	return scale
}

// ScoreScale lists the base scores of a contiguous 0..n-1 sequence.
func ScoreScale(levels []Level) []int {
	out := make([]int, len(levels))
	for i := range levels {
		out[i] = (i + 1) * 2
	}
	return out
}
