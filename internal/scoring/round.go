package scoring

import "math"

// round rounds half away from zero for the non-negative values scores produce.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// capScore rounds and caps at 100.
func capScore(x float64) int {
	return min(round(x), 100)
}

func clampScore(v int) int {
	return max(0, min(v, 100))
}

func between(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
