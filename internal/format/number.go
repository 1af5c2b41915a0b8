package format

import (
	"math"
	"strconv"
)

// Points renders v with at most two decimals: 2 -> "2", 1.5 -> "1.5",
// 1/3 -> "0.33".
func Points(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Percent renders a ratio as a percentage: 0.5 -> "50%".
func Percent(ratio float64) string {
	return Points(ratio*100) + "%"
}

// Score renders "achieved / max".
func Score(achieved, maxPoints float64) string {
	return Points(achieved) + " / " + Points(maxPoints)
}
