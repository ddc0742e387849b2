package grading

import "math"

// PassThreshold is inclusive.
const PassThreshold = 50.0

// Percentage is score/max*100 rounded to two decimals, or 0 when max is 0.
func Percentage(score, max int) float64 {
	if max <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(max)*100*100) / 100
}

func Passed(percentage float64) bool { return percentage >= PassThreshold }
