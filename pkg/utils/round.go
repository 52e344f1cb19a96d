package utils

import "math"

// Round2 rounds to 2 decimal places, the precision every monetary figure is
// stored and reported at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
