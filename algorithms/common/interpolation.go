package common

import (
	"math"
)

// curvatureEpsilon guards the parabolic fit against near-zero curvature,
// where the vertex offset would blow up to NaN/Inf.
const curvatureEpsilon = 1e-10

// ParabolicPeak refines an integer peak index to a fractional position by
// fitting a quadratic through the three samples centered on peakIdx.
//
// Returns the refined (sub-sample) index. When peakIdx sits on either edge of
// data, or the curvature is numerically degenerate, the integer index is
// returned unrefined.
func ParabolicPeak(data []float64, peakIdx int) float64 {
	if peakIdx <= 0 || peakIdx >= len(data)-1 {
		return float64(peakIdx)
	}

	y0 := data[peakIdx-1]
	y1 := data[peakIdx]
	y2 := data[peakIdx+1]

	denom := 2.0 * (y0 - 2.0*y1 + y2)
	if math.Abs(denom) < curvatureEpsilon {
		return float64(peakIdx)
	}

	delta := (y0 - y2) / denom
	return float64(peakIdx) + delta
}
