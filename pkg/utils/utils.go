package utils

import "math"

// ============================================================================
// Pure Utility Functions
// ============================================================================
//
// This file contains only domain-agnostic numeric helpers shared by the
// scoring, classification and guidance packages.
// ============================================================================

// Clamp bounds v to [lo, hi]. NaN collapses to lo so a bad intermediate
// never leaks into a published score.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// InRange reports whether lo <= v <= hi
func InRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// Deviation returns |pos - extent/2| / extent, the normalised distance of a
// coordinate from the middle of an axis. A non-positive extent yields 0.
func Deviation(pos float64, extent int) float64 {
	if extent <= 0 {
		return 0
	}
	return math.Abs(pos-float64(extent)/2) / float64(extent)
}

// SignedOffset returns (pos - extent/2) / extent; negative means left of
// (or above) the middle.
func SignedOffset(pos float64, extent int) float64 {
	if extent <= 0 {
		return 0
	}
	return (pos - float64(extent)/2) / float64(extent)
}

// SafeRatio divides num by den, returning 0 when den is zero
func SafeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// MinInt returns the smaller of two integers
func MinInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// MaxInt returns the larger of two integers
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// AbsInt returns the absolute value of x
func AbsInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
