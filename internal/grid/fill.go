package grid

import "math"

// Interpolate fills interior nulls in place with linear segments
// between the surrounding known values. Leading and trailing nulls
// are left untouched.
func Interpolate(vals []float64) {
	prev := -1
	for i, v := range vals {
		if IsNull(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (v - vals[prev]) / float64(i-prev)
			for j := prev + 1; j < i; j++ {
				vals[j] = vals[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
}

// FillBounds replaces leading nulls with the first known value and
// trailing nulls with the last known value, in place. An all-null
// series is unchanged.
func FillBounds(vals []float64) {
	first := -1
	last := -1
	for i, v := range vals {
		if !IsNull(v) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return
	}
	for i := 0; i < first; i++ {
		vals[i] = vals[first]
	}
	for i := last + 1; i < len(vals); i++ {
		vals[i] = vals[last]
	}
}

// ForwardFill carries the last known value forward in place.
// Leading nulls stay null.
func ForwardFill(vals []float64) {
	last := math.NaN()
	for i, v := range vals {
		if IsNull(v) {
			vals[i] = last
		} else {
			last = v
		}
	}
}

// CountNonNull returns the number of non-null samples.
func CountNonNull(vals []float64) int {
	n := 0
	for _, v := range vals {
		if !IsNull(v) {
			n++
		}
	}
	return n
}

// AllNull reports whether the series has no known values.
func AllNull(vals []float64) bool {
	return CountNonNull(vals) == 0
}
