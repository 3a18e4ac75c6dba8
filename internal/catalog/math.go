package catalog

import (
	"math"

	"bristolgate/internal/grid"
)

// col returns an independent copy of a frame column. Definitions
// only call this for declared components, which the evaluator has
// already verified.
func col(f *grid.Frame, name string) []float64 {
	vals, ok := f.CloneColumn(name)
	if !ok {
		return f.NullColumn()
	}
	return vals
}

// Sum adds series element-wise. Null propagates.
func Sum(series ...[]float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, len(series[0]))
	copy(out, series[0])
	for _, s := range series[1:] {
		for i := range out {
			out[i] += s[i]
		}
	}
	return out
}

// Diff subtracts b from a element-wise.
func Diff(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i] - b[i]
	}
	return out
}

// Product multiplies a and b element-wise.
func Product(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i] * b[i]
	}
	return out
}

// SafeDiv divides a by b element-wise, nulling rows where the
// denominator is zero or null instead of producing infinities.
func SafeDiv(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		if b[i] == 0 || grid.IsNull(b[i]) {
			out[i] = math.NaN()
		} else {
			out[i] = a[i] / b[i]
		}
	}
	return out
}

// Scale multiplies every element by k.
func Scale(vals []float64, k float64) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		out[i] = vals[i] * k
	}
	return out
}

// Positive maps each element to 1 where it is greater than zero and
// 0 otherwise. Null propagates.
func Positive(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		switch {
		case grid.IsNull(v):
			out[i] = math.NaN()
		case v > 0:
			out[i] = 1
		default:
			out[i] = 0
		}
	}
	return out
}

// Filled interpolates interior nulls and extends the boundary values
// outward, in place, returning vals for chaining.
func Filled(vals []float64) []float64 {
	grid.Interpolate(vals)
	grid.FillBounds(vals)
	return vals
}

// ZeroFill replaces nulls with zero, in place, returning vals.
func ZeroFill(vals []float64) []float64 {
	for i, v := range vals {
		if grid.IsNull(v) {
			vals[i] = 0
		}
	}
	return vals
}

// RateOfChange is the one-step fractional change v[t]/v[t-1] - 1.
// The first element is null, as is any row whose reference value is
// null or zero.
func RateOfChange(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		prev := vals[i-1]
		if grid.IsNull(vals[i]) || grid.IsNull(prev) || prev == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = vals[i]/prev - 1
	}
	return out
}

// Compound is the running product of (1 + v), the equity curve of
// reinvesting a unit stake at each period's return. Null propagates
// from the first null onward.
func Compound(vals []float64) []float64 {
	out := make([]float64, len(vals))
	acc := 1.0
	for i, v := range vals {
		if grid.IsNull(v) || grid.IsNull(acc) {
			acc = math.NaN()
		} else {
			acc *= 1 + v
		}
		out[i] = acc
	}
	return out
}

// CumSum is the running sum. Null propagates from the first null
// onward.
func CumSum(vals []float64) []float64 {
	out := make([]float64, len(vals))
	acc := 0.0
	for i, v := range vals {
		acc += v
		out[i] = acc
	}
	return out
}
