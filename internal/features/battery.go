// Package features runs the per-symbol indicator battery over every
// base column of the grid: year over year changes, log transforms,
// moving averages and smoothed trends. Symbols are processed on a
// bounded worker pool; one symbol failing never takes down its
// siblings.
package features

import (
	"context"
	"fmt"
	"math"

	"bristolgate/internal/grid"
	"bristolgate/internal/smoothing"
)

// Moving average windows, in days.
const (
	mvaLong   = 365
	mvaMedium = 200
	mvaShort  = 50
)

// feature is one derived column computed from a base series.
type feature struct {
	Name        string
	Values      []float64
	Description string
	Unit        string
	// Skipped marks a column that was created for schema stability
	// but carries no signal, e.g. a moving average over a series
	// shorter than its window.
	Skipped bool
}

// computeBattery derives the full indicator set for one base
// column. vals is an isolated copy owned by the caller's worker.
func computeBattery(ctx context.Context, base string, vals []float64, yearLength int) []feature {
	out := make([]feature, 0, 10)

	yoyLags := []struct {
		suffix string
		years  int
	}{
		{"_YoY", 1},
		{"_YoY4", 4},
		{"_YoY5", 5},
	}
	for _, lag := range yoyLags {
		// A lag longer than the history leaves the column all null,
		// which is its honest value, not a skip.
		out = append(out, feature{
			Name:        base + lag.suffix,
			Values:      yearOverYear(vals, lag.years*yearLength),
			Description: fmt.Sprintf("%d-Year Percent Change of %s", lag.years, base),
			Unit:        "Percent",
		})
	}

	out = append(out, feature{
		Name:        base + "_Log",
		Values:      logSeries(vals),
		Description: fmt.Sprintf("Natural Log of %s", base),
		Unit:        "Log",
	})

	for _, window := range []int{mvaLong, mvaMedium, mvaShort} {
		name := fmt.Sprintf("%s_mva%03d", base, window)
		if grid.CountNonNull(vals) < window {
			// Not enough history: keep the column so downstream
			// schemas stay stable, but flag it.
			null := make([]float64, len(vals))
			for i := range null {
				null[i] = math.NaN()
			}
			out = append(out, feature{
				Name:        name,
				Values:      null,
				Description: fmt.Sprintf("%d-Day Moving Average of %s (insufficient samples)", window, base),
				Unit:        "Level",
				Skipped:     true,
			})
			continue
		}
		out = append(out, feature{
			Name:        name,
			Values:      movingAverage(vals, window),
			Description: fmt.Sprintf("%d-Day Moving Average of %s", window, base),
			Unit:        "Level",
		})
	}

	smoothed := []struct {
		suffix string
		params smoothing.Params
		descr  string
	}{
		{"_Smooth", smoothing.Params{Window: yearLength, PolyOrder: 3}, "Smoothed"},
		{"_Smooth_short", smoothing.PresetShort, "Short-Window Smoothed"},
		{"_SmoothDer", smoothing.PresetDerivative, "Derivative of Smoothed"},
	}
	for _, preset := range smoothed {
		sm := smoothing.Apply(ctx, base+preset.suffix, vals, preset.params)
		out = append(out, feature{
			Name:        base + preset.suffix,
			Values:      sm,
			Description: fmt.Sprintf("%s %s (%d-period Savitzky-Golay)", preset.descr, base, preset.params.Window),
			Unit:        "Level",
			Skipped:     grid.AllNull(sm) && !grid.AllNull(vals),
		})
	}

	return out
}

// yearOverYear computes (v[t]/v[t-lag] - 1) * 100, null where the
// lagged value is missing or zero.
func yearOverYear(vals []float64, lag int) []float64 {
	out := make([]float64, len(vals))
	for i := range out {
		if i < lag {
			out[i] = math.NaN()
			continue
		}
		prev := vals[i-lag]
		if grid.IsNull(vals[i]) || grid.IsNull(prev) || prev == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (vals[i]/prev - 1) * 100
	}
	return out
}

// logSeries takes the natural log, nulling non-positive values and
// interpolating the interior gaps that leaves behind.
func logSeries(vals []float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		if grid.IsNull(v) || v <= 0 {
			out[i] = math.NaN()
		} else {
			out[i] = math.Log(v)
		}
	}
	grid.Interpolate(out)
	return out
}

// movingAverage is a trailing mean over the last window rows with a
// minimum of one known sample, interpolated afterwards so sparse
// stretches do not punch holes in the output.
func movingAverage(vals []float64, window int) []float64 {
	out := make([]float64, len(vals))
	sum := 0.0
	count := 0
	for i := range vals {
		if !grid.IsNull(vals[i]) {
			sum += vals[i]
			count++
		}
		if i >= window {
			old := vals[i-window]
			if !grid.IsNull(old) {
				sum -= old
				count--
			}
		}
		if count == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(count)
		}
	}
	grid.Interpolate(out)
	return out
}
