package smoothing

import (
	"context"
	"log/slog"

	"bristolgate/internal/grid"
)

// Params selects a smoothing preset. Deriv is the derivative order
// with respect to the sample index; 0 smooths in place.
type Params struct {
	Window    int
	PolyOrder int
	Deriv     int
}

// Presets used across the feature battery and the regime labeler.
var (
	// Annual trend over a 365 day window.
	PresetAnnual = Params{Window: 365, PolyOrder: 3}
	// Short horizon trend over 15 days.
	PresetShort = Params{Window: 15, PolyOrder: 3}
	// First derivative of a 501 day trend.
	PresetDerivative = Params{Window: 501, PolyOrder: 3, Deriv: 1}
	// Ramp smoothing for regime labels.
	PresetRamp = Params{Window: 201, PolyOrder: 3}
)

// Apply smooths a series, repairing the parameters when they do not
// fit the data. The input is never mutated and the result never
// carries an error: when the series cannot support the requested
// filter the filled, unsmoothed series comes back instead.
//
// Repairs, in order: interior nulls interpolated and edge nulls
// nearest filled; a window not larger than the poly order grows to
// order+1 and is forced odd; a window longer than the sample count
// shrinks to it, again forced odd; if the repaired window still
// cannot support the order, or the fit fails numerically, the
// filled series is returned and the degradation logged.
func Apply(ctx context.Context, name string, vals []float64, p Params) []float64 {
	if len(vals) == 0 || grid.AllNull(vals) {
		out := make([]float64, len(vals))
		copy(out, vals)
		return out
	}

	filled := make([]float64, len(vals))
	copy(filled, vals)
	grid.Interpolate(filled)
	grid.FillBounds(filled)

	w := p.Window
	if w <= p.PolyOrder {
		w = p.PolyOrder + 1
	}
	if w%2 == 0 {
		w++
	}
	if w > len(filled) {
		w = len(filled)
		if w%2 == 0 {
			w--
		}
	}
	if w <= p.PolyOrder {
		slog.WarnContext(ctx, "series too short to smooth, returning filled values",
			slog.String("column", name),
			slog.Int("samples", len(filled)),
			slog.Int("window", p.Window),
			slog.Int("poly_order", p.PolyOrder))
		return filled
	}

	out, err := savgolFilter(filled, w, p.PolyOrder, p.Deriv)
	if err != nil {
		slog.WarnContext(ctx, "savgol fit failed, returning filled values",
			slog.String("column", name),
			slog.Int("window", w),
			slog.Int("poly_order", p.PolyOrder),
			slog.Int("deriv", p.Deriv),
			slog.String("error", err.Error()))
		return filled
	}
	return out
}
