package smoothing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bristolgate/internal/grid"
)

var null = math.NaN()

func TestApply_ConstantIsFixedPoint(t *testing.T) {
	vals := make([]float64, 400)
	for i := range vals {
		vals[i] = 42
	}

	out := Apply(context.Background(), "X", vals, Params{Window: 15, PolyOrder: 3})
	require.Len(t, out, 400)
	for i, v := range out {
		assert.InDelta(t, 42.0, v, 1e-6, "row %d", i)
	}
}

func TestApply_EmptyAndAllNull(t *testing.T) {
	assert.Empty(t, Apply(context.Background(), "X", nil, PresetShort))

	out := Apply(context.Background(), "X", []float64{null, null, null}, PresetShort)
	require.Len(t, out, 3)
	for _, v := range out {
		assert.True(t, grid.IsNull(v))
	}
}

func TestApply_FillsNullsBeforeSmoothing(t *testing.T) {
	vals := []float64{null, 1, null, 3, null, 5, null, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, null}

	out := Apply(context.Background(), "X", vals, Params{Window: 5, PolyOrder: 1})
	for i, v := range out {
		assert.False(t, grid.IsNull(v), "row %d stayed null", i)
	}
}

func TestApply_WindowNotAbovePolyOrderGrows(t *testing.T) {
	// window 2 with order 3 becomes 5 (order+1 forced odd), which
	// still fits a 10 sample series
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	out := Apply(context.Background(), "X", vals, Params{Window: 2, PolyOrder: 3})
	require.Len(t, out, 10)
	// a line is reproduced by any valid cubic filter
	for i, v := range out {
		assert.InDelta(t, vals[i], v, 1e-6, "row %d", i)
	}
}

func TestApply_WindowShrinksToSampleCount(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7}

	out := Apply(context.Background(), "X", vals, Params{Window: 365, PolyOrder: 3})
	require.Len(t, out, 7)
	for i, v := range out {
		assert.InDelta(t, vals[i], v, 1e-6, "row %d", i)
	}
}

func TestApply_TooShortReturnsFilled(t *testing.T) {
	// three samples cannot support a cubic: degraded to the filled
	// series, untouched values preserved
	vals := []float64{1, null, 3}

	out := Apply(context.Background(), "X", vals, Params{Window: 365, PolyOrder: 3})
	assert.Equal(t, []float64{1, 2, 3}, out)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	vals := []float64{1, null, 3, 4, 5}
	Apply(context.Background(), "X", vals, Params{Window: 3, PolyOrder: 1})
	assert.True(t, grid.IsNull(vals[1]))
}

func TestApply_DerivativePreset(t *testing.T) {
	// steadily rising series: the 501 window shrinks to the sample
	// count and the first derivative is the slope
	vals := make([]float64, 601)
	for i := range vals {
		vals[i] = 0.25 * float64(i)
	}

	out := Apply(context.Background(), "X", vals, PresetDerivative)
	require.Len(t, out, 601)
	for i, v := range out {
		assert.InDelta(t, 0.25, v, 1e-5, "row %d", i)
	}
}
