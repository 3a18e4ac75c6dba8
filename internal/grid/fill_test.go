package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var null = math.NaN()

func assertSeries(t *testing.T, want, got []float64) {
	t.Helper()
	if assert.Equal(t, len(want), len(got)) {
		for i := range want {
			if IsNull(want[i]) {
				assert.True(t, IsNull(got[i]), "row %d: want null, got %v", i, got[i])
			} else {
				assert.InDelta(t, want[i], got[i], 1e-9, "row %d", i)
			}
		}
	}
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{
			name: "single gap",
			in:   []float64{1, null, 3},
			want: []float64{1, 2, 3},
		},
		{
			name: "wide gap",
			in:   []float64{0, null, null, null, 4},
			want: []float64{0, 1, 2, 3, 4},
		},
		{
			name: "edges untouched",
			in:   []float64{null, 2, null, 4, null},
			want: []float64{null, 2, 3, 4, null},
		},
		{
			name: "all null unchanged",
			in:   []float64{null, null},
			want: []float64{null, null},
		},
		{
			name: "no gaps unchanged",
			in:   []float64{5, 6, 7},
			want: []float64{5, 6, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vals := append([]float64(nil), tt.in...)
			Interpolate(vals)
			assertSeries(t, tt.want, vals)
		})
	}
}

func TestFillBounds(t *testing.T) {
	vals := []float64{null, null, 3, null, 5, null}
	FillBounds(vals)
	assertSeries(t, []float64{3, 3, 3, null, 5, 5}, vals)
}

func TestFillBounds_AllNull(t *testing.T) {
	vals := []float64{null, null}
	FillBounds(vals)
	assertSeries(t, []float64{null, null}, vals)
}

func TestForwardFill(t *testing.T) {
	vals := []float64{null, 1, null, null, 0, null}
	ForwardFill(vals)
	assertSeries(t, []float64{null, 1, 1, 1, 0, 0}, vals)
}

func TestCountNonNull(t *testing.T) {
	assert.Equal(t, 2, CountNonNull([]float64{null, 1, null, 2}))
	assert.Equal(t, 0, CountNonNull(nil))
	assert.True(t, AllNull([]float64{null, null}))
	assert.False(t, AllNull([]float64{null, 0}))
}
