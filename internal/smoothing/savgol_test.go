package smoothing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavgolWeights_SumToOne(t *testing.T) {
	// a smoothing filter must preserve constants
	for _, w := range []int{5, 15, 201} {
		weights, err := savgolWeights(w, 3, 0)
		require.NoError(t, err)
		require.Len(t, weights, w)

		sum := 0.0
		for _, wt := range weights {
			sum += wt
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "window %d", w)
	}
}

func TestSavgolWeights_Symmetric(t *testing.T) {
	weights, err := savgolWeights(7, 2, 0)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, weights[6-i], weights[i], 1e-12)
	}
}

func TestSavgolWeights_InvalidParams(t *testing.T) {
	_, err := savgolWeights(3, 3, 0)
	assert.Error(t, err)
	_, err = savgolWeights(5, 2, 3)
	assert.Error(t, err)
}

func TestSavgolFilter_ReproducesPolynomial(t *testing.T) {
	// a degree <= p signal is a fixed point of the filter,
	// including the fitted edges
	n := 51
	vals := make([]float64, n)
	for i := range vals {
		x := float64(i)
		vals[i] = 2 + 0.5*x - 0.03*x*x
	}

	out, err := savgolFilter(vals, 11, 3, 0)
	require.NoError(t, err)
	for i := range vals {
		assert.InDelta(t, vals[i], out[i], 1e-6, "row %d", i)
	}
}

func TestSavgolFilter_DerivativeOfLine(t *testing.T) {
	n := 41
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = 3*float64(i) + 7
	}

	out, err := savgolFilter(vals, 9, 3, 1)
	require.NoError(t, err)
	for i := range out {
		assert.InDelta(t, 3.0, out[i], 1e-6, "row %d", i)
	}
}

func TestSavgolFilter_ShorterThanWindow(t *testing.T) {
	_, err := savgolFilter([]float64{1, 2, 3}, 5, 3, 0)
	assert.Error(t, err)
}

func TestPolyfit_RecoversCoefficients(t *testing.T) {
	// y = (u+2)^2 around center: fit should evaluate back exactly
	y := []float64{4, 1, 0, 1, 4}
	coefs, err := polyfit(y, 2)
	require.NoError(t, err)

	for i := range y {
		u := float64(i) - 2
		assert.InDelta(t, y[i], polyEval(coefs, u, 0), 1e-9)
	}
	// second derivative of u^2 is 2 everywhere
	assert.InDelta(t, 2.0, polyEval(coefs, 0, 2), 1e-9)
}

func TestSolve_Singular(t *testing.T) {
	a := [][]float64{{1, 2}, {2, 4}}
	b := [][]float64{{1}, {2}}
	_, err := solve(a, b)
	assert.Error(t, err)
}

func TestIntPow(t *testing.T) {
	assert.Equal(t, 1.0, intPow(5, 0))
	assert.Equal(t, -8.0, intPow(-2, 3))
	assert.True(t, math.Abs(intPow(1.5, 2)-2.25) < 1e-12)
}
