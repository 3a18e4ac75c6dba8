// Package smoothing implements Savitzky-Golay least squares
// smoothing with the defensive parameter handling the feature
// battery relies on: bad windows are repaired or the input is
// returned filled-but-unsmoothed, never an error.
package smoothing

import (
	"fmt"
	"math"
)

// savgolWeights returns the central convolution weights for a
// window of odd length w, polynomial order p and derivative d. The
// filtered value at the window center is the dot product of the
// weights with the window samples.
func savgolWeights(w, p, d int) ([]float64, error) {
	if w <= p {
		return nil, fmt.Errorf("smoothing: window %d must exceed poly order %d", w, p)
	}
	if d > p {
		return nil, fmt.Errorf("smoothing: derivative %d exceeds poly order %d", d, p)
	}

	half := w / 2

	// Normal equations of the Vandermonde system over x = -half..half.
	ata := make([][]float64, p+1)
	for j := range ata {
		ata[j] = make([]float64, p+1)
		for k := range ata[j] {
			s := 0.0
			for x := -half; x <= half; x++ {
				s += intPow(float64(x), j+k)
			}
			ata[j][k] = s
		}
	}

	at := make([][]float64, p+1)
	for j := range at {
		at[j] = make([]float64, w)
		for i := 0; i < w; i++ {
			at[j][i] = intPow(float64(i-half), j)
		}
	}

	pinv, err := solve(ata, at)
	if err != nil {
		return nil, err
	}

	weights := make([]float64, w)
	scale := factorial(d)
	for i := 0; i < w; i++ {
		weights[i] = pinv[d][i] * scale
	}
	return weights, nil
}

// savgolFilter smooths vals with an odd window w and polynomial
// order p, returning the d-th derivative with respect to the sample
// index. Boundary samples are produced by evaluating a polynomial
// fitted over the first and last full window, so no edge goes null.
// vals must contain no nulls and len(vals) >= w.
func savgolFilter(vals []float64, w, p, d int) ([]float64, error) {
	n := len(vals)
	if n < w {
		return nil, fmt.Errorf("smoothing: %d samples shorter than window %d", n, w)
	}

	weights, err := savgolWeights(w, p, d)
	if err != nil {
		return nil, err
	}

	half := w / 2
	out := make([]float64, n)

	for i := half; i < n-half; i++ {
		s := 0.0
		for k := 0; k < w; k++ {
			s += weights[k] * vals[i-half+k]
		}
		out[i] = s
	}

	// Head: polynomial over the first window, evaluated per position.
	head, err := polyfit(vals[:w], p)
	if err != nil {
		return nil, err
	}
	for i := 0; i < half; i++ {
		out[i] = polyEval(head, float64(i)-float64(w-1)/2, d)
	}

	// Tail: polynomial over the last window.
	tail, err := polyfit(vals[n-w:], p)
	if err != nil {
		return nil, err
	}
	for i := n - half; i < n; i++ {
		u := float64(i-(n-w)) - float64(w-1)/2
		out[i] = polyEval(tail, u, d)
	}

	return out, nil
}

// polyfit fits a polynomial of order p to y over sample positions
// centered at the window midpoint. Centering keeps the normal
// equations conditioned for the long windows the presets use.
func polyfit(y []float64, p int) ([]float64, error) {
	n := len(y)
	if n <= p {
		return nil, fmt.Errorf("smoothing: %d samples cannot fit order %d", n, p)
	}
	c := float64(n-1) / 2

	ata := make([][]float64, p+1)
	atb := make([][]float64, p+1)
	for j := range ata {
		ata[j] = make([]float64, p+1)
		atb[j] = make([]float64, 1)
	}
	for i := 0; i < n; i++ {
		u := float64(i) - c
		for j := 0; j <= p; j++ {
			uj := intPow(u, j)
			atb[j][0] += uj * y[i]
			for k := j; k <= p; k++ {
				ata[j][k] += uj * intPow(u, k)
			}
		}
	}
	for j := 0; j <= p; j++ {
		for k := 0; k < j; k++ {
			ata[j][k] = ata[k][j]
		}
	}

	coefs, err := solve(ata, atb)
	if err != nil {
		return nil, err
	}
	out := make([]float64, p+1)
	for j := range out {
		out[j] = coefs[j][0]
	}
	return out, nil
}

// polyEval evaluates the d-th derivative of the fitted polynomial
// at centered position u.
func polyEval(coefs []float64, u float64, d int) float64 {
	s := 0.0
	for k := d; k < len(coefs); k++ {
		term := coefs[k]
		for j := 0; j < d; j++ {
			term *= float64(k - j)
		}
		s += term * intPow(u, k-d)
	}
	return s
}

// solve performs Gaussian elimination with partial pivoting on a,
// applying the same row operations to every column of b. Both are
// modified in place; the returned matrix is b.
func solve(a, b [][]float64) ([][]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("smoothing: singular system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		inv := 1 / a[col][col]
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := a[r][col] * inv
			if factor == 0 {
				continue
			}
			for k := col; k < n; k++ {
				a[r][k] -= factor * a[col][k]
			}
			for k := range b[r] {
				b[r][k] -= factor * b[col][k]
			}
		}
	}
	for r := 0; r < n; r++ {
		inv := 1 / a[r][r]
		for k := range b[r] {
			b[r][k] *= inv
		}
	}
	return b, nil
}

func intPow(x float64, n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= x
	}
	return out
}

func factorial(n int) float64 {
	out := 1.0
	for i := 2; i <= n; i++ {
		out *= float64(i)
	}
	return out
}
