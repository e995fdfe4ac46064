// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quadrature

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Defaults used when RombergOptions leaves a field zero.
const (
	DefaultRombergTolerance = 1.48e-8
	DefaultRombergDivMax    = 10
)

// RombergOptions controls the Romberg tableau.
type RombergOptions struct {
	// Tol is the absolute convergence tolerance between successive diagonal
	// entries.
	Tol float64

	// RTol is the relative convergence tolerance.
	RTol float64

	// DivMax is the maximum number of interval doublings.
	DivMax int
}

// RombergResult is the outcome of a Romberg integration.
type RombergResult struct {
	// Value is the last diagonal entry of the tableau.
	Value float64

	// Levels is the number of doublings performed.
	Levels int

	// Converged is false when DivMax was reached before either tolerance.
	Converged bool
}

// Romberg integrates f over [a, b] by Richardson extrapolation of the
// trapezoid rule on 1, 2, 4, ... intervals. Each level only evaluates the
// new midpoints. It stops when the change between successive diagonal
// entries falls below Tol or RTol*|value|, or after DivMax doublings.
func Romberg(f SampledFunction, a, b float64, opts RombergOptions) RombergResult {
	if opts.Tol <= 0 {
		opts.Tol = DefaultRombergTolerance
	}
	if opts.RTol <= 0 {
		opts.RTol = DefaultRombergTolerance
	}
	if opts.DivMax <= 0 {
		opts.DivMax = DefaultRombergDivMax
	}

	width := b - a
	n := 1
	ordsum := 0.5 * (f.At(a) + f.At(b))
	result := width * ordsum
	last := []float64{result}

	for i := 1; i <= opts.DivMax; i++ {
		n *= 2
		ordsum += midpointSum(f, a, b, n)

		row := make([]float64, i+1)
		row[0] = width * ordsum / float64(n)
		for k := 0; k < i; k++ {
			row[k+1] = richardson(last[k], row[k], k+1)
		}

		result = row[i]
		diff := math.Abs(result - last[i-1])
		if diff < opts.Tol || diff < opts.RTol*math.Abs(result) {
			return RombergResult{Value: result, Levels: i, Converged: true}
		}
		last = row
	}

	return RombergResult{Value: result, Levels: opts.DivMax, Converged: false}
}

// midpointSum sums f over the n/2 points added when the trapezoid grid on
// [a, b] is refined to n intervals.
func midpointSum(f SampledFunction, a, b float64, n int) float64 {
	count := n / 2
	h := (b - a) / float64(count)
	xs := make([]float64, count)
	for j := range xs {
		xs[j] = a + 0.5*h + h*float64(j)
	}
	return floats.Sum(f.Over(xs))
}

// richardson combines a coarse estimate with a finer one to cancel the
// h^(2k) error term.
func richardson(coarse, fine float64, k int) float64 {
	p := math.Pow(4, float64(k))
	return (p*fine - coarse) / (p - 1)
}
