// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package quadrature implements the composite quadrature rules, the Romberg
// integrator, and the fixed table of methods compared by an analysis.
package quadrature

import (
	"gonum.org/v1/gonum/floats"

	"github.com/pdiddy/quadrature-engine/pkg/types"
)

// Func is a scalar real function.
type Func func(x float64) float64

// VectorFunc evaluates a function over a batch of abscissas. It may return a
// single value for any input, which is broadcast to the batch length.
type VectorFunc func(xs []float64) []float64

// SampledFunction adapts a callable for pointwise and vectorized evaluation.
// It holds no mutable state and is safe for concurrent use.
type SampledFunction struct {
	scalar Func
	vector VectorFunc
}

// FromFunc wraps a scalar function. Vectorized evaluation calls it once per
// abscissa.
func FromFunc(f Func) SampledFunction {
	return SampledFunction{scalar: f}
}

// FromVector wraps a vectorized function. Scalar evaluation passes a
// one-element batch.
func FromVector(f VectorFunc) SampledFunction {
	return SampledFunction{vector: f}
}

// At evaluates the function at x.
func (s SampledFunction) At(x float64) float64 {
	if s.scalar != nil {
		return s.scalar(x)
	}
	return s.vector([]float64{x})[0]
}

// Over evaluates the function at every abscissa in xs and returns a slice of
// the same length. A vectorized function that yields a single value (a
// constant expression) is broadcast.
func (s SampledFunction) Over(xs []float64) []float64 {
	if s.scalar != nil {
		ys := make([]float64, len(xs))
		for i, x := range xs {
			ys[i] = s.scalar(x)
		}
		return ys
	}
	ys := s.vector(xs)
	if len(ys) == len(xs) {
		return ys
	}
	var c float64
	if len(ys) > 0 {
		c = ys[0]
	}
	out := make([]float64, len(xs))
	for i := range out {
		out[i] = c
	}
	return out
}

// Samples evaluates the function over xs and marks non-finite values as
// undefined.
func (s SampledFunction) Samples(xs []float64) []types.Sample {
	return types.Samples(s.Over(xs))
}

// Linspace returns n+1 equally spaced points from a to b inclusive. The last
// point is exactly b.
func Linspace(a, b float64, n int) []float64 {
	if n < 1 {
		return []float64{a}
	}
	xs := floats.Span(make([]float64, n+1), a, b)
	xs[n] = b
	return xs
}
