// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package quadrature

import (
	"math/bits"

	"gonum.org/v1/gonum/floats"

	"github.com/pdiddy/quadrature-engine/pkg/types"
)

// RombergTolerance is the absolute and relative tolerance of the Romberg
// rule. The requested subdivision count only caps the refinement depth.
const RombergTolerance = 1e-10

// Outcome is the result of an applicable rule: the estimate and the sample
// grid it reports. Undefined ordinates propagate into Estimate as NaN.
type Outcome struct {
	Estimate  float64
	Abscissas []float64
	Ordinates []types.Sample
}

// Rule approximates the integral of f over [a, b] with n subdivisions. The
// boolean is false when n does not satisfy the rule's precondition.
type Rule func(f SampledFunction, a, b float64, n int) (Outcome, bool)

// grid samples f on the n+1 equally spaced abscissas of [a, b].
func grid(f SampledFunction, a, b float64, n int) ([]float64, []float64, float64) {
	xs := Linspace(a, b, n)
	return xs, f.Over(xs), (b - a) / float64(n)
}

func outcome(estimate float64, xs, ys []float64) Outcome {
	return Outcome{Estimate: estimate, Abscissas: xs, Ordinates: types.Samples(ys)}
}

// Trapezoid is the composite trapezoid rule. It accepts every n >= 1.
func Trapezoid(f SampledFunction, a, b float64, n int) (Outcome, bool) {
	if n < 1 {
		return Outcome{}, false
	}
	xs, ys, h := grid(f, a, b, n)
	est := h / 2 * (ys[0] + 2*floats.Sum(ys[1:n]) + ys[n])
	return outcome(est, xs, ys), true
}

// Simpson13 is the composite Simpson 1/3 rule. It requires an even n.
func Simpson13(f SampledFunction, a, b float64, n int) (Outcome, bool) {
	if n < 1 || n%2 != 0 {
		return Outcome{}, false
	}
	xs, ys, h := grid(f, a, b, n)
	var odd, even float64
	for i := 1; i < n; i += 2 {
		odd += ys[i]
	}
	for i := 2; i < n-1; i += 2 {
		even += ys[i]
	}
	est := h / 3 * (ys[0] + 4*odd + 2*even + ys[n])
	return outcome(est, xs, ys), true
}

// Simpson38 is the composite Simpson 3/8 rule. It requires n divisible by 3.
func Simpson38(f SampledFunction, a, b float64, n int) (Outcome, bool) {
	if n < 1 || n%3 != 0 {
		return Outcome{}, false
	}
	xs, ys, h := grid(f, a, b, n)
	total := ys[0] + ys[n]
	for i := 1; i < n; i++ {
		if i%3 == 0 {
			total += 2 * ys[i]
		} else {
			total += 3 * ys[i]
		}
	}
	return outcome(total*3*h/8, xs, ys), true
}

// Boole is the composite Boole rule. It requires n divisible by 4. Adjacent
// groups of four intervals share their boundary sample.
func Boole(f SampledFunction, a, b float64, n int) (Outcome, bool) {
	if n < 1 || n%4 != 0 {
		return Outcome{}, false
	}
	xs, ys, h := grid(f, a, b, n)
	var est float64
	for i := 0; i < n; i += 4 {
		est += (2 * h / 45) * (7*ys[i] + 32*ys[i+1] + 12*ys[i+2] + 32*ys[i+3] + 7*ys[i+4])
	}
	return outcome(est, xs, ys), true
}

// RombergRule is the Romberg rule. It requires n to be a power of two and runs
// at most floor(log2(n))+1 doublings. The returned grid is a uniform
// resample for display; the estimate does not depend on it.
func RombergRule(f SampledFunction, a, b float64, n int) (Outcome, bool) {
	if !IsPowerOfTwo(n) {
		return Outcome{}, false
	}
	res := Romberg(f, a, b, RombergOptions{
		Tol:    RombergTolerance,
		RTol:   RombergTolerance,
		DivMax: bits.Len(uint(n)),
	})
	xs := Linspace(a, b, n)
	return outcome(res.Value, xs, f.Over(xs)), true
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
