// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis runs every applicable quadrature rule, measures each
// against a reference value, and reports the most accurate one.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/quadrature-engine/internal/quadrature"
	"github.com/pdiddy/quadrature-engine/pkg/types"
)

var (
	// ErrInvalidSubdivisionCount is returned when no rule accepts the
	// requested subdivision count, or the count exceeds the configured cap.
	ErrInvalidSubdivisionCount = errors.New("invalid subdivision count")

	// ErrInvalidBounds is returned when the bounds are not finite or a >= b.
	ErrInvalidBounds = errors.New("invalid bounds")
)

// MethodResult is one applicable rule's outcome. Estimate and AbsoluteError
// are NaN when an undefined ordinate reached the rule's arithmetic.
type MethodResult struct {
	Method        quadrature.Method
	Estimate      float64
	AbsoluteError float64
	Abscissas     []float64
	Ordinates     []types.Sample
}

// Finite reports whether the estimate and its error are usable.
func (r MethodResult) Finite() bool {
	return isFinite(r.Estimate) && isFinite(r.AbsoluteError)
}

// Report is the comparison of all applicable rules. Results is never empty.
// Best is the index into Results of the minimum-error rule, or -1 when no
// rule produced a finite estimate.
type Report struct {
	N         int
	Reference types.Sample
	Results   []MethodResult
	Best      int
	Summary   string
}

// BestMethod returns the name of the most accurate rule, or "" when none
// produced a finite estimate.
func (r Report) BestMethod() string {
	if r.Best < 0 {
		return ""
	}
	return r.Results[r.Best].Method.String()
}

// Compare runs the rules in their fixed order on f over [a, b] with n
// subdivisions. Each applicable rule's absolute error is measured against
// ref, or is 0 when ref is undefined. Ties in error go to the earlier rule.
func Compare(f quadrature.SampledFunction, a, b float64, n int, ref types.Sample) (Report, error) {
	refValue, hasRef := ref.Float64()

	report := Report{N: n, Reference: ref, Best: -1}
	for _, m := range quadrature.Methods() {
		out, ok := m.Apply(f, a, b, n)
		if !ok {
			continue
		}
		res := MethodResult{
			Method:    m,
			Estimate:  out.Estimate,
			Abscissas: out.Abscissas,
			Ordinates: out.Ordinates,
		}
		switch {
		case !isFinite(out.Estimate):
			res.AbsoluteError = math.NaN()
		case hasRef:
			res.AbsoluteError = math.Abs(out.Estimate - refValue)
		}
		report.Results = append(report.Results, res)
	}

	if len(report.Results) == 0 {
		return Report{}, fmt.Errorf("%w: n=%d is not valid for any method", ErrInvalidSubdivisionCount, n)
	}

	for i, r := range report.Results {
		if !r.Finite() {
			continue
		}
		if report.Best < 0 || r.AbsoluteError < report.Results[report.Best].AbsoluteError {
			report.Best = i
		}
	}
	report.Summary = summarize(report)
	return report, nil
}

func summarize(r Report) string {
	if r.Best < 0 {
		return fmt.Sprintf("For n=%d, no method produced a finite estimate; the integrand is undefined on part of the interval.", r.N)
	}
	best := r.Results[r.Best]
	return fmt.Sprintf("For n=%d, the most accurate method was '%s' with an error of %.1e. "+
		"Higher-order methods usually converge faster to the true value.",
		r.N, best.Method, best.AbsoluteError)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
