// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quadrature-engine/internal/expr"
	"github.com/pdiddy/quadrature-engine/internal/quadrature"
	"github.com/pdiddy/quadrature-engine/internal/reference"
	"github.com/pdiddy/quadrature-engine/pkg/types"
)

func names(r Report) []string {
	out := make([]string, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Method.String()
	}
	return out
}

func TestCompareTieGoesToEarlierMethod(t *testing.T) {
	zero := quadrature.FromFunc(func(float64) float64 { return 0 })
	r, err := Compare(zero, 0, 1, 4, types.SampleOf(0))
	require.NoError(t, err)

	assert.Equal(t, []string{"Trapezoid", "Simpson 1/3", "Boole", "Romberg"}, names(r))
	for _, res := range r.Results {
		assert.Zero(t, res.AbsoluteError, res.Method.String())
	}
	assert.Equal(t, 0, r.Best)
	assert.Equal(t, "Trapezoid", r.BestMethod())
}

func TestCompareApplicableMethods(t *testing.T) {
	f := expr.MustParse("x").Sampled()
	cases := []struct {
		n    int
		want []string
	}{
		{1, []string{"Trapezoid", "Romberg"}},
		{3, []string{"Trapezoid", "Simpson 3/8"}},
		{5, []string{"Trapezoid"}},
		{8, []string{"Trapezoid", "Simpson 1/3", "Boole", "Romberg"}},
		{12, []string{"Trapezoid", "Simpson 1/3", "Simpson 3/8", "Boole"}},
	}
	for _, tc := range cases {
		r, err := Compare(f, 0, 1, tc.n, types.SampleOf(0.5))
		require.NoError(t, err, "n=%d", tc.n)
		assert.Equal(t, tc.want, names(r), "n=%d", tc.n)
	}
}

func TestCompareRejectsNonPositiveN(t *testing.T) {
	f := expr.MustParse("x").Sampled()
	for _, n := range []int{0, -4} {
		_, err := Compare(f, 0, 1, n, types.SampleOf(0.5))
		assert.ErrorIs(t, err, ErrInvalidSubdivisionCount, "n=%d", n)
	}
}

func TestCompareSquareFavoursSimpson(t *testing.T) {
	f := expr.MustParse("x**2").Sampled()
	r, err := Compare(f, 0, 3, 12, types.SampleOf(9))
	require.NoError(t, err)

	require.Equal(t, "Trapezoid", r.Results[0].Method.String())
	require.Equal(t, "Simpson 1/3", r.Results[1].Method.String())
	assert.Greater(t, r.Results[0].AbsoluteError, r.Results[1].AbsoluteError)
	assert.InDelta(t, 0, r.Results[1].AbsoluteError, 1e-12)
	assert.NotEqual(t, "Trapezoid", r.BestMethod())
}

func TestCompareWithoutReferenceReportsZeroError(t *testing.T) {
	f := expr.MustParse("x").Sampled()
	r, err := Compare(f, 0, 1, 2, types.Undefined())
	require.NoError(t, err)
	for _, res := range r.Results {
		assert.Zero(t, res.AbsoluteError)
	}
	assert.Equal(t, "Trapezoid", r.BestMethod())
}

func TestCompareExcludesNonFiniteEstimates(t *testing.T) {
	f := quadrature.FromFunc(func(x float64) float64 { return math.Sqrt(x - 0.5) })
	r, err := Compare(f, 0, 1, 4, types.SampleOf(1))
	require.NoError(t, err)

	for _, res := range r.Results {
		assert.False(t, res.Finite(), res.Method.String())
		assert.True(t, math.IsNaN(res.AbsoluteError), res.Method.String())
	}
	assert.Equal(t, -1, r.Best)
	assert.Empty(t, r.BestMethod())
	assert.Contains(t, r.Summary, "no method produced a finite estimate")
}

func TestSummaryFormat(t *testing.T) {
	f := expr.MustParse("x**2").Sampled()
	r, err := Compare(f, 0, 1, 1, types.SampleOf(1.0/3))
	require.NoError(t, err)

	require.Equal(t, "Trapezoid", r.Results[0].Method.String())
	assert.InDelta(t, 1.0/6, r.Results[0].AbsoluteError, 1e-12)
	assert.True(t, strings.HasPrefix(r.Summary, "For n=1, the most accurate method was '"))
	assert.Contains(t, r.Summary, "Higher-order methods usually converge faster")

	// every rule is off by 1/6, so the tie goes to Trapezoid
	r, err = Compare(expr.MustParse("0").Sampled(), 0, 1, 4, types.SampleOf(1.0/6))
	require.NoError(t, err)
	assert.Equal(t, "For n=4, the most accurate method was 'Trapezoid' with an error of 1.7e-01. "+
		"Higher-order methods usually converge faster to the true value.", r.Summary)

	// only Trapezoid accepts n=5; its error on x**2 is 1/150
	r, err = Compare(f, 0, 1, 5, types.SampleOf(1.0/3))
	require.NoError(t, err)
	require.Len(t, r.Results, 1)
	assert.Contains(t, r.Summary, "'Trapezoid' with an error of 6.7e-03.")
}

func TestAnalyzeSquare(t *testing.T) {
	an := New(types.AnalysisConfig{}, nil)
	resp, err := an.Analyze(context.Background(), types.AnalysisRequest{Function: "x**2", A: 0, B: 3, N: 12})
	require.NoError(t, err)

	ref, ok := resp.TrueIntegralValue.Float64()
	require.True(t, ok)
	assert.InDelta(t, 9, ref, 1e-12)
	assert.Equal(t, "closed-form", resp.ReferenceSource)

	require.Len(t, resp.FunctionPlotData.Points, 200)
	require.Len(t, resp.FunctionPlotData.Values, 200)
	assert.Equal(t, 0.0, resp.FunctionPlotData.Points[0])
	assert.Equal(t, 3.0, resp.FunctionPlotData.Points[199])
	last, _ := resp.FunctionPlotData.Values[199].Float64()
	assert.InDelta(t, 9, last, 1e-12)

	assert.Equal(t, "2*x", resp.DerivativeInfo.Expression)
	require.Len(t, resp.DerivativeInfo.Values, 200)
	d, _ := resp.DerivativeInfo.Values[199].Float64()
	assert.InDelta(t, 6, d, 1e-12)

	require.Len(t, resp.Results, 4)
	assert.Equal(t, "Trapezoid", resp.Results[0].MethodName)
	assert.Len(t, resp.Results[0].Points, 13)
	assert.NotEqual(t, "Trapezoid", resp.BestMethod)
	assert.True(t, strings.HasPrefix(resp.AnalysisSummary, "For n=12,"))
}

func TestAnalyzeSineHalfPeriod(t *testing.T) {
	an := New(types.DefaultAnalysisConfig(), nil)
	resp, err := an.Analyze(context.Background(), types.AnalysisRequest{Function: "sin(x)", A: 0, B: math.Pi, N: 12})
	require.NoError(t, err)

	ref, ok := resp.TrueIntegralValue.Float64()
	require.True(t, ok)
	assert.InDelta(t, 2, ref, 1e-12)
	for _, res := range resp.Results {
		v, ok := res.IntegralValue.Float64()
		require.True(t, ok, res.MethodName)
		assert.InDelta(t, 2, v, 0.05, res.MethodName)
	}
}

func TestAnalyzeFallsBackToAdaptiveRomberg(t *testing.T) {
	an := New(types.DefaultAnalysisConfig(), nil)
	resp, err := an.Analyze(context.Background(), types.AnalysisRequest{Function: "exp(-x**2)", A: 0, B: 1, N: 8})
	require.NoError(t, err)

	assert.Equal(t, "adaptive-romberg", resp.ReferenceSource)
	ref, ok := resp.TrueIntegralValue.Float64()
	require.True(t, ok)
	assert.InDelta(t, 0.7468241328124271, ref, 1e-7)
}

func TestAnalyzeWithFixedReference(t *testing.T) {
	an := New(types.DefaultAnalysisConfig(), reference.Fixed(0))
	resp, err := an.Analyze(context.Background(), types.AnalysisRequest{Function: "0", A: -1, B: 1, N: 4})
	require.NoError(t, err)

	assert.Equal(t, "fixed", resp.ReferenceSource)
	assert.Equal(t, "Trapezoid", resp.BestMethod)
	assert.Equal(t, "0", resp.DerivativeInfo.Expression)
}

func TestAnalyzeValidation(t *testing.T) {
	an := New(types.AnalysisConfig{MaxSubdivisions: 100}, nil)
	cases := []struct {
		name string
		req  types.AnalysisRequest
		want error
	}{
		{"reversed bounds", types.AnalysisRequest{Function: "x", A: 1, B: 0, N: 4}, ErrInvalidBounds},
		{"equal bounds", types.AnalysisRequest{Function: "x", A: 1, B: 1, N: 4}, ErrInvalidBounds},
		{"infinite bound", types.AnalysisRequest{Function: "x", A: 0, B: math.Inf(1), N: 4}, ErrInvalidBounds},
		{"too many subdivisions", types.AnalysisRequest{Function: "x", A: 0, B: 1, N: 101}, ErrInvalidSubdivisionCount},
		{"zero subdivisions", types.AnalysisRequest{Function: "x", A: 0, B: 1, N: 0}, ErrInvalidSubdivisionCount},
		{"bad expression", types.AnalysisRequest{Function: "x +* 2", A: 0, B: 1, N: 4}, expr.ErrExpression},
		{"unknown function", types.AnalysisRequest{Function: "gamma(x)", A: 0, B: 1, N: 4}, expr.ErrExpression},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := an.Analyze(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAnalyzeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(types.DefaultAnalysisConfig(), nil).Analyze(ctx, types.AnalysisRequest{Function: "x", A: 0, B: 1, N: 4})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeUndefinedReference(t *testing.T) {
	an := New(types.DefaultAnalysisConfig(), nil)
	resp, err := an.Analyze(context.Background(), types.AnalysisRequest{Function: "1/x", A: 0, B: 1, N: 4})
	require.NoError(t, err)

	assert.False(t, resp.TrueIntegralValue.Defined())
	assert.False(t, resp.FunctionPlotData.Values[0].Defined())
	for _, res := range resp.Results {
		assert.False(t, res.IntegralValue.Defined(), res.MethodName)
		assert.False(t, res.AbsoluteError.Defined(), res.MethodName)
	}
	assert.Empty(t, resp.BestMethod)
}
