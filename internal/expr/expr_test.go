// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expr

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/quadrature-engine/internal/quadrature"
)

func TestParseAndEval(t *testing.T) {
	tests := []struct {
		src  string
		x    float64
		want float64
	}{
		{"x**2", 3, 9},
		{"x^2", 3, 9},
		{"-x**2", 3, -9},
		{"2**3**2", 0, 512},
		{"2*x^3 - 5*x + 1", 2, 7},
		{"sin(x) + cos(x)", 0, 1},
		{"exp(-x^2)", 0, 1},
		{"1/(1 + x^2)", 1, 0.5},
		{"ln(x)", math.E, 1},
		{"log(x)", 1, 0},
		{"sqrt(x)", 16, 4},
		{"abs(x) - Abs(-x)", -4, 0},
		{".5e1*x", 2, 10},
		{"2**-1", 0, 0.5},
		{"x - 2 - 3", 10, 5},
		{"x / 2 / 5", 20, 2},
		{"pi", 0, math.Pi},
		{"E", 0, math.E},
		{"+x", 7, 7},
		{"tanh(0) + sinh(0) + cosh(0)", 5, 1},
		{"atan(1)*4", 0, math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := Parse(tt.src)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, e.Eval(tt.x), 1e-12)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"   ",
		"x +",
		"2x",
		"foo(x)",
		"y + 1",
		"sin(x",
		"sin(x, 2)",
		"x $ 2",
		")",
		"(x))",
		"x ** * 2",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrExpression)
		})
	}
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := Parse("x + foo(x)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown function "foo"`)
	assert.Contains(t, err.Error(), "position 5")
}

func TestParseRejectsDeepNesting(t *testing.T) {
	tests := map[string]string{
		"parentheses 10k deep": strings.Repeat("(", 10000) + "x" + strings.Repeat(")", 10000),
		"parentheses":          strings.Repeat("(", 300) + "x" + strings.Repeat(")", 300),
		"unary minus":          strings.Repeat("-", 500) + "x",
		"function calls":       strings.Repeat("sin(", 260) + "x" + strings.Repeat(")", 260),
		"power tower":          strings.Repeat("x**", 400) + "x",
		"long sum":             strings.Repeat("x+", 5000) + "x",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(src)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrExpression)
		})
	}

	_, err := Parse(strings.Repeat("(", 300) + "x" + strings.Repeat(")", 300))
	assert.Contains(t, err.Error(), "nested deeper than 256 levels")
	_, err = Parse(strings.Repeat("x+", 5000) + "x")
	assert.Contains(t, err.Error(), "longer than the limit")
}

func TestParseAcceptsExpressionsWithinLimits(t *testing.T) {
	e, err := Parse(strings.Repeat("(", 200) + "x" + strings.Repeat(")", 200))
	require.NoError(t, err)
	assert.Equal(t, 3.0, e.Eval(3))

	sum := strings.Repeat("x+", (MaxLength-1)/2) + "x"
	require.LessOrEqual(t, len(sum), MaxLength)
	e, err = Parse(sum)
	require.NoError(t, err)
	terms := float64((MaxLength-1)/2 + 1)
	assert.InDelta(t, terms*2, e.Eval(2), 1e-9)
	assert.InDelta(t, terms, e.Derivative().Eval(2), 1e-9)
}

func TestString(t *testing.T) {
	tests := map[string]string{
		"x^2 + 1":      "x**2 + 1",
		"(x+1)*(x-1)":  "(x + 1)*(x - 1)",
		"x - (x - 1)":  "x - (x - 1)",
		"2**3**2":      "2**3**2",
		"(2**3)**2":    "(2**3)**2",
		"-(x+1)":       "-(x + 1)",
		"sin(x)/(2*x)": "sin(x)/(2*x)",
		"ln(x)":        "log(x)",
		"pi*x":         "pi*x",
	}
	for src, want := range tests {
		assert.Equal(t, want, MustParse(src).String(), src)
	}
}

func TestDerivativeString(t *testing.T) {
	tests := map[string]string{
		"x**2":       "2*x",
		"x**3":       "3*x**2",
		"x**2 + 3*x": "2*x + 3",
		"sin(x)":     "cos(x)",
		"cos(x)":     "-sin(x)",
		"exp(2*x)":   "2*exp(2*x)",
		"log(x)":     "1/x",
		"x":          "1",
		"5":          "0",
		"pi":         "0",
	}
	for src, want := range tests {
		assert.Equal(t, want, MustParse(src).Derivative().String(), src)
	}
}

func TestDerivativeMatchesFiniteDifference(t *testing.T) {
	exprs := []string{
		"x**2 * sin(x)",
		"exp(-x^2)",
		"1/(1 + x^2)",
		"sqrt(x) + log(x)",
		"tan(x) - atan(x)",
		"x**x",
		"2**x",
		"asin(x/3) + acos(x/4)",
		"sinh(x)*cosh(x) + tanh(x)",
		"abs(x - 0.2)",
		"(3*x + 1)/(x - 2)",
	}
	const h = 1e-6
	for _, src := range exprs {
		e := MustParse(src)
		d := e.Derivative()
		for _, x := range []float64{0.5, 0.9, 1.3} {
			want := (e.Eval(x+h) - e.Eval(x-h)) / (2 * h)
			assert.InDelta(t, want, d.Eval(x), 1e-5, "%s at x=%g (d=%s)", src, x, d)
		}
	}
}

func TestEvalVectorBroadcastsConstants(t *testing.T) {
	e := MustParse("2*pi")
	assert.True(t, e.IsConstant())

	xs := quadrature.Linspace(0, 1, 10)
	assert.Len(t, e.EvalVector(xs), 1)

	ys := e.Sampled().Over(xs)
	require.Len(t, ys, len(xs))
	for _, y := range ys {
		assert.Equal(t, 2*math.Pi, y)
	}
}

func TestEvalVector(t *testing.T) {
	e := MustParse("x**2")
	assert.False(t, e.IsConstant())
	assert.Equal(t, []float64{0, 1, 4}, e.EvalVector([]float64{0, 1, 2}))
}

func TestDefiniteIntegral(t *testing.T) {
	tests := []struct {
		src  string
		a, b float64
		want float64
	}{
		{"x**2", 0, 1, 1.0 / 3},
		{"sin(x)", 0, math.Pi, 2},
		{"7", -1, 2, 21},
		{"exp(2*x)", 0, 1, (math.Exp(2) - 1) / 2},
		{"1/x", 1, math.E, 1},
		{"3/(2*x+1)**2", 0, 1, 1},
		{"tan(x)", 0, 1, -math.Log(math.Cos(1))},
		{"sqrt(x)", 0, 4, 16.0 / 3},
		{"2**x", 0, 1, 1 / math.Ln2},
		{"2*x^3 - 5*x + 1", -1, 2, 3},
		{"cos(3*x + 1)", 0, 1, (math.Sin(4) - math.Sin(1)) / 3},
		{"log(x)", 1, 2, 2*math.Log(2) - 1},
		{"-x + x/2", 0, 2, -1},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := MustParse(tt.src).DefiniteIntegral(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDefiniteIntegralEndpointSingularity(t *testing.T) {
	tests := []struct {
		src  string
		a, b float64
		want float64
	}{
		{"log(x)", 0, 1, -1},
		{"x**-0.5", 0, 1, 2},
		{"1/sqrt(x)", 0, 1, 2},
		{"3/sqrt(4 - x)", 0, 4, 12},
		{"log(1 - x)", 0, 1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := MustParse(tt.src).DefiniteIntegral(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDefiniteIntegralNoClosedForm(t *testing.T) {
	tests := []struct {
		src  string
		a, b float64
	}{
		{"x*sin(x)", 0, 1},
		{"exp(-x^2)", 0, 1},
		{"1/(1 + x^2)", 0, 1},
		{"1/x", -1, 2},
		{"tan(x)", 0, 2},
		{"log(x)", -1, 1},
		{"sqrt(x)", -1, 1},
		{"x**x", 1, 2},
		{"x**-1.5", 0, 1},
		{"1/x**2", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := MustParse(tt.src).DefiniteIntegral(tt.a, tt.b)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoClosedForm)
		})
	}
}

func TestAntiderivativeDifferentiatesBack(t *testing.T) {
	for _, src := range []string{
		"x**2 + 3*x - 1",
		"sin(2*x) + cos(x/2)",
		"exp(3*x - 1)",
		"1/(x + 2)",
		"sinh(x) + cosh(x) + tanh(x)",
		"atan(x) + asin(x/2) + acos(x/2)",
		"x**-2.5",
	} {
		F, err := MustParse(src).Antiderivative()
		require.NoError(t, err, src)
		f := MustParse(src)
		d := F.Derivative()
		for _, x := range []float64{0.3, 0.7, 1.1} {
			assert.InDelta(t, f.Eval(x), d.Eval(x), 1e-9, "%s: F=%s", src, F)
		}
	}
}
