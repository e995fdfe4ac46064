// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package expr parses one-variable real expressions such as "x**2 + sin(x)"
// and provides their vectorized evaluation, symbolic derivative, and
// closed-form definite integral where one exists.
//
// The grammar follows common calculator syntax: + - * / with ** or ^ for
// powers, unary minus, parentheses, decimal and exponent literals, the
// constants pi and E (or e), and the functions sin, cos, tan, exp, log (ln),
// sqrt, abs, sign, asin, acos, atan, sinh, cosh and tanh. The free variable
// is x. Implicit multiplication is not supported.
package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/quadrature-engine/internal/quadrature"
)

// ErrExpression is returned when an expression cannot be parsed.
var ErrExpression = errors.New("invalid expression")

// Expression is an immutable parsed expression in x.
type Expression struct {
	root node
}

// MaxLength is the longest expression source Parse accepts, in bytes. With
// maxDepth it bounds the height of every parsed tree.
const MaxLength = 2048

// Parse parses src into an Expression.
func Parse(src string) (*Expression, error) {
	if len(src) > MaxLength {
		return nil, fmt.Errorf("%w: expression is %d bytes, longer than the limit of %d", ErrExpression, len(src), MaxLength)
	}
	p := newParser(newLexer(src))
	root := p.parse()
	if len(p.errors) > 0 || root == nil {
		return nil, fmt.Errorf("%w: %s", ErrExpression, strings.Join(p.errors, "; "))
	}
	return &Expression{root: root}, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// package-level fixtures.
func MustParse(src string) *Expression {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// String renders the expression with ** for powers.
func (e *Expression) String() string { return render(e.root) }

// Eval evaluates the expression at x.
func (e *Expression) Eval(x float64) float64 { return e.root.eval(x) }

// IsConstant reports whether the expression does not depend on x.
func (e *Expression) IsConstant() bool { return !e.root.hasVar() }

// EvalVector evaluates the expression at every abscissa. A constant
// expression yields a single value regardless of len(xs).
func (e *Expression) EvalVector(xs []float64) []float64 {
	if e.IsConstant() {
		return []float64{e.root.eval(0)}
	}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = e.root.eval(x)
	}
	return ys
}

// Sampled adapts the expression for the quadrature rules.
func (e *Expression) Sampled() quadrature.SampledFunction {
	return quadrature.FromVector(e.EvalVector)
}

// Derivative returns d/dx of the expression.
func (e *Expression) Derivative() *Expression {
	return &Expression{root: e.root.diff()}
}
