// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expr

import (
	"errors"
	"fmt"
	"math"

	"github.com/pdiddy/quadrature-engine/internal/quadrature"
)

// ErrNoClosedForm is returned when no antiderivative rule applies or the
// closed form is not valid on the requested interval.
var ErrNoClosedForm = errors.New("no closed-form integral")

// singularityChecks is the number of interior points at which the integrand
// must be finite before a closed form is trusted.
const singularityChecks = 256

// guard reports whether an antiderivative rule is valid on [a, b].
type guard func(a, b float64) bool

// integrator applies rule-based antiderivatives: linearity, constant
// factors, the power rule, and the standard functions of a linear argument.
// Each rule that has a singularity records a guard on the interval.
type integrator struct {
	guards []guard
}

// Antiderivative returns an antiderivative of the expression, or
// ErrNoClosedForm when none of the rules apply.
func (e *Expression) Antiderivative() (*Expression, error) {
	var in integrator
	F, ok := in.integrate(e.root)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoClosedForm, e)
	}
	return &Expression{root: F}, nil
}

// DefiniteIntegral evaluates the integral over [a, b] as F(b) - F(a).
func (e *Expression) DefiniteIntegral(a, b float64) (float64, error) {
	var in integrator
	F, ok := in.integrate(e.root)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoClosedForm, e)
	}
	for _, g := range in.guards {
		if !g(a, b) {
			return 0, fmt.Errorf("%w: %s has a singularity on [%g, %g]", ErrNoClosedForm, e, a, b)
		}
	}
	if !e.finiteOn(a, b) {
		return 0, fmt.Errorf("%w: %s is not finite on [%g, %g]", ErrNoClosedForm, e, a, b)
	}

	v := boundaryValue(F, b, a) - boundaryValue(F, a, b)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s diverges on [%g, %g]", ErrNoClosedForm, e, a, b)
	}
	return v, nil
}

// boundaryLimitSteps are the relative offsets from a bound at which F is
// sampled when F is indeterminate exactly at the bound, as u*log(u) is at 0.
var boundaryLimitSteps = [2]float64{1e-13, 1e-11}

// boundaryLimitTol is how closely the two one-sided samples must agree.
const boundaryLimitTol = 1e-8

// boundaryValue evaluates F at x, taking the one-sided limit from inside
// the interval when F(x) is NaN. Infinite values are returned as is.
func boundaryValue(F node, x, toward float64) float64 {
	v := F.eval(x)
	if !math.IsNaN(v) {
		return v
	}
	var near [2]float64
	for i, step := range boundaryLimitSteps {
		near[i] = F.eval(x + (toward-x)*step)
	}
	if math.IsNaN(near[0]) || math.IsInf(near[0], 0) || math.Abs(near[0]-near[1]) > boundaryLimitTol {
		return math.NaN()
	}
	return near[0]
}

func (e *Expression) finiteOn(a, b float64) bool {
	xs := quadrature.Linspace(a, b, singularityChecks)
	for _, y := range e.EvalVector(xs[1 : len(xs)-1]) {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return false
		}
	}
	return true
}

func (in *integrator) integrate(n node) (node, bool) {
	if !n.hasVar() {
		return mul(n, varNode{}), true
	}

	switch t := n.(type) {
	case varNode:
		return div(pow(t, num(2)), num(2)), true

	case negNode:
		F, ok := in.integrate(t.x)
		if !ok {
			return nil, false
		}
		return neg(F), true

	case binaryNode:
		return in.integrateBinary(t)

	case callNode:
		return in.integrateCall(t)
	}
	return nil, false
}

func (in *integrator) integrateBinary(t binaryNode) (node, bool) {
	switch t.op {
	case '+', '-':
		Fl, ok := in.integrate(t.l)
		if !ok {
			return nil, false
		}
		Fr, ok := in.integrate(t.r)
		if !ok {
			return nil, false
		}
		if t.op == '+' {
			return add(Fl, Fr), true
		}
		return sub(Fl, Fr), true

	case '*':
		if !t.l.hasVar() {
			F, ok := in.integrate(t.r)
			if !ok {
				return nil, false
			}
			return mul(t.l, F), true
		}
		if !t.r.hasVar() {
			F, ok := in.integrate(t.l)
			if !ok {
				return nil, false
			}
			return mul(t.r, F), true
		}

	case '/':
		if !t.r.hasVar() {
			F, ok := in.integrate(t.l)
			if !ok {
				return nil, false
			}
			return div(F, t.r), true
		}
		if !t.l.hasVar() {
			// c / u^p is c * u^(-p)
			base, exp := t.r, node(num(1))
			switch r := t.r.(type) {
			case binaryNode:
				if r.op == '^' {
					base, exp = r.l, r.r
				}
			case callNode:
				if r.fn == "sqrt" {
					base, exp = r.arg, num(0.5)
				}
			}
			if exp.hasVar() {
				return nil, false
			}
			F, ok := in.powerRule(base, neg(exp))
			if !ok {
				return nil, false
			}
			return mul(t.l, F), true
		}

	case '^':
		if !t.r.hasVar() {
			return in.powerRule(t.l, t.r)
		}
		if !t.l.hasVar() {
			// c^u with u linear: c^u / (k log c)
			k, ok := slope(t.r)
			if !ok {
				return nil, false
			}
			c := t.l.eval(0)
			if c <= 0 || c == 1 {
				return nil, false
			}
			return div(t, mul(num(k), call("log", t.l))), true
		}
	}
	return nil, false
}

// powerRule integrates u^p for a linear u and constant p.
func (in *integrator) powerRule(u, p node) (node, bool) {
	k, ok := slope(u)
	if !ok {
		return nil, false
	}
	pv := p.eval(0)
	switch {
	case pv == -1:
		in.guards = append(in.guards, nonVanishing(u, k))
		return div(call("log", call("abs", u)), num(k)), true
	case pv < 0 && pv == math.Trunc(pv):
		in.guards = append(in.guards, nonVanishing(u, k))
	case pv != math.Trunc(pv):
		// a root at a bound is fine when the integral converges there;
		// otherwise F is infinite at that bound and the result is rejected
		in.guards = append(in.guards, nonNegative(u))
	}
	e1 := add(p, num(1))
	return div(pow(u, e1), mul(e1, num(k))), true
}

func (in *integrator) integrateCall(t callNode) (node, bool) {
	u := t.arg
	k, ok := slope(u)
	if !ok {
		return nil, false
	}

	var F node
	switch t.fn {
	case "sin":
		F = neg(call("cos", u))
	case "cos":
		F = call("sin", u)
	case "exp":
		F = call("exp", u)
	case "sinh":
		F = call("cosh", u)
	case "cosh":
		F = call("sinh", u)
	case "tanh":
		F = call("log", call("cosh", u))
	case "tan":
		in.guards = append(in.guards, noTanPole(u))
		F = neg(call("log", call("abs", call("cos", u))))
	case "log":
		in.guards = append(in.guards, nonNegative(u))
		F = sub(mul(u, call("log", u)), u)
	case "sqrt":
		in.guards = append(in.guards, nonNegative(u))
		F = mul(num(2.0/3.0), pow(u, num(1.5)))
	case "abs":
		F = div(mul(u, call("abs", u)), num(2))
	case "sign":
		F = call("abs", u)
	case "atan":
		F = sub(mul(u, call("atan", u)), div(call("log", add(pow(u, num(2)), num(1))), num(2)))
	case "asin":
		F = add(mul(u, call("asin", u)), call("sqrt", sub(num(1), pow(u, num(2)))))
	case "acos":
		F = sub(mul(u, call("acos", u)), call("sqrt", sub(num(1), pow(u, num(2)))))
	default:
		return nil, false
	}
	return div(F, num(k)), true
}

// slope returns k when u = k*x + c with k finite and non-zero.
func slope(u node) (float64, bool) {
	d := u.diff()
	if d.hasVar() {
		return 0, false
	}
	k := d.eval(0)
	if k == 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return 0, false
	}
	return k, true
}

// nonVanishing holds when the linear u has no root in [a, b].
func nonVanishing(u node, k float64) guard {
	return func(a, b float64) bool {
		root := -u.eval(0) / k
		return root < a || root > b
	}
}

// nonNegative holds when the linear u is non-negative on [a, b].
func nonNegative(u node) guard {
	return func(a, b float64) bool {
		return u.eval(a) >= 0 && u.eval(b) >= 0
	}
}

// noTanPole holds when tan(u) has no pole for x in [a, b].
func noTanPole(u node) guard {
	return func(a, b float64) bool {
		lo, hi := u.eval(a), u.eval(b)
		if lo > hi {
			lo, hi = hi, lo
		}
		cell := func(v float64) float64 { return math.Floor((v - math.Pi/2) / math.Pi) }
		return cell(lo) == cell(hi) && math.Cos(lo) != 0 && math.Cos(hi) != 0
	}
}
