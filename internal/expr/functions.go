// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expr

import "math"

const varName = "x"

// function is a built-in of one argument. deriv returns f'(u) without the
// chain-rule factor.
type function struct {
	eval  func(float64) float64
	deriv func(u node) node
}

var functions = map[string]function{
	"sin": {math.Sin, func(u node) node { return call("cos", u) }},
	"cos": {math.Cos, func(u node) node { return neg(call("sin", u)) }},
	"tan": {math.Tan, func(u node) node { return add(pow(call("tan", u), num(2)), num(1)) }},
	"exp": {math.Exp, func(u node) node { return call("exp", u) }},
	"log": {math.Log, func(u node) node { return div(num(1), u) }},
	"sqrt": {math.Sqrt, func(u node) node {
		return div(num(1), mul(num(2), call("sqrt", u)))
	}},
	"abs":  {math.Abs, func(u node) node { return call("sign", u) }},
	"sign": {sign, func(node) node { return num(0) }},
	"asin": {math.Asin, func(u node) node {
		return div(num(1), call("sqrt", sub(num(1), pow(u, num(2)))))
	}},
	"acos": {math.Acos, func(u node) node {
		return neg(div(num(1), call("sqrt", sub(num(1), pow(u, num(2))))))
	}},
	"atan": {math.Atan, func(u node) node { return div(num(1), add(pow(u, num(2)), num(1))) }},
	"sinh": {math.Sinh, func(u node) node { return call("cosh", u) }},
	"cosh": {math.Cosh, func(u node) node { return call("sinh", u) }},
	"tanh": {math.Tanh, func(u node) node { return sub(num(1), pow(call("tanh", u), num(2))) }},
}

// aliases maps accepted spellings to the canonical function name.
var aliases = map[string]string{
	"ln":  "log",
	"Abs": "abs",
}

var constants = map[string]float64{
	"pi": math.Pi,
	"E":  math.E,
	"e":  math.E,
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x // 0 or NaN
}

func (c callNode) diff() node {
	return mul(functions[c.fn].deriv(c.arg), c.arg.diff())
}

func (b binaryNode) diff() node {
	l, r := b.l, b.r
	switch b.op {
	case '+':
		return add(l.diff(), r.diff())
	case '-':
		return sub(l.diff(), r.diff())
	case '*':
		return add(mul(l.diff(), r), mul(l, r.diff()))
	case '/':
		if !r.hasVar() {
			return div(l.diff(), r)
		}
		if !l.hasVar() {
			return neg(div(mul(l, r.diff()), pow(r, num(2))))
		}
		return div(sub(mul(l.diff(), r), mul(l, r.diff())), pow(r, num(2)))
	}

	// power
	if !r.hasVar() {
		return mul(mul(r, pow(l, sub(r, num(1)))), l.diff())
	}
	if !l.hasVar() {
		return mul(mul(pow(l, r), call("log", l)), r.diff())
	}
	return mul(pow(l, r), add(mul(r.diff(), call("log", l)), div(mul(r, l.diff()), l)))
}
