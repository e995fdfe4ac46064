// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expr

import "math"

// The constructors below fold numeric constants and drop identities so that
// derivatives and antiderivatives print compactly.

func num(v float64) node { return numNode{v: v} }

func isNum(n node, v float64) bool {
	c, ok := n.(numNode)
	return ok && c.v == v
}

func asNum(n node) (float64, bool) {
	c, ok := n.(numNode)
	return c.v, ok
}

func neg(a node) node {
	switch t := a.(type) {
	case numNode:
		return num(-t.v)
	case negNode:
		return t.x
	}
	return negNode{x: a}
}

func add(a, b node) node {
	av, aok := asNum(a)
	bv, bok := asNum(b)
	switch {
	case aok && bok:
		return num(av + bv)
	case aok && av == 0:
		return b
	case bok && bv == 0:
		return a
	case bok && bv < 0:
		return binaryNode{op: '-', l: a, r: num(-bv)}
	}
	if n, ok := b.(negNode); ok {
		return sub(a, n.x)
	}
	return binaryNode{op: '+', l: a, r: b}
}

func sub(a, b node) node {
	av, aok := asNum(a)
	bv, bok := asNum(b)
	switch {
	case aok && bok:
		return num(av - bv)
	case bok && bv == 0:
		return a
	case aok && av == 0:
		return neg(b)
	}
	if n, ok := b.(negNode); ok {
		return add(a, n.x)
	}
	return binaryNode{op: '-', l: a, r: b}
}

func mul(a, b node) node {
	av, aok := asNum(a)
	bv, bok := asNum(b)
	switch {
	case aok && bok:
		return num(av * bv)
	case (aok && av == 0) || (bok && bv == 0):
		return num(0)
	case aok && av == 1:
		return b
	case bok && bv == 1:
		return a
	case aok && av == -1:
		return neg(b)
	case bok && bv == -1:
		return neg(a)
	case bok:
		// keep the coefficient first
		return mul(b, a)
	}
	if n, ok := a.(negNode); ok {
		return neg(mul(n.x, b))
	}
	if n, ok := b.(negNode); ok {
		return neg(mul(a, n.x))
	}
	if aok {
		if m, ok := b.(binaryNode); ok && m.op == '*' {
			if mv, ok := asNum(m.l); ok {
				return mul(num(av*mv), m.r)
			}
		}
	}
	return binaryNode{op: '*', l: a, r: b}
}

func div(a, b node) node {
	av, aok := asNum(a)
	bv, bok := asNum(b)
	switch {
	case aok && bok && bv != 0:
		return num(av / bv)
	case bok && bv == 1:
		return a
	case aok && av == 0:
		return num(0)
	case bok && bv == -1:
		return neg(a)
	}
	if n, ok := a.(negNode); ok {
		return neg(div(n.x, b))
	}
	return binaryNode{op: '/', l: a, r: b}
}

func pow(a, b node) node {
	av, aok := asNum(a)
	bv, bok := asNum(b)
	switch {
	case aok && bok:
		return num(math.Pow(av, bv))
	case bok && bv == 1:
		return a
	case bok && bv == 0:
		return num(1)
	case aok && av == 1:
		return num(1)
	}
	return binaryNode{op: '^', l: a, r: b}
}

func call(fn string, arg node) node {
	return callNode{fn: fn, arg: arg}
}
