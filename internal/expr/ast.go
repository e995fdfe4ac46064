// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expr

import (
	"math"
	"strconv"
	"strings"
)

// Printing precedence, lowest first.
const (
	precSum = iota + 1
	precProduct
	precPrefix
	precPower
	precAtom
)

// node is one vertex of an expression tree in the free variable x.
type node interface {
	eval(x float64) float64
	diff() node
	prec() int
	write(sb *strings.Builder)
	hasVar() bool
}

type numNode struct{ v float64 }

func (n numNode) eval(float64) float64 { return n.v }
func (n numNode) diff() node           { return num(0) }
func (n numNode) hasVar() bool         { return false }
func (n numNode) prec() int {
	if n.v < 0 {
		return precPrefix
	}
	return precAtom
}
func (n numNode) write(sb *strings.Builder) {
	sb.WriteString(strconv.FormatFloat(n.v, 'g', -1, 64))
}

type varNode struct{}

func (varNode) eval(x float64) float64    { return x }
func (varNode) diff() node                { return num(1) }
func (varNode) hasVar() bool              { return true }
func (varNode) prec() int                 { return precAtom }
func (varNode) write(sb *strings.Builder) { sb.WriteString(varName) }

// constNode is a named constant such as pi.
type constNode struct {
	name string
	v    float64
}

func (c constNode) eval(float64) float64      { return c.v }
func (c constNode) diff() node                { return num(0) }
func (c constNode) hasVar() bool              { return false }
func (c constNode) prec() int                 { return precAtom }
func (c constNode) write(sb *strings.Builder) { sb.WriteString(c.name) }

type negNode struct{ x node }

func (n negNode) eval(x float64) float64 { return -n.x.eval(x) }
func (n negNode) diff() node             { return neg(n.x.diff()) }
func (n negNode) hasVar() bool           { return n.x.hasVar() }
func (n negNode) prec() int              { return precPrefix }
func (n negNode) write(sb *strings.Builder) {
	sb.WriteByte('-')
	p := n.x.prec()
	writeOperand(sb, n.x, p < precProduct || p == precPrefix)
}

type binaryNode struct {
	op   byte // + - * / ^
	l, r node
}

func (b binaryNode) eval(x float64) float64 {
	l, r := b.l.eval(x), b.r.eval(x)
	switch b.op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	case '^':
		return math.Pow(l, r)
	}
	return math.NaN()
}

func (b binaryNode) hasVar() bool { return b.l.hasVar() || b.r.hasVar() }

func (b binaryNode) prec() int {
	switch b.op {
	case '+', '-':
		return precSum
	case '*', '/':
		return precProduct
	}
	return precPower
}

func (b binaryNode) write(sb *strings.Builder) {
	p := b.prec()
	lp, rp := b.l.prec(), b.r.prec()

	var wrapL, wrapR bool
	var op string
	switch b.op {
	case '^':
		wrapL, wrapR, op = lp <= p, rp < p, "**"
	case '+':
		wrapL, wrapR, op = false, rp == precPrefix, " + "
	case '-':
		wrapL, wrapR, op = false, rp <= p || rp == precPrefix, " - "
	case '*':
		wrapL, wrapR, op = lp < p, rp < p || rp == precPrefix, "*"
	default:
		wrapL, wrapR, op = lp < p, rp <= p || rp == precPrefix, "/"
	}
	writeOperand(sb, b.l, wrapL)
	sb.WriteString(op)
	writeOperand(sb, b.r, wrapR)
}

type callNode struct {
	fn  string
	arg node
}

func (c callNode) eval(x float64) float64 { return functions[c.fn].eval(c.arg.eval(x)) }
func (c callNode) hasVar() bool           { return c.arg.hasVar() }
func (c callNode) prec() int              { return precAtom }
func (c callNode) write(sb *strings.Builder) {
	sb.WriteString(c.fn)
	sb.WriteByte('(')
	c.arg.write(sb)
	sb.WriteByte(')')
}

func writeOperand(sb *strings.Builder, n node, paren bool) {
	if paren {
		sb.WriteByte('(')
	}
	n.write(sb)
	if paren {
		sb.WriteByte(')')
	}
}

func render(n node) string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}
