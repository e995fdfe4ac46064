// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package expr

import (
	"fmt"
	"strconv"
)

// Parsing precedence, lowest first. Unary minus binds looser than power so
// that -x**2 is -(x**2).
const (
	_ int = iota
	lowest
	sum     // + -
	product // * /
	prefix  // -x
	power   // ** ^
)

var precedences = map[tokenType]int{
	tokPlus:  sum,
	tokMinus: sum,
	tokStar:  product,
	tokSlash: product,
	tokPow:   power,
}

// maxDepth bounds how deeply parentheses, unary signs, function calls and
// right-hand operands may nest, keeping every tree walk's stack shallow.
const maxDepth = 256

type parser struct {
	l *lexer

	curToken  token
	peekToken token

	depth  int
	errors []string
}

func newParser(l *lexer) *parser {
	p := &parser{l: l}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.nextToken()
}

func (p *parser) parse() node {
	if p.curToken.typ == tokEOF {
		p.errors = append(p.errors, "empty expression")
		return nil
	}
	n := p.parseExpression(lowest)
	if n != nil && p.peekToken.typ != tokEOF {
		p.errorf(p.peekToken, "unexpected %s", describe(p.peekToken))
	}
	return n
}

func (p *parser) parseExpression(precedence int) node {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		p.errorf(p.curToken, "expression nested deeper than %d levels", maxDepth)
		return nil
	}

	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for p.peekToken.typ != tokEOF && precedence < p.peekPrecedence() {
		p.nextToken()
		left = p.parseInfix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *parser) parsePrefix() node {
	switch p.curToken.typ {
	case tokNumber:
		v, err := strconv.ParseFloat(p.curToken.literal, 64)
		if err != nil {
			p.errorf(p.curToken, "could not parse %q as number", p.curToken.literal)
			return nil
		}
		return num(v)
	case tokIdent:
		return p.parseIdentifier()
	case tokMinus:
		p.nextToken()
		operand := p.parseExpression(prefix)
		if operand == nil {
			return nil
		}
		return neg(operand)
	case tokPlus:
		p.nextToken()
		return p.parseExpression(prefix)
	case tokLParen:
		p.nextToken()
		inner := p.parseExpression(lowest)
		if inner == nil {
			return nil
		}
		if !p.expectPeek(tokRParen) {
			return nil
		}
		return inner
	}
	p.errorf(p.curToken, "unexpected %s", describe(p.curToken))
	return nil
}

func (p *parser) parseIdentifier() node {
	name := p.curToken.literal
	if p.peekToken.typ == tokLParen {
		canonical := name
		if alias, ok := aliases[name]; ok {
			canonical = alias
		}
		if _, ok := functions[canonical]; !ok {
			p.errorf(p.curToken, "unknown function %q", name)
			return nil
		}
		p.nextToken()
		p.nextToken()
		arg := p.parseExpression(lowest)
		if arg == nil {
			return nil
		}
		if p.peekToken.typ == tokComma {
			p.errorf(p.peekToken, "%s takes one argument", name)
			return nil
		}
		if !p.expectPeek(tokRParen) {
			return nil
		}
		return call(canonical, arg)
	}

	if name == varName {
		return varNode{}
	}
	if v, ok := constants[name]; ok {
		return constNode{name: name, v: v}
	}
	p.errorf(p.curToken, "unknown symbol %q (the free variable is %s)", name, varName)
	return nil
}

func (p *parser) parseInfix(left node) node {
	tok := p.curToken
	precedence := p.curPrecedence()
	if tok.typ == tokPow {
		// right associative
		precedence--
	}
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}

	switch tok.typ {
	case tokPlus:
		return binaryNode{op: '+', l: left, r: right}
	case tokMinus:
		return binaryNode{op: '-', l: left, r: right}
	case tokStar:
		return binaryNode{op: '*', l: left, r: right}
	case tokSlash:
		return binaryNode{op: '/', l: left, r: right}
	}
	return binaryNode{op: '^', l: left, r: right}
}

func (p *parser) expectPeek(t tokenType) bool {
	if p.peekToken.typ == t {
		p.nextToken()
		return true
	}
	p.errorf(p.peekToken, "expected %s, got %s", t, describe(p.peekToken))
	return false
}

func (p *parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.typ]; ok {
		return prec
	}
	return lowest
}

func (p *parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.typ]; ok {
		return prec
	}
	return lowest
}

func (p *parser) errorf(tok token, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%s at position %d", msg, tok.pos+1))
}

func describe(tok token) string {
	switch tok.typ {
	case tokEOF:
		return "end of input"
	case tokIllegal:
		return fmt.Sprintf("character %q", tok.literal)
	}
	return fmt.Sprintf("%q", tok.literal)
}
